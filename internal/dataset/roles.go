package dataset

// Role is a business-meaning column independent of its physical name.
type Role string

const (
	RoleTitle   Role = "title"
	RoleScore   Role = "score"
	RoleRevenue Role = "revenue"
)

// Roles lists every semantic role in resolution order.
var Roles = []Role{RoleTitle, RoleScore, RoleRevenue}

// defaultCandidates maps each role to its prioritized physical column
// candidates, first match wins. No fuzzy matching.
var defaultCandidates = map[Role][]string{
	RoleTitle:   {"title", "original_title"},
	RoleScore:   {"vote_average", "rating"},
	RoleRevenue: {"revenue"},
}

// RoleMapping records, per semantic role, the canonical column name it
// resolved to. Unresolved roles are simply absent; that is a valid state and
// downstream rendering for the role is skipped, not an error.
type RoleMapping map[Role]string

// Resolved reports whether the role resolved, and to which column.
func (m RoleMapping) Resolved(r Role) (string, bool) {
	col, ok := m[r]
	return col, ok
}

// ResolveRoles classifies the row-set's canonical columns into semantic
// roles. overrides replaces the candidate list per role name when non-empty
// (sourced from the config file); unknown role names are ignored.
func ResolveRoles(rs RowSet, overrides map[string][]string) RoleMapping {
	out := make(RoleMapping, len(Roles))
	for _, role := range Roles {
		candidates := defaultCandidates[role]
		if alt, ok := overrides[string(role)]; ok && len(alt) > 0 {
			candidates = alt
		}
		for _, cand := range candidates {
			if rs.HasColumn(cand) {
				out[role] = cand
				break
			}
		}
	}
	return out
}

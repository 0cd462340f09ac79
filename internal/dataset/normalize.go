package dataset

import "strings"

// NormalizeColumn applies the canonical column-name rule: trim surrounding
// whitespace, lower-case, internal spaces to underscores.
//
// Total (defined for any string, including "") and idempotent.
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(s, " ", "_")
}

// Normalize returns an equivalent row-set with every column name passed
// through NormalizeColumn. Record order, record count and values are
// untouched; calling it on already-normalized input is a no-op.
//
// When two raw names collapse to the same canonical name the later column
// wins, mirroring plain map assignment in the source order.
func Normalize(rs RowSet) RowSet {
	cols := make([]string, 0, len(rs.Columns))
	seen := make(map[string]struct{}, len(rs.Columns))
	for _, c := range rs.Columns {
		n := NormalizeColumn(c)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		cols = append(cols, n)
	}

	recs := make([]Record, len(rs.Records))
	for i, rec := range rs.Records {
		out := make(Record, len(rec))
		for k, v := range rec {
			out[NormalizeColumn(k)] = v
		}
		recs[i] = out
	}
	return RowSet{Columns: cols, Records: recs}
}

package dataset

import (
	"fmt"
	"strings"
)

// Record is one row: a mapping from column name to a scalar value
// (string, number, or nil).
type Record map[string]any

// RowSet is an ordered batch of uniform-schema records, as produced by an
// ingestion adapter and consumed once by the append sink. Columns preserves
// the source column order; every record carries exactly that column set.
type RowSet struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (rs RowSet) Len() int { return len(rs.Records) }

// HasColumn reports whether the row-set carries the given column.
func (rs RowSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// fingerprint renders a record into a stable string over the row-set's column
// order, used for within-batch exact-duplicate detection.
func (rs RowSet) fingerprint(rec Record) string {
	var b strings.Builder
	for _, col := range rs.Columns {
		fmt.Fprintf(&b, "%s=%v\x1f", col, rec[col])
	}
	return b.String()
}

// Dedupe drops records that are byte-identical to an earlier record in the
// same row-set, keeping first occurrences in order. Records already stored
// are never consulted; dedup is a within-batch concern only.
func (rs RowSet) Dedupe() RowSet {
	seen := make(map[string]struct{}, len(rs.Records))
	out := make([]Record, 0, len(rs.Records))
	for _, rec := range rs.Records {
		fp := rs.fingerprint(rec)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, rec)
	}
	return RowSet{Columns: rs.Columns, Records: out}
}

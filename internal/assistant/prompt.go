package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cinedata/moviedash/internal/dataset"
)

// promptPreamble is the fixed instruction prepended to every chat prompt.
const promptPreamble = `You are the data assistant for a movie-ratings dashboard.
Answer the user's question using the data sample below when it is relevant.
The sample is a bounded excerpt of the loaded dataset, not the full table.
If the question cannot be answered from the sample, say so plainly.`

// BuildPrompt composes the single prompt sent to the text endpoint: the
// fixed preamble, a deterministic rendering of a bounded sample of the
// snapshot, and the verbatim question.
//
// The sample is the top sampleSize records by the resolved score column
// when the score role resolved, otherwise the first sampleSize records.
// Either way the result is deterministic for a given snapshot.
func BuildPrompt(snap dataset.RowSet, roles dataset.RoleMapping, question string, sampleSize int) string {
	if sampleSize <= 0 {
		sampleSize = 20
	}
	sample := sampleRecords(snap, roles, sampleSize)

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nData sample (")
	fmt.Fprintf(&b, "%d of %d loaded rows):\n", len(sample), snap.Len())
	b.WriteString(strings.Join(snap.Columns, ","))
	b.WriteByte('\n')
	for _, rec := range sample {
		cells := make([]string, len(snap.Columns))
		for i, col := range snap.Columns {
			cells[i] = dataset.AsString(rec[col])
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func sampleRecords(snap dataset.RowSet, roles dataset.RoleMapping, n int) []dataset.Record {
	recs := snap.Records
	if scoreCol, ok := roles.Resolved(dataset.RoleScore); ok {
		recs = append([]dataset.Record(nil), recs...)
		sort.SliceStable(recs, func(i, j int) bool {
			a, aok := dataset.AsFloat(recs[i][scoreCol])
			b, bok := dataset.AsFloat(recs[j][scoreCol])
			if aok != bok {
				return aok
			}
			return a > b
		})
	}
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

package ingest

import (
	"context"
	"strings"

	"github.com/cinedata/moviedash/internal/dataset"
)

// ManualEntry carries the typed fields of the single-record entry form.
type ManualEntry struct {
	Title   string
	Revenue float64
	Score   float64
}

// MaxScore is the fixed rating scale ceiling.
const MaxScore = 10

// ManualAdapter turns one form submission into a one-record row-set.
// The UI constrains the numeric widgets, but the bounds are re-checked here:
// this adapter is reachable over plain HTTP.
type ManualAdapter struct {
	entry ManualEntry
}

func NewManualAdapter(entry ManualEntry) *ManualAdapter {
	return &ManualAdapter{entry: entry}
}

func (a *ManualAdapter) Name() string { return "manual" }

func (a *ManualAdapter) Produce(ctx context.Context) (dataset.RowSet, error) {
	title := strings.TrimSpace(a.entry.Title)
	if title == "" {
		return dataset.RowSet{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if a.entry.Revenue < 0 {
		return dataset.RowSet{}, &ValidationError{Field: "revenue", Reason: "must be non-negative"}
	}
	if a.entry.Score < 0 || a.entry.Score > MaxScore {
		return dataset.RowSet{}, &ValidationError{Field: "score", Reason: "must be between 0 and 10"}
	}

	return dataset.RowSet{
		Columns: []string{"title", "revenue", "score"},
		Records: []dataset.Record{{
			"title":   title,
			"revenue": a.entry.Revenue,
			"score":   a.entry.Score,
		}},
	}, nil
}

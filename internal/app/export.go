package app

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/cinedata/moviedash/internal/dataset"
)

// ExportCSV writes the current snapshot as UTF-8 comma-delimited CSV:
// header row in snapshot column order, no index column.
func (a *App) ExportCSV(ctx context.Context, w io.Writer) error {
	snap, _, err := a.Window(ctx, a.fetchLimit)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(snap.Data.Columns); err != nil {
		return err
	}
	row := make([]string, len(snap.Data.Columns))
	for _, rec := range snap.Data.Records {
		for i, col := range snap.Data.Columns {
			row[i] = dataset.AsString(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

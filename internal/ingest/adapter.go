// Package ingest holds the four ingestion adapters. Each adapter turns its
// own kind of input (uploaded file, form fields, remote URL, image) into a
// raw row-set, or fails with a typed error. Adapters never touch the store;
// the app layer normalizes their output and hands it to the append sink.
package ingest

import (
	"context"

	"github.com/cinedata/moviedash/internal/dataset"
)

// Adapter produces a raw row-set from adapter-specific input, or fails.
type Adapter interface {
	// Name identifies the adapter in logs and responses.
	Name() string

	Produce(ctx context.Context) (dataset.RowSet, error)
}

// Package store owns the relational boundary: one long-lived handle built at
// startup, an append sink, a bounded query, and the snapshot cache that keeps
// the dashboard consistent after writes.
package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cinedata/moviedash/internal/dataset"
)

// Store is the capability surface the rest of the system consumes from the
// relational store.
type Store interface {
	// ListTables returns the store's table names in its own listing order.
	ListTables(ctx context.Context) ([]string, error)

	// Query returns up to limit rows of the table, column order preserved.
	Query(ctx context.Context, table string, limit int) (dataset.RowSet, error)

	// Append inserts every record of the row-set as new rows, as a single
	// unit: on error nothing is applied.
	Append(ctx context.Context, table string, rs dataset.RowSet) error
}

// LoadError reports a failed append. The batch is never partially applied.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load error"
	}
	return fmt.Sprintf("append to %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StoreError reports a failed read or discovery call (store unreachable,
// table missing). Terminal for the current render cycle.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "store error"
	}
	if e.Table != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent guards table and column names interpolated into SQL text.
// Values always go through parameter binding; identifiers cannot, so they
// are restricted to plain identifiers.
func validIdent(name string) bool {
	return identRe.MatchString(name)
}

// ResolveTable fixes the append/query table identity once per process:
// explicit configuration wins, then the conventional "ratings" table when
// the store has one, then the first table in the store's listing order.
func ResolveTable(ctx context.Context, s Store, configured string) (string, error) {
	if configured != "" {
		if !validIdent(configured) {
			return "", &StoreError{Op: "resolve", Table: configured, Err: fmt.Errorf("not a plain identifier")}
		}
		return configured, nil
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range tables {
		if t == "ratings" {
			return t, nil
		}
	}
	if len(tables) == 0 {
		return "", &StoreError{Op: "resolve", Err: fmt.Errorf("store has no tables")}
	}
	return tables[0], nil
}

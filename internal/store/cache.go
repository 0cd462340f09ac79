package store

import (
	"context"
	"sync"
	"time"

	"github.com/cinedata/moviedash/internal/dataset"
)

// Snapshot is the bounded result of the most recent successful query: the
// rows, the limit used to fetch them, and the table they came from.
type Snapshot struct {
	Table     string
	Limit     int
	Data      dataset.RowSet
	FetchedAt time.Time
}

// Cache memoizes one dataset snapshot per process, keyed by (table, limit).
// Reads are served from the cached snapshot until an explicit Invalidate;
// the next Fetch then re-queries lazily. The append sink invalidates
// unconditionally after every successful write, which is what makes writes
// from one session visible to every session on its next read.
//
// The pipeline itself is synchronous, but HTTP requests are not, so the
// cache is the one piece of shared dataset state behind a lock.
type Cache struct {
	store Store
	table string

	mu   sync.Mutex
	snap *Snapshot
}

func NewCache(s Store, table string) *Cache {
	return &Cache{store: s, table: table}
}

// Table returns the resolved table identity the cache reads from.
func (c *Cache) Table() string { return c.table }

// Fetch returns the current snapshot, querying the store only when there is
// no cached snapshot for this limit. A different limit is a different key
// and forces a re-query.
func (c *Cache) Fetch(ctx context.Context, limit int) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap != nil && c.snap.Limit == limit {
		return c.snap, nil
	}

	rs, err := c.store.Query(ctx, c.table, limit)
	if err != nil {
		// Keep any previous snapshot out of play: a failed refill must not
		// resurface stale data as if it were current.
		c.snap = nil
		return nil, err
	}

	c.snap = &Snapshot{
		Table:     c.table,
		Limit:     limit,
		Data:      rs,
		FetchedAt: time.Now(),
	}
	return c.snap, nil
}

// Invalidate discards the cached snapshot, forcing the next Fetch to
// re-query. Called exactly once per successful append.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

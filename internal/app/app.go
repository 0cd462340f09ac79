// Package app wires the ingestion pipeline to the store and the assistant:
// adapter output is normalized, appended, and the snapshot cache invalidated
// in one synchronous sequence per request.
package app

import (
	"context"

	"github.com/cinedata/moviedash/internal/assistant"
	"github.com/cinedata/moviedash/internal/dataset"
	"github.com/cinedata/moviedash/internal/ingest"
	"github.com/cinedata/moviedash/internal/logger"
	"github.com/cinedata/moviedash/internal/store"
)

// App owns the process-wide shared resources: the store handle, the
// snapshot cache and the assistant. All HTTP handlers go through it.
type App struct {
	log   *logger.Logger
	store store.Store
	cache *store.Cache
	asst  *assistant.Assistant

	roleOverrides map[string][]string
	fetchLimit    int
}

type Options struct {
	// RoleOverrides replaces the per-role column candidate lists.
	RoleOverrides map[string][]string

	// FetchLimit bounds every snapshot query.
	FetchLimit int
}

func New(log *logger.Logger, st store.Store, cache *store.Cache, asst *assistant.Assistant, opts Options) *App {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = 500
	}
	return &App{
		log:           log.With("component", "app"),
		store:         st,
		cache:         cache,
		asst:          asst,
		roleOverrides: opts.RoleOverrides,
		fetchLimit:    opts.FetchLimit,
	}
}

// Ingest runs one adapter through the full pipeline: produce, normalize,
// append, invalidate. Returns the number of rows appended. Adapter and sink
// errors pass through untouched so callers can distinguish the kinds.
func (a *App) Ingest(ctx context.Context, adapter ingest.Adapter) (int, error) {
	rs, err := adapter.Produce(ctx)
	if err != nil {
		return 0, err
	}

	rs = dataset.Normalize(rs)
	if rs.Len() == 0 {
		a.log.Info("ingest produced no rows", "adapter", adapter.Name())
		return 0, nil
	}

	if err := a.store.Append(ctx, a.cache.Table(), rs); err != nil {
		return 0, err
	}

	// Unconditional: the next read must see the appended rows.
	a.cache.Invalidate()

	a.log.Info("ingested batch", "adapter", adapter.Name(), "rows", rs.Len(), "table", a.cache.Table())
	return rs.Len(), nil
}

// Window returns the current dataset snapshot (bounded by limit, which is
// clamped to the configured fetch limit) and its semantic role mapping.
func (a *App) Window(ctx context.Context, limit int) (*store.Snapshot, dataset.RoleMapping, error) {
	if limit <= 0 || limit > a.fetchLimit {
		limit = a.fetchLimit
	}
	snap, err := a.cache.Fetch(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	return snap, dataset.ResolveRoles(snap.Data, a.roleOverrides), nil
}

// Ask answers a chat question against the current snapshot. A store failure
// does not take the conversational feature down: the assistant then sees an
// empty sample and says so, per the degraded-but-usable contract.
func (a *App) Ask(ctx context.Context, session, question string) (string, string, error) {
	if session == "" {
		session = assistant.NewSessionID()
	}

	var data dataset.RowSet
	var roles dataset.RoleMapping
	if snap, m, err := a.Window(ctx, a.fetchLimit); err != nil {
		a.log.Warn("chat proceeding without dataset", "error", err)
		roles = dataset.RoleMapping{}
	} else {
		data = snap.Data
		roles = m
	}

	answer, err := a.asst.Ask(ctx, session, question, data, roles)
	return answer, session, err
}

// ChatHistory returns the session's turns in order.
func (a *App) ChatHistory(session string) []assistant.Turn {
	return a.asst.History().Turns(session)
}

// EndChat drops the session's history.
func (a *App) EndChat(session string) {
	a.asst.History().End(session)
}

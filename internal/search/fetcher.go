// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search resolves catalog queries through a keyed result cache.
//
// The Fetcher sits between the session state and the catalog client. It
// gates inactive queries (no term, no filters) so they never reach the
// network, memoizes result pages by query key, serves stale pages while
// revalidating in the background, and discards fetches that resolve after
// the caller has already moved on to a different query.
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// ErrSuperseded reports that a fetch resolved after a different query became
// current. Callers should drop the result and keep the page they are showing.
var ErrSuperseded = errors.New("search: superseded by a newer query")

// revalidateTimeout bounds a background refresh, which runs detached from
// the request that triggered it.
const revalidateTimeout = 30 * time.Second

// now is replaced in tests to step through the staleness window.
var now = time.Now

// Fetcher memoizes catalog searches by query key.
type Fetcher struct {
	svc catalog.Service
	cfg types.SearchConfig

	// OnUpdate, when set, receives the fresh page after a background
	// revalidation completes for the query that is still current. Refreshes
	// for queries the caller has left behind update the cache only.
	OnUpdate func(*types.ResultPage)

	mu         sync.Mutex
	currentKey string
	entries    map[string]*entry
}

type entry struct {
	page       *types.ResultPage
	fetchedAt  time.Time
	refreshing bool
}

// NewFetcher wraps svc with a result cache. Zero config fields fall back to
// defaults: page size 10, max page size 100, staleness 5 minutes.
func NewFetcher(svc catalog.Service, cfg types.SearchConfig) *Fetcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.Staleness <= 0 {
		cfg.Staleness = 5 * time.Minute
	}
	return &Fetcher{svc: svc, cfg: cfg, entries: make(map[string]*entry)}
}

// Fetch resolves q to a result page. Inactive queries resolve to an empty
// page without touching the network. Results are cached by query key and
// reused while fresh; a stale hit is returned immediately and refreshed in
// the background. If a different query becomes current before a fetch
// resolves, the late result is cached but reported as ErrSuperseded.
func (f *Fetcher) Fetch(ctx context.Context, q types.Query) (*types.ResultPage, error) {
	if q.PageSize <= 0 {
		q.PageSize = f.cfg.PageSize
	}
	q = q.ClampPageSize(f.cfg.MaxPageSize)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := q.Key()
	f.mu.Lock()
	f.currentKey = key

	if !q.IsActive() {
		f.mu.Unlock()
		return types.EmptyResult(q), nil
	}

	if e, ok := f.entries[key]; ok {
		page := e.page
		if now().Sub(e.fetchedAt) < f.cfg.Staleness {
			f.mu.Unlock()
			return page, nil
		}
		if !e.refreshing {
			e.refreshing = true
			go f.revalidate(q, key)
		}
		f.mu.Unlock()
		return page, nil
	}
	f.mu.Unlock()

	page, err := f.svc.Search(ctx, q)
	if err != nil {
		return nil, normalize(err)
	}

	f.mu.Lock()
	f.store(key, page)
	current := f.currentKey == key
	f.mu.Unlock()

	if !current {
		return nil, ErrSuperseded
	}
	return page, nil
}

// Invalidate drops the cached page for q so the next Fetch hits the backend.
func (f *Fetcher) Invalidate(q types.Query) {
	if q.PageSize <= 0 {
		q.PageSize = f.cfg.PageSize
	}
	q = q.ClampPageSize(f.cfg.MaxPageSize)

	f.mu.Lock()
	delete(f.entries, q.Key())
	f.mu.Unlock()
}

// Reset drops every cached page.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	f.entries = make(map[string]*entry)
	f.mu.Unlock()
}

// revalidate refreshes a stale entry off the caller's critical path. On
// failure the stale page stays in place and the next visit retries.
func (f *Fetcher) revalidate(q types.Query, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
	defer cancel()

	page, err := f.svc.Search(ctx, q)

	f.mu.Lock()
	if e, ok := f.entries[key]; ok {
		e.refreshing = false
	}
	if err != nil {
		f.mu.Unlock()
		return
	}
	f.store(key, page)
	current := f.currentKey == key
	cb := f.OnUpdate
	f.mu.Unlock()

	if current && cb != nil {
		cb(page)
	}
}

// store inserts a page and sweeps out entries that have sat unrefreshed for
// more than two staleness windows.
func (f *Fetcher) store(key string, page *types.ResultPage) {
	cutoff := now().Add(-2 * f.cfg.Staleness)
	for k, e := range f.entries {
		if k != key && !e.refreshing && e.fetchedAt.Before(cutoff) {
			delete(f.entries, k)
		}
	}
	f.entries[key] = &entry{page: page, fetchedAt: now()}
}

// normalize maps backend failures onto the search error code. Coded errors
// pass through so callers can tell bad input from backend trouble.
func normalize(err error) error {
	if code := types.ErrorCode(err); code != types.EINTERNAL {
		return err
	}
	return types.WrapErr(types.ESEARCH, err, "search failed")
}

// Package options loads dependent filter options from registered sources,
// caching them in Redis and collapsing concurrent identical requests.
package options

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

// FetchCached is reported to the observer when a list came from Redis.
const FetchCached = "cached"

// DefaultFetchTimeout bounds a shared source call.
const DefaultFetchTimeout = 10 * time.Second

// ErrUnknownSource is returned for a field without a registered source.
var ErrUnknownSource = errors.New("options: no source for field")

// SourceFunc loads the options of a field scoped to a parent value.
type SourceFunc func(ctx context.Context, session filters.Session, parent filters.Value) ([]filters.Option, error)

// Loader implements filters.Fetcher over registered sources.
type Loader struct {
	cache    *Cache
	sources  map[string]SourceFunc
	group    singleflight.Group
	observer filters.FetchObserver
	timeout  time.Duration
}

// NewLoader builds a loader. cache and observer may be nil.
func NewLoader(cache *Cache, observer filters.FetchObserver) *Loader {
	return &Loader{
		cache:    cache,
		sources:  make(map[string]SourceFunc),
		observer: observer,
		timeout:  DefaultFetchTimeout,
	}
}

// SetTimeout changes the bound on a shared source call. Non-positive values
// restore the default.
func (l *Loader) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultFetchTimeout
	}
	l.timeout = d
}

// Register binds a source to a field key. Later registrations win.
func (l *Loader) Register(field string, src SourceFunc) {
	l.sources[field] = src
}

// Has reports whether a source is registered for field.
func (l *Loader) Has(field string) bool {
	_, ok := l.sources[field]
	return ok
}

// FetchOptions loads options for req, scoped to the session company and
// branch. The shared call outlives a canceled caller so that other callers
// waiting on the same key still get the result.
func (l *Loader) FetchOptions(ctx context.Context, req filters.OptionRequest) ([]filters.Option, error) {
	src, ok := l.sources[req.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, req.Field)
	}
	key, err := l.cache.BuildKey(ctx, "listview", "options", req.Field,
		scopeKey(req.Session), req.Value.Encode())
	if err != nil {
		return nil, fmt.Errorf("options: build key: %w", err)
	}

	ch := l.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		var out []filters.Option
		hit, err := l.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			opts, err := src(ctx, req.Session, req.Value)
			if opts == nil {
				opts = []filters.Option{}
			}
			return opts, err
		})
		if hit && l.observer != nil {
			l.observer.ObserveOptionFetch(req.Field, FetchCached)
		}
		return out, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		opts, _ := res.Val.([]filters.Option)
		return append([]filters.Option(nil), opts...), nil
	}
}

// scopeKey encodes every scope dimension a source may filter on. The user id
// is left out since sources never read it.
func scopeKey(s filters.Session) string {
	return "c" + strconv.FormatInt(s.CompanyID, 10) + "b" + strconv.FormatInt(s.BranchID, 10)
}

// Refresh drops every cached option list.
func (l *Loader) Refresh(ctx context.Context) error {
	_, err := l.cache.Bump(ctx)
	return err
}

package tablestate

import (
	"log/slog"
	"net/url"
	"sync"
)

// NavigateMode selects how a URL write affects browser history.
type NavigateMode int

const (
	// Replace rewrites the current history entry.
	Replace NavigateMode = iota
	// Push adds a new history entry.
	Push
)

// Navigator writes query changes to the page URL.
type Navigator interface {
	Navigate(patch QueryPatch, mode NavigateMode)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(patch QueryPatch, mode NavigateMode)

// Navigate calls f.
func (f NavigatorFunc) Navigate(patch QueryPatch, mode NavigateMode) { f(patch, mode) }

// SearchParams reads the current URL query.
type SearchParams interface {
	CurrentSearchParams() url.Values
}

// SearchParamsFunc adapts a function to SearchParams.
type SearchParamsFunc func() url.Values

// CurrentSearchParams calls f.
func (f SearchParamsFunc) CurrentSearchParams() url.Values { return f() }

// Status is the synchronisation status of an Adapter.
type Status int

const (
	StatusIdle Status = iota
	StatusSyncing
)

// Adapter mirrors table state to and from the URL. Every transition performs
// exactly one write, either URL into state or state into URL.
type Adapter struct {
	cfg    Config
	nav    Navigator
	params SearchParams
	logger *slog.Logger

	// OnClamp, when set, is called after EnsurePageInRange moved the page.
	OnClamp func(from, to int)

	mu     sync.Mutex
	status Status
	state  State
}

// NewAdapter validates cfg and reads the initial state from the URL.
func NewAdapter(cfg Config, nav Navigator, params SearchParams, logger *slog.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		cfg:    cfg.withDefaults(),
		nav:    nav,
		params: params,
		logger: logger,
		state:  cfg.DefaultState(),
	}
	a.SyncFromURL()
	return a, nil
}

// Config returns the effective configuration.
func (a *Adapter) Config() Config { return a.cfg }

// State returns a copy of the current table state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Status reports whether a write is in progress.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// SyncFromURL reads the URL into the table state after external navigation.
// It reports false when skipped because the adapter is writing the URL.
func (a *Adapter) SyncFromURL() bool {
	if !a.begin() {
		return false
	}
	var values url.Values
	if a.params != nil {
		values = a.params.CurrentSearchParams()
	}
	next := Decode(a.cfg, values)
	a.mu.Lock()
	a.state = next
	a.mu.Unlock()
	a.end()
	return true
}

// OnPaginationChange applies a pagination update and writes it to the URL.
// A non-positive page size keeps the current one.
func (a *Adapter) OnPaginationChange(update func(Pagination) Pagination) {
	a.write(func(s *State) {
		p := update(s.Pagination())
		if p.PageIndex < 0 {
			p.PageIndex = 0
		}
		if p.PageSize > 0 {
			s.PageSize = p.PageSize
		}
		s.PageIndex = p.PageIndex
	})
}

// OnSortingChange applies a sorting update and writes it to the URL.
func (a *Adapter) OnSortingChange(update func([]Sort) []Sort) {
	a.write(func(s *State) {
		s.Sorting = update(s.Sorting)
	})
}

// OnColumnFiltersChange applies a column filter update and writes it to the
// URL. Empty filters are dropped.
func (a *Adapter) OnColumnFiltersChange(update func(map[string]FilterValue) map[string]FilterValue) {
	a.write(func(s *State) {
		next := update(s.ColumnFilters)
		s.ColumnFilters = make(map[string]FilterValue, len(next))
		for k, v := range next {
			if !v.IsEmpty() {
				s.ColumnFilters[k] = v
			}
		}
	})
}

// EnsurePageInRange clamps the page index into [0, max(0, pageCount-1)].
// Call it after the row model has been recomputed. It reports whether the
// page moved.
func (a *Adapter) EnsurePageInRange(pageCount int) bool {
	a.mu.Lock()
	from := a.state.PageIndex
	a.mu.Unlock()
	if from < pageCount {
		return false
	}
	to := max(0, pageCount-1)
	if to == from {
		return false
	}
	a.write(func(s *State) {
		s.PageIndex = to
	})
	a.logger.Debug("page index clamped", slog.Int("from", from), slog.Int("to", to), slog.Int("page_count", pageCount))
	if a.OnClamp != nil {
		a.OnClamp(from, to)
	}
	return true
}

// Query returns the URL values the current state would produce on top of
// base.
func (a *Adapter) Query(base url.Values) url.Values {
	return Encode(a.cfg, a.State()).Apply(base)
}

func (a *Adapter) write(mutate func(*State)) {
	if !a.begin() {
		a.logger.Debug("table state write skipped while syncing")
		return
	}
	a.mu.Lock()
	next := a.state.clone()
	mutate(&next)
	a.state = next
	a.mu.Unlock()

	if a.nav != nil {
		a.nav.Navigate(Encode(a.cfg, next), Replace)
	}
	a.end()
}

func (a *Adapter) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusSyncing {
		return false
	}
	a.status = StatusSyncing
	return true
}

func (a *Adapter) end() {
	a.mu.Lock()
	a.status = StatusIdle
	a.mu.Unlock()
}

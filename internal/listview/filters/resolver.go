package filters

import (
	"context"
	"log/slog"
	"sync"
)

// Fetch outcomes reported to a FetchObserver.
const (
	FetchOK    = "ok"
	FetchError = "error"
	FetchStale = "stale"
)

// Option is one selectable entry of a dependent field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Session carries the caller identity and organisational scope handed to
// option fetchers. It is always passed explicitly.
type Session struct {
	UserID    string `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	BranchID  int64  `json:"branch_id"`
}

// OptionRequest asks for the options of Field scoped to Parent.
type OptionRequest struct {
	Field   string
	Parent  string
	Value   Value
	Session Session
}

// Fetcher loads dependent field options.
type Fetcher interface {
	FetchOptions(ctx context.Context, req OptionRequest) ([]Option, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req OptionRequest) ([]Option, error)

// FetchOptions calls f.
func (f FetcherFunc) FetchOptions(ctx context.Context, req OptionRequest) ([]Option, error) {
	return f(ctx, req)
}

// FetchObserver receives one event per completed fetch.
type FetchObserver interface {
	ObserveOptionFetch(field, result string)
}

// OptionState is what the rendering layer needs to draw a dependent field.
type OptionState struct {
	Options  []Option `json:"options"`
	Disabled bool     `json:"disabled"`
	Loading  bool     `json:"loading"`
	Notice   string   `json:"notice,omitempty"`
}

// fetchFailedNotice is shown when options could not be loaded.
const fetchFailedNotice = "Options could not be loaded. Try again."

// Resolver cascades parent changes to dependent fields and keeps their
// option lists in step with the latest parent value. Only the most recently
// issued fetch per field may update state.
type Resolver struct {
	def      Definition
	fetcher  Fetcher
	session  Session
	logger   *slog.Logger
	observer FetchObserver

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	token  uint64
	latest map[string]uint64
	states map[string]OptionState
	closed bool
}

// NewResolver builds a resolver over the dependency table of def. A nil
// fetcher leaves refetch dependents with empty options.
func NewResolver(def Definition, fetcher Fetcher, session Session, logger *slog.Logger, observer FetchObserver) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		def:      def,
		fetcher:  fetcher,
		session:  session,
		logger:   logger,
		observer: observer,
		ctx:      ctx,
		cancel:   cancel,
		latest:   make(map[string]uint64),
		states:   make(map[string]OptionState),
	}
}

// Cascade returns every field that must be deleted from the draft because
// parent changed, and resets their option lists. Direct refetch dependents
// get a new fetch scoped to value unless value is empty.
func (r *Resolver) Cascade(parent string, value Value) []string {
	deps := r.def.Dependents(parent)
	if len(deps) == 0 {
		return nil
	}
	cleared := make([]string, 0, len(deps))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dep := range deps {
		cleared = append(cleared, dep.Field)
		direct := dep.DependsOn == parent
		switch {
		case dep.OnParentChange == ActionClear:
			r.invalidateLocked(dep.Field)
			r.states[dep.Field] = OptionState{}
		case direct && !value.IsEmpty():
			r.issueLocked(dep, value)
		default:
			r.invalidateLocked(dep.Field)
			r.states[dep.Field] = OptionState{Disabled: true}
		}
	}
	return cleared
}

// Prime loads options for every refetch dependent whose parent is present
// in draft, without clearing anything. Used when a panel is (re)opened.
func (r *Resolver) Prime(draft Filters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dep := range r.def.Dependencies {
		if dep.OnParentChange != ActionClearAndRefetch {
			continue
		}
		parent, ok := draft.Get(dep.DependsOn)
		if !ok {
			r.invalidateLocked(dep.Field)
			r.states[dep.Field] = OptionState{Disabled: true}
			continue
		}
		r.issueLocked(dep, parent)
	}
}

// Reset invalidates every pending fetch and empties all option lists.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dep := range r.def.Dependencies {
		r.invalidateLocked(dep.Field)
	}
	r.states = make(map[string]OptionState)
}

// State returns the option state of a dependent field.
func (r *Resolver) State(field string) OptionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(field)
}

// States returns the option state of every declared dependent field.
func (r *Resolver) States() map[string]OptionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]OptionState, len(r.def.Dependencies))
	for _, dep := range r.def.Dependencies {
		out[dep.Field] = r.stateLocked(dep.Field)
	}
	return out
}

// Settle blocks until every fetch issued so far has completed or ctx ends.
func (r *Resolver) Settle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close discards the results of any fetch still in flight.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
}

func (r *Resolver) stateLocked(field string) OptionState {
	st, ok := r.states[field]
	if !ok {
		for _, dep := range r.def.Dependencies {
			if dep.Field == field && dep.OnParentChange == ActionClearAndRefetch {
				return OptionState{Disabled: true}
			}
		}
		return OptionState{}
	}
	st.Options = append([]Option(nil), st.Options...)
	return st
}

func (r *Resolver) invalidateLocked(field string) {
	r.token++
	r.latest[field] = r.token
}

func (r *Resolver) issueLocked(dep Dependency, parent Value) {
	r.token++
	token := r.token
	r.latest[dep.Field] = token
	if r.closed {
		return
	}
	if r.fetcher == nil {
		r.states[dep.Field] = OptionState{}
		return
	}
	r.states[dep.Field] = OptionState{Disabled: true, Loading: true}

	req := OptionRequest{Field: dep.Field, Parent: dep.DependsOn, Value: parent, Session: r.session}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		options, err := r.fetcher.FetchOptions(r.ctx, req)
		r.complete(req, token, options, err)
	}()
}

func (r *Resolver) complete(req OptionRequest, token uint64, options []Option, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.latest[req.Field] != token {
		r.logger.Debug("discard stale option fetch",
			slog.String("field", req.Field),
			slog.String("parent", req.Value.Encode()))
		r.observe(req.Field, FetchStale)
		return
	}
	if err != nil {
		r.logger.Warn("option fetch failed",
			slog.String("field", req.Field),
			slog.String("parent", req.Value.Encode()),
			slog.Any("error", err))
		r.states[req.Field] = OptionState{Notice: fetchFailedNotice}
		r.observe(req.Field, FetchError)
		return
	}
	r.states[req.Field] = OptionState{Options: append([]Option(nil), options...)}
	r.observe(req.Field, FetchOK)
}

func (r *Resolver) observe(field, result string) {
	if r.observer != nil {
		r.observer.ObserveOptionFetch(field, result)
	}
}

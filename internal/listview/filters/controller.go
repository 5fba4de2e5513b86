package filters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrPanelClosed is returned when editing a panel that is not open.
var ErrPanelClosed = errors.New("filters: panel is closed")

// State is the lifecycle state of a filter panel.
type State int

const (
	StateClosed State = iota
	StateOpenClean
	StateOpenDirty
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOpenClean:
		return "open-clean"
	case StateOpenDirty:
		return "open-dirty"
	default:
		return "closed"
	}
}

// ControllerConfig carries the collaborators of a Controller.
type ControllerConfig struct {
	// OnFiltersChange receives the effective filters on Apply and Clear.
	OnFiltersChange func(Filters)
	Fetcher         Fetcher
	Session         Session
	Logger          *slog.Logger
	Observer        FetchObserver
}

// Controller owns the draft values and category activation of one list
// view's filter panel.
type Controller struct {
	def      Definition
	onChange func(Filters)
	resolver *Resolver
	logger   *slog.Logger

	mu      sync.Mutex
	open    bool
	dirty   bool
	draft   Filters
	active  map[string]bool
	stash   map[string]Filters
	applied Filters
}

// NewController validates def and returns a closed controller.
func NewController(def Definition, cfg ControllerConfig) (*Controller, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		def:      def,
		onChange: cfg.OnFiltersChange,
		resolver: NewResolver(def, cfg.Fetcher, cfg.Session, logger, cfg.Observer),
		logger:   logger,
		active:   def.ActiveFrom(Filters{}),
	}, nil
}

// Definition returns the static declaration.
func (c *Controller) Definition() Definition { return c.def }

// Open seeds the draft from current and marks a category active iff any of
// its fields is present.
func (c *Controller) Open(current Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = current.clone()
	c.applied = current.clone()
	c.active = c.def.ActiveFrom(current)
	c.stash = nil
	c.open = true
	c.dirty = false
	c.resolver.Prime(c.draft)
}

// Toggle flips a category. Deactivation removes every field of the category
// from the draft; under RetentionPreserve the values are kept aside and come
// back on re-activation.
func (c *Controller) Toggle(category string) error {
	cat, ok := c.def.Category(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrPanelClosed
	}
	c.dirty = true
	if c.active[category] {
		c.active[category] = false
		c.deactivateLocked(cat)
		return nil
	}
	c.active[category] = true
	if stashed, ok := c.stash[category]; ok && c.def.Retention == RetentionPreserve {
		delete(c.stash, category)
		for k, v := range stashed.values {
			c.draft = c.draft.With(k, v)
		}
		c.resolver.Prime(c.draft)
	}
	return nil
}

func (c *Controller) deactivateLocked(cat Category) {
	keys := cat.FieldKeys()
	if c.def.Retention == RetentionPreserve {
		kept := Filters{values: make(map[string]Value)}
		for _, k := range keys {
			if v, ok := c.draft.Get(k); ok {
				kept.values[k] = v
			}
		}
		if kept.Len() > 0 {
			if c.stash == nil {
				c.stash = make(map[string]Filters)
			}
			c.stash[cat.Name] = kept
		}
	}
	c.draft = c.draft.Without(keys...)
	for _, k := range keys {
		c.draft = c.draft.Without(c.resolver.Cascade(k, Value{})...)
	}
}

// SetField upserts key when value is non-empty and deletes it otherwise.
// A changed parent value clears every dependent field.
func (c *Controller) SetField(key string, value Value) error {
	field, ok := c.def.Field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if !value.IsEmpty() && value.Kind() != field.Kind {
		return fmt.Errorf("%w: %q expects %s, got %s", ErrKindMismatch, key, field.Kind, value.Kind())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrPanelClosed
	}
	c.dirty = true
	prev, had := c.draft.Get(key)
	c.draft = c.draft.With(key, value)
	next, has := c.draft.Get(key)
	if had == has && (!has || prev.Equal(next)) {
		return nil
	}
	c.draft = c.draft.Without(c.resolver.Cascade(key, next)...)
	return nil
}

// Apply emits the effective filters, records them as applied and closes
// the panel. With no active category the emitted set is empty.
func (c *Controller) Apply() Filters {
	c.mu.Lock()
	effective := c.def.Effective(c.draft, c.active)
	c.applied = effective.clone()
	c.draft = effective.clone()
	c.stash = nil
	c.open = false
	c.dirty = false
	cb := c.onChange
	c.mu.Unlock()

	if cb != nil {
		cb(effective)
	}
	return effective
}

// Clear empties the draft, deactivates every category and emits an empty set.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.draft = Filters{}
	c.applied = Filters{}
	c.active = c.def.ActiveFrom(Filters{})
	c.stash = nil
	c.open = false
	c.dirty = false
	c.resolver.Reset()
	cb := c.onChange
	c.mu.Unlock()

	if cb != nil {
		cb(Filters{})
	}
}

// Cancel closes the panel and discards the draft.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = c.applied.clone()
	c.active = c.def.ActiveFrom(c.applied)
	c.stash = nil
	c.open = false
	c.dirty = false
	c.resolver.Reset()
}

// State reports the panel lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.open:
		return StateClosed
	case c.dirty:
		return StateOpenDirty
	default:
		return StateOpenClean
	}
}

// Draft returns a copy of the draft values.
func (c *Controller) Draft() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

// Applied returns the last applied effective filters.
func (c *Controller) Applied() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied.clone()
}

// Active returns a copy of the activation map.
func (c *Controller) Active() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.active))
	for k, v := range c.active {
		out[k] = v
	}
	return out
}

// Effective computes the filters Apply would emit right now.
func (c *Controller) Effective() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Effective(c.draft, c.active)
}

// HasUnsavedChanges compares the effective draft with the applied filters.
func (c *Controller) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return HasUnsavedChanges(c.def.Effective(c.draft, c.active), c.applied)
}

// Options returns the option state of a dependent field.
func (c *Controller) Options(field string) OptionState {
	return c.resolver.State(field)
}

// OptionStates returns the option state of every dependent field.
func (c *Controller) OptionStates() map[string]OptionState {
	return c.resolver.States()
}

// Settle waits for in-flight option fetches.
func (c *Controller) Settle(ctx context.Context) error {
	return c.resolver.Settle(ctx)
}

// Close detaches the controller; late fetch results are ignored.
func (c *Controller) Close() {
	c.resolver.Close()
}

// Snapshot is the serialisable controller state.
type Snapshot struct {
	Open    bool               `json:"open"`
	Dirty   bool               `json:"dirty"`
	Draft   Filters            `json:"draft"`
	Active  map[string]bool    `json:"active"`
	Applied Filters            `json:"applied"`
	Stash   map[string]Filters `json:"stash,omitempty"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Open:    c.open,
		Dirty:   c.dirty,
		Draft:   c.draft.clone(),
		Active:  make(map[string]bool, len(c.active)),
		Applied: c.applied.clone(),
	}
	for k, v := range c.active {
		s.Active[k] = v
	}
	if len(c.stash) > 0 {
		s.Stash = make(map[string]Filters, len(c.stash))
		for k, v := range c.stash {
			s.Stash[k] = v.clone()
		}
	}
	return s
}

// Restore replaces the state with s. Unknown categories and fields are
// dropped. An open panel reloads its dependent options.
func (c *Controller) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = s.Open
	c.dirty = s.Dirty && s.Open
	c.draft = c.known(s.Draft)
	c.applied = c.known(s.Applied)
	c.active = c.def.ActiveFrom(Filters{})
	for k, v := range s.Active {
		if _, ok := c.active[k]; ok {
			c.active[k] = v
		}
	}
	c.stash = nil
	for k, v := range s.Stash {
		if _, ok := c.def.Category(k); !ok {
			continue
		}
		if c.stash == nil {
			c.stash = make(map[string]Filters)
		}
		c.stash[k] = c.known(v)
	}
	if c.open {
		c.resolver.Prime(c.draft)
	}
}

func (c *Controller) known(f Filters) Filters {
	out := Filters{values: make(map[string]Value)}
	for k, v := range f.values {
		field, ok := c.def.Field(k)
		if !ok || v.Kind() != field.Kind || v.IsEmpty() {
			continue
		}
		out.values[k] = v
	}
	return out
}

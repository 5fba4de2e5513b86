package httpview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/options"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Headers exchanged with an htmx front end.
const (
	headerReplaceURL = "HX-Replace-Url"
	headerCurrentURL = "HX-Current-URL"
)

const (
	loadFailedNotice    = "The list could not be loaded. Showing no results."
	optionsFailedNotice = "Options could not be loaded. Try again."
)

// PanelStore persists controller snapshots between requests.
type PanelStore interface {
	Load(ctx context.Context, sessionID, view string) (filters.Snapshot, error)
	Save(ctx context.Context, sessionID, view string, snap filters.Snapshot) error
}

// Deps groups the collaborators shared by every list view handler.
type Deps struct {
	Logger   *slog.Logger
	Store    PanelStore
	Fetcher  filters.Fetcher
	Observer filters.FetchObserver
	// OnClamp is called with the view name whenever a page index was clamped.
	OnClamp func(view string)
	// SettleTimeout bounds how long a panel request waits for option fetches.
	SettleTimeout time.Duration
	// Retention overrides the retention policy of every view when set.
	Retention *filters.RetentionPolicy
}

// Handler serves one list view.
type Handler[T any] struct {
	view     View[T]
	logger   *slog.Logger
	store    PanelStore
	fetcher  filters.Fetcher
	observer filters.FetchObserver
	onClamp  func(string)
	settle   time.Duration
	validate *validator.Validate
}

// NewHandler validates the view declaration and builds its handler.
func NewHandler[T any](view View[T], deps Deps) (*Handler[T], error) {
	if deps.Retention != nil {
		view.Filters.Retention = *deps.Retention
	}
	if err := view.validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, errors.New("httpview: panel store required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settle := deps.SettleTimeout
	if settle <= 0 {
		settle = 3 * time.Second
	}
	return &Handler[T]{
		view:     view,
		logger:   logger.With(slog.String("view", view.Name)),
		store:    deps.Store,
		fetcher:  deps.Fetcher,
		observer: deps.Observer,
		onClamp:  deps.OnClamp,
		settle:   settle,
		validate: validator.New(),
	}, nil
}

// MountRoutes registers the list view routes.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/table", h.table)
	r.Get("/filters", h.panel)
	r.Post("/filters/open", h.open)
	r.Post("/filters/toggle", h.toggle)
	r.Post("/filters/field", h.field)
	r.Post("/filters/apply", h.apply)
	r.Post("/filters/clear", h.clear)
	r.Post("/filters/cancel", h.cancel)
	r.Get("/options/{field}", h.options)
}

type listResponse[T any] struct {
	View      string           `json:"view"`
	Rows      []T              `json:"rows"`
	Total     int              `json:"total"`
	PageCount int              `json:"page_count"`
	Table     tablestate.State `json:"table"`
	Filters   filters.Filters  `json:"filters"`
	URL       string           `json:"url"`
	Notice    string           `json:"notice,omitempty"`
}

type panelResponse struct {
	View      string                         `json:"view"`
	State     string                         `json:"state"`
	Draft     filters.Filters                `json:"draft"`
	Active    map[string]bool                `json:"active"`
	Effective filters.Filters                `json:"effective"`
	Unsaved   bool                           `json:"unsaved"`
	Options   map[string]filters.OptionState `json:"options"`
}

type toggleForm struct {
	Category string `validate:"required,max=64"`
}

type fieldForm struct {
	Key    string   `validate:"required,max=64"`
	Values []string `validate:"max=100,dive,max=256"`
}

type tableForm struct {
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0,lte=500"`
	Sort     string `validate:"max=256"`
	Column   string `validate:"max=64"`
	Values   []string
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	snap, err := h.store.Load(r.Context(), sess.ID, h.view.Name)
	if err != nil {
		h.logger.Warn("load panel state", slog.Any("error", err))
	}
	loc := &pageLocation{path: h.view.Path, values: r.URL.Query()}
	h.respondList(w, r, sess, loc, snap.Applied, nil)
}

func (h *Handler[T]) table(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	form := tableForm{
		Sort:   r.PostForm.Get("sort"),
		Column: r.PostForm.Get("column"),
		Values: r.PostForm["value"],
	}
	var err error
	if form.Page, err = optionalInt(r.PostForm.Get("page")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if form.PageSize, err = optionalInt(r.PostForm.Get("page_size")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	snap, err := h.store.Load(r.Context(), sess.ID, h.view.Name)
	if err != nil {
		h.logger.Warn("load panel state", slog.Any("error", err))
	}
	loc := h.currentLocation(r)
	h.respondList(w, r, sess, loc, snap.Applied, func(a *tablestate.Adapter) {
		if form.Page > 0 || form.PageSize > 0 {
			a.OnPaginationChange(func(p tablestate.Pagination) tablestate.Pagination {
				if form.Page > 0 {
					p.PageIndex = form.Page - 1
				}
				if form.PageSize > 0 {
					p.PageSize = form.PageSize
				}
				return p
			})
		}
		if r.PostForm.Has("sort") {
			sorting := tablestate.ParseSorting(a.Config(), form.Sort)
			a.OnSortingChange(func([]tablestate.Sort) []tablestate.Sort { return sorting })
		}
		if form.Column != "" {
			value := h.columnValue(form.Column, form.Values)
			a.OnColumnFiltersChange(func(current map[string]tablestate.FilterValue) map[string]tablestate.FilterValue {
				next := make(map[string]tablestate.FilterValue, len(current)+1)
				for k, v := range current {
					next[k] = v
				}
				next[form.Column] = value
				return next
			})
		}
	})
}

// respondList runs the read path: URL into table state, scoped collection,
// applied filters, grid, then the page clamp once the row model exists.
func (h *Handler[T]) respondList(w http.ResponseWriter, r *http.Request, sess *shared.Session, loc *pageLocation, applied filters.Filters, interact func(*tablestate.Adapter)) {
	adapter, err := tablestate.NewAdapter(h.view.Table, loc, loc, h.logger)
	if err != nil {
		h.logger.Error("build table adapter", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	adapter.OnClamp = func(from, to int) {
		if h.onClamp != nil {
			h.onClamp(h.view.Name)
		}
	}
	if interact != nil {
		interact(adapter)
	}

	resp := listResponse[T]{View: h.view.Name, Filters: applied}
	rows, err := h.view.Source.ListScoped(r.Context(), ScopeFromSession(sess))
	if err != nil {
		h.logger.Error("load list rows", slog.Any("error", err))
		rows = nil
		resp.Notice = loadFailedNotice
	}
	rows = filters.FilterRows(rows, applied, h.view.Matchers)
	page := h.view.Grid.Apply(rows, adapter.State())
	if adapter.EnsurePageInRange(page.PageCount) {
		page = h.view.Grid.Apply(rows, adapter.State())
	}

	resp.Rows = page.Rows
	if resp.Rows == nil {
		resp.Rows = []T{}
	}
	resp.Total = page.Total
	resp.PageCount = page.PageCount
	resp.Table = adapter.State()
	resp.URL = loc.String()
	if loc.changed && loc.mode == tablestate.Replace {
		w.Header().Set(headerReplaceURL, resp.URL)
	}
	h.respond(w, http.StatusOK, resp)
}

func (h *Handler[T]) panel(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(*filters.Controller) error { return nil })
}

func (h *Handler[T]) open(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(c *filters.Controller) error {
		c.Open(c.Applied())
		return nil
	})
}

func (h *Handler[T]) toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	form := toggleForm{Category: r.PostForm.Get("category")}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	h.withController(w, r, func(c *filters.Controller) error {
		return c.Toggle(form.Category)
	})
}

func (h *Handler[T]) field(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	form := fieldForm{Key: r.PostForm.Get("key"), Values: r.PostForm["value"]}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	decl, ok := h.view.Filters.Field(form.Key)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: %w: %s", httpx.ErrValidation, filters.ErrUnknownField, form.Key))
		return
	}
	value, err := filters.ParseValue(decl.Kind, strings.Join(form.Values, ","))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
		return
	}
	h.withController(w, r, func(c *filters.Controller) error {
		return c.SetField(form.Key, value)
	})
}

func (h *Handler[T]) apply(w http.ResponseWriter, r *http.Request) {
	h.commit(w, r, func(c *filters.Controller) { c.Apply() })
}

func (h *Handler[T]) clear(w http.ResponseWriter, r *http.Request) {
	h.commit(w, r, func(c *filters.Controller) { c.Clear() })
}

func (h *Handler[T]) cancel(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(c *filters.Controller) error {
		c.Cancel()
		return nil
	})
}

// commit applies or clears the panel and answers with the recomputed list
// so that the page clamp runs against the new row count.
func (h *Handler[T]) commit(w http.ResponseWriter, r *http.Request, op func(*filters.Controller)) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var emitted filters.Filters
	c, err := h.loadController(r.Context(), sess, func(f filters.Filters) { emitted = f })
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer c.Close()
	op(c)
	if err := h.store.Save(r.Context(), sess.ID, h.view.Name, c.Snapshot()); err != nil {
		h.logger.Error("save panel state", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respondList(w, r, sess, h.currentLocation(r), emitted, nil)
}

func (h *Handler[T]) withController(w http.ResponseWriter, r *http.Request, op func(*filters.Controller) error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	c, err := h.loadController(r.Context(), sess, nil)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer c.Close()
	if err := op(c); err != nil {
		httpx.RespondError(w, mapControllerError(err))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	if err := c.Settle(ctx); err != nil {
		h.logger.Warn("option fetch still pending", slog.Any("error", err))
	}
	if err := h.store.Save(r.Context(), sess.ID, h.view.Name, c.Snapshot()); err != nil {
		h.logger.Error("save panel state", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, panelResponse{
		View:      h.view.Name,
		State:     c.State().String(),
		Draft:     c.Draft(),
		Active:    c.Active(),
		Effective: c.Effective(),
		Unsaved:   c.HasUnsavedChanges(),
		Options:   c.OptionStates(),
	})
}

func (h *Handler[T]) loadController(ctx context.Context, sess *shared.Session, onChange func(filters.Filters)) (*filters.Controller, error) {
	c, err := filters.NewController(h.view.Filters, filters.ControllerConfig{
		OnFiltersChange: onChange,
		Fetcher:         h.fetcher,
		Session:         ScopeFromSession(sess),
		Logger:          h.logger,
		Observer:        h.observer,
	})
	if err != nil {
		return nil, err
	}
	snap, err := h.store.Load(ctx, sess.ID, h.view.Name)
	if err != nil {
		h.logger.Warn("load panel state", slog.Any("error", err))
	}
	c.Restore(snap)
	return c, nil
}

// options serves the option list of a field. Dependent fields require
// their parent value in the parent query parameter.
func (h *Handler[T]) options(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	field := chi.URLParam(r, "field")
	if _, ok := h.view.Filters.Field(field); !ok || h.fetcher == nil {
		httpx.RespondError(w, fmt.Errorf("%w: no options for %q", httpx.ErrNotFound, field))
		return
	}
	req := filters.OptionRequest{Field: field, Session: ScopeFromSession(sess)}
	if dep, ok := h.dependency(field); ok {
		parentDecl, _ := h.view.Filters.Field(dep.DependsOn)
		parent, err := filters.ParseValue(parentDecl.Kind, r.URL.Query().Get("parent"))
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
			return
		}
		if parent.IsEmpty() {
			h.respond(w, http.StatusOK, filters.OptionState{Options: []filters.Option{}, Disabled: true})
			return
		}
		req.Parent = dep.DependsOn
		req.Value = parent
	}
	opts, err := h.fetcher.FetchOptions(r.Context(), req)
	if errors.Is(err, options.ErrUnknownSource) {
		httpx.RespondError(w, fmt.Errorf("%w: no options for %q", httpx.ErrNotFound, field))
		return
	}
	if err != nil {
		h.logger.Warn("option fetch failed", slog.String("field", field), slog.Any("error", err))
		h.respond(w, http.StatusOK, filters.OptionState{Options: []filters.Option{}, Notice: optionsFailedNotice})
		return
	}
	if opts == nil {
		opts = []filters.Option{}
	}
	h.respond(w, http.StatusOK, filters.OptionState{Options: opts})
}

func (h *Handler[T]) respond(w http.ResponseWriter, status int, body any) {
	if err := httpx.JSON(w, status, body); err != nil {
		h.logger.Error("write response", slog.Any("error", err))
	}
}

func (h *Handler[T]) dependency(field string) (filters.Dependency, bool) {
	for _, d := range h.view.Filters.Dependencies {
		if d.Field == field {
			return d, true
		}
	}
	return filters.Dependency{}, false
}

// currentLocation returns the list page URL a panel or table request was
// issued from: the htmx current URL header when present, the request query
// otherwise.
func (h *Handler[T]) currentLocation(r *http.Request) *pageLocation {
	if raw := r.Header.Get(headerCurrentURL); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			return &pageLocation{path: h.view.Path, values: u.Query()}
		}
	}
	return &pageLocation{path: h.view.Path, values: r.URL.Query()}
}

func (h *Handler[T]) columnValue(column string, values []string) tablestate.FilterValue {
	for _, c := range h.view.Table.Columns {
		if c.ColumnID == column && c.Type == tablestate.ParamArray {
			var items []string
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					items = append(items, v)
				}
			}
			return tablestate.FilterValue{Items: items}
		}
	}
	return tablestate.FilterValue{Text: strings.TrimSpace(strings.Join(values, " "))}
}

func mapControllerError(err error) error {
	switch {
	case errors.Is(err, filters.ErrPanelClosed):
		return fmt.Errorf("%w: %w", httpx.ErrConflict, err)
	case errors.Is(err, filters.ErrUnknownCategory),
		errors.Is(err, filters.ErrUnknownField),
		errors.Is(err, filters.ErrKindMismatch):
		return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	default:
		return err
	}
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", httpx.ErrValidation, raw)
	}
	return n, nil
}

package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// ListView is a list view handler mountable under its path.
type ListView interface {
	MountRoutes(r chi.Router)
}

// OptionsRefresher drops cached filter options.
type OptionsRefresher interface {
	Refresh(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	// ListViews maps mount paths such as "/purchases" to their handlers.
	ListViews map[string]ListView
	Options   OptionsRefresher
}

// NewRouter constructs the chi.Router of the admin server.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	// htmx clients fetch the token once and send it in the CSRF header.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		token, err := params.CSRFManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		_ = httpx.JSON(w, http.StatusOK, map[string]string{"token": token, "header": shared.CSRFHeader})
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		for path, view := range params.ListViews {
			r.Route(path, view.MountRoutes)
		}
		if params.Options != nil {
			r.Post("/listview/options/refresh", func(w http.ResponseWriter, r *http.Request) {
				if err := params.Options.Refresh(r.Context()); err != nil {
					logger.Error("refresh options cache", slog.Any("error", err))
					httpx.RespondError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
		}
	})
	return r
}

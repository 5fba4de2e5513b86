package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/branches"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/brands"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/companies"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/products"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/purchases"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/sales"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/options"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/panelstore"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "odyssey_admin_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	companiesRepo := companies.NewRepository(pool)
	branchesRepo := branches.NewRepository(pool)
	brandsRepo := brands.NewRepository(pool)

	loader := options.NewLoader(options.NewCache(redisClient, cfg.OptionsCacheTTL), metrics)
	loader.Register(catalog.FieldCompany, companiesRepo.Options)
	loader.Register(catalog.FieldBranch, branchesRepo.Options)
	loader.Register(products.FieldBrand, brandsRepo.Options)

	retention := cfg.Retention()
	deps := httpview.Deps{
		Logger:    logger,
		Store:     panelstore.New(redisClient, cfg.PanelStateTTL),
		Fetcher:   loader,
		Observer:  metrics,
		OnClamp:   metrics.ObservePageClamp,
		Retention: &retention,
	}
	settings := catalog.ListSettings{DefaultPageSize: cfg.ListDefaultPageSize, PageSizes: cfg.ListPageSizes}

	views := make(map[string]app.ListView)
	mount := func(path string, h app.ListView, err error) {
		if err != nil {
			logger.Error("build list view", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}
		views[path] = h
	}
	purchasesHandler, err := httpview.NewHandler(purchases.View(purchases.NewRepository(pool), settings), deps)
	mount("/purchases", purchasesHandler, err)
	salesHandler, err := httpview.NewHandler(sales.View(sales.NewRepository(pool), settings), deps)
	mount("/sales", salesHandler, err)
	productsHandler, err := httpview.NewHandler(products.View(products.NewRepository(pool), settings), deps)
	mount("/products", productsHandler, err)
	brandsHandler, err := httpview.NewHandler(brands.View(brandsRepo, settings), deps)
	mount("/brands", brandsHandler, err)
	branchesHandler, err := httpview.NewHandler(branches.View(branchesRepo, settings), deps)
	mount("/branches", branchesHandler, err)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		ListViews:      views,
		Options:        loader,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

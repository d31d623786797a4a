package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	analytichttp "github.com/matribhumi/matribhumi-admin/internal/analytics/http"
	"github.com/matribhumi/matribhumi-admin/internal/app"
	"github.com/matribhumi/matribhumi-admin/internal/auth"
	"github.com/matribhumi/matribhumi-admin/internal/bookings"
	"github.com/matribhumi/matribhumi-admin/internal/observability"
	"github.com/matribhumi/matribhumi-admin/internal/packages"
	"github.com/matribhumi/matribhumi-admin/internal/platform/cache"
	"github.com/matribhumi/matribhumi-admin/internal/settings"
	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
	"github.com/matribhumi/matribhumi-admin/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	apiClient := travelapi.NewClient(cfg.APIBaseURL).WithHTTPClient(&http.Client{
		Transport: metrics.InstrumentTransport(nil),
		Timeout:   cfg.APITimeout,
	})

	authHandler := auth.NewHandler(logger, apiClient, templates, sessionManager, csrfManager)

	reportCache := analytics.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	reportService := analytics.NewService(reportCache)

	analyticsHandler := analytichttp.NewHandler(logger, reportService,
		func(token string) analytichttp.Backend { return apiClient.WithToken(token) },
		templates, csrfManager)
	packagesHandler := packages.NewHandler(logger,
		func(token string) packages.Catalog { return apiClient.WithToken(token) },
		templates, csrfManager)
	bookingsHandler := bookings.NewHandler(logger,
		func(token string) bookings.Desk { return apiClient.WithToken(token) },
		templates, csrfManager)
	settingsHandler := settings.NewHandler(logger,
		func(token string) settings.Store { return apiClient.WithToken(token) },
		templates, csrfManager)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		AnalyticsHandler: analyticsHandler,
		PackagesHandler:  packagesHandler,
		BookingsHandler:  bookingsHandler,
		SettingsHandler:  settingsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

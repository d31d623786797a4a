package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	"github.com/matribhumi/matribhumi-admin/internal/app"
	jobmetrics "github.com/matribhumi/matribhumi-admin/internal/jobs"
	"github.com/matribhumi/matribhumi-admin/internal/platform/cache"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	reportCache := analytics.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	reportService := analytics.NewService(reportCache)

	metrics := jobmetrics.NewMetrics(nil)
	invalidateJob := jobs.NewCacheInvalidateJob(reportCache, logger, metrics)

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskCacheInvalidate, Handler: invalidateJob.Handle},
	}
	var cron []jobs.CronRegistration

	if cfg.APIServiceToken != "" {
		apiClient := travelapi.NewClient(cfg.APIBaseURL).
			WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}).
			WithToken(cfg.APIServiceToken)
		warmupJob := jobs.NewReportWarmupJob(reportService, apiClient, logger, metrics)
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle})

		warmupTask, err := jobs.NewReportWarmupTask(jobs.ReportWarmupPayload{})
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.WarmupCron,
			Task:    warmupTask,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	} else {
		logger.Warn("no api service token configured, report warmup disabled")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    handlers,
		Cron:        cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

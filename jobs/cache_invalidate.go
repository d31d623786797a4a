package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	jobmetrics "github.com/matribhumi/matribhumi-admin/internal/jobs"
)

// CacheInvalidateJob bumps the report cache generation so every cached
// report entry is re-resolved on the next request.
type CacheInvalidateJob struct {
	Cache   *analytics.Cache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCacheInvalidateJob wires dependencies for the invalidation handler.
func NewCacheInvalidateJob(cache *analytics.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheInvalidateJob {
	return &CacheInvalidateJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes TaskCacheInvalidate tasks.
func (j *CacheInvalidateJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache invalidate: handler not configured")
	}

	tracker := j.metrics().Track(TaskCacheInvalidate)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Cache.Bump(ctx); err != nil {
		resultErr = err
		j.logger().Error("bump report cache", slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("report cache invalidated")
	return resultErr
}

func (j *CacheInvalidateJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheInvalidate))
	}
	return slog.Default().With(slog.String("job", TaskCacheInvalidate))
}

func (j *CacheInvalidateJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

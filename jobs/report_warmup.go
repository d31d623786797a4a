package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	jobmetrics "github.com/matribhumi/matribhumi-admin/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// warmupLimits are the rank sizes the admin screens request, so the
// warmed cache entries match the keys the handlers look up.
var warmupLimits = []int{8, 10}

// ReportWarmupJob pre-populates the report cache for every dashboard
// preset using a service-account backend client.
type ReportWarmupJob struct {
	Analytics *analytics.Service
	Source    analytics.ReportSource
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time

	// state tracks the last warmed window so overlapping warmup runs
	// follow the same last-request-wins commit rule as the screens.
	state analytics.ViewState
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(svc *analytics.Service, source analytics.ReportSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Analytics: svc,
		Source:    source,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil || j.Source == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	presets := j.selectPresets(payload.Ranges)
	if len(presets) == 0 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	warmed := 0
	for _, preset := range presets {
		for _, limit := range warmupLimits {
			if err := j.warmWindow(ctx, preset.Window, limit); err != nil {
				resultErr = err
				logger.Error("warm report window",
					slog.String("range", preset.Code),
					slog.Int("limit", limit),
					slog.Any("error", err))
				return resultErr
			}
			warmed++
		}
	}

	logger.Info("completed report warmup",
		slog.Int("entries", warmed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportWarmupJob) warmWindow(ctx context.Context, window analytics.Window, limit int) error {
	windowCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	ticket := j.state.Activate(window)
	report, degraded, err := j.Analytics.Resolve(windowCtx, j.Source, window, limit)
	if err != nil {
		return err
	}
	ticket.Commit(analytics.Snapshot{
		Window:    window,
		Report:    report,
		Degraded:  degraded,
		FetchedAt: j.now(),
	})
	return nil
}

// LastWarmed reports the most recently committed warmup snapshot.
func (j *ReportWarmupJob) LastWarmed() (analytics.Snapshot, bool) {
	return j.state.Snapshot()
}

func (j *ReportWarmupJob) selectPresets(ranges []string) []analytics.Preset {
	if len(ranges) == 0 {
		return analytics.Presets
	}
	presets := make([]analytics.Preset, 0, len(ranges))
	for _, code := range ranges {
		presets = append(presets, analytics.PresetByCode(code))
	}
	return presets
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

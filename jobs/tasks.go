package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-populates the analytics report cache.
	TaskReportWarmup = "report:warmup"
	// TaskCacheInvalidate bumps the report cache generation.
	TaskCacheInvalidate = "report:invalidate"
)

// ReportWarmupPayload selects which report ranges to warm. An empty
// Ranges slice warms every dashboard preset.
type ReportWarmupPayload struct {
	Ranges []string `json:"ranges,omitempty"`
}

// NewReportWarmupTask constructs an Asynq task for report cache warmup.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewCacheInvalidateTask constructs an Asynq task invalidating the
// report cache.
func NewCacheInvalidateTask() *asynq.Task {
	return asynq.NewTask(TaskCacheInvalidate, nil)
}

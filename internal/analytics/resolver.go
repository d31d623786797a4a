package analytics

import (
	"context"
	"fmt"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// ReportSource is the slice of the backend client the resolver consumes.
// Handlers pass a token-scoped travelapi client per request.
type ReportSource interface {
	Report(ctx context.Context, q travelapi.ReportQuery) (travelapi.Report, error)
	Summary(ctx context.Context, sinceHours int) (travelapi.SummaryReport, error)
}

// Window selects a report range and bucket granularity.
type Window struct {
	SinceHours int    `json:"sinceHours"`
	Bucket     string `json:"bucket"`
}

// Preset is a named window offered by the dashboard range switcher.
type Preset struct {
	Code   string
	Label  string
	Window Window
}

// Presets mirrors the range switcher of the admin screens: 24 hours at
// hourly buckets, then 7 and 30 days at daily buckets.
var Presets = []Preset{
	{Code: "24h", Label: "Last 24 hours", Window: Window{SinceHours: 24, Bucket: travelapi.BucketHour}},
	{Code: "7d", Label: "Last 7 days", Window: Window{SinceHours: 24 * 7, Bucket: travelapi.BucketDay}},
	{Code: "30d", Label: "Last 30 days", Window: Window{SinceHours: 24 * 30, Bucket: travelapi.BucketDay}},
}

// DefaultPreset is the 7 day range shown on first load.
const DefaultPreset = "7d"

// PresetByCode returns the preset for a range code, falling back to the
// default range for unknown codes.
func PresetByCode(code string) Preset {
	for _, preset := range Presets {
		if preset.Code == code {
			return preset
		}
	}
	return PresetByCode(DefaultPreset)
}

// Validate checks the window fields against the backend contract.
func (w Window) Validate() error {
	if w.SinceHours <= 0 {
		return fmt.Errorf("analytics: sinceHours must be positive, got %d", w.SinceHours)
	}
	if w.Bucket != travelapi.BucketHour && w.Bucket != travelapi.BucketDay {
		return fmt.Errorf("analytics: unknown bucket %q", w.Bucket)
	}
	return nil
}

// ResolveReport fetches the detailed report for the window. When the report
// route itself is missing (older backend deployments), it degrades to the
// summary endpoint and synthesizes a report without series or rankings so
// consumers keep a single data shape. The returned flag is true for that
// degraded path. Every other failure propagates unchanged; there is no
// retry beyond this one fallback.
func ResolveReport(ctx context.Context, src ReportSource, window Window, limit int) (travelapi.Report, bool, error) {
	if err := window.Validate(); err != nil {
		return travelapi.Report{}, false, err
	}

	report, err := src.Report(ctx, travelapi.ReportQuery{
		SinceHours: window.SinceHours,
		Bucket:     window.Bucket,
		Limit:      limit,
	})
	if err == nil {
		return report, false, nil
	}
	if !travelapi.IsNotFound(err) {
		return travelapi.Report{}, false, err
	}

	summary, err := src.Summary(ctx, window.SinceHours)
	if err != nil {
		return travelapi.Report{}, false, err
	}
	return travelapi.Report{
		Since:          summary.Since,
		SinceHours:     window.SinceHours,
		Bucket:         window.Bucket,
		Summary:        summary.Summary,
		UniqueVisitors: 0,
		Series:         []travelapi.SeriesRow{},
		TopPages:       []travelapi.PageCount{},
		TopPackages:    []travelapi.PackageCount{},
	}, true, nil
}

package travelapi

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Event names tracked by the public site. The summary map may carry more
// keys than these; consumers ignore what they do not recognise.
const (
	EventPageView      = "page_view"
	EventPackageView   = "package_view"
	EventBookingSubmit = "booking_submit"
	EventWhatsappOpen  = "whatsapp_open"
)

// Bucket granularities accepted by the report endpoint.
const (
	BucketHour = "hour"
	BucketDay  = "day"
)

// EventSummary maps an event name to its count inside the window.
type EventSummary map[string]float64

// SeriesRow is one time bucket of the report series. Insertion order of the
// series is chronological and must not be reordered.
type SeriesRow struct {
	Bucket         string  `json:"bucket"`
	PageViews      float64 `json:"page_view"`
	PackageViews   float64 `json:"package_view"`
	BookingSubmits float64 `json:"booking_submit"`
	WhatsappOpens  float64 `json:"whatsapp_open"`
}

// Value returns the counter for the given event name, zero for unknown keys.
func (r SeriesRow) Value(event string) float64 {
	switch event {
	case EventPageView:
		return r.PageViews
	case EventPackageView:
		return r.PackageViews
	case EventBookingSubmit:
		return r.BookingSubmits
	case EventWhatsappOpen:
		return r.WhatsappOpens
	default:
		return 0
	}
}

// PageCount ranks a landing path by view count.
type PageCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// PackageCount ranks a package by view count.
type PackageCount struct {
	PackageID string `json:"packageId"`
	Count     int64  `json:"count"`
}

// Report is the detailed analytics report for one window. Ranked lists are
// descending by count; ties keep the backend's order.
type Report struct {
	Since          time.Time      `json:"since"`
	SinceHours     int            `json:"sinceHours"`
	Bucket         string         `json:"bucket"`
	Summary        EventSummary   `json:"summary"`
	UniqueVisitors int            `json:"uniqueVisitors"`
	Series         []SeriesRow    `json:"series"`
	TopPages       []PageCount    `json:"topPages"`
	TopPackages    []PackageCount `json:"topPackages"`
}

// SummaryReport is the reduced payload of the fallback summary endpoint.
type SummaryReport struct {
	Since   time.Time    `json:"since"`
	Summary EventSummary `json:"summary"`
}

// ReportQuery selects the report window.
type ReportQuery struct {
	SinceHours int
	Bucket     string
	Limit      int
}

// Report fetches the detailed analytics report.
func (c *Client) Report(ctx context.Context, q ReportQuery) (Report, error) {
	query := url.Values{}
	query.Set("sinceHours", strconv.Itoa(q.SinceHours))
	query.Set("bucket", q.Bucket)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	var report Report
	if err := c.getJSON(ctx, "/events/admin/report", query, &report); err != nil {
		return Report{}, err
	}
	return report, nil
}

// Summary fetches the event summary for the window, the degraded substitute
// for Report when the report route is not deployed.
func (c *Client) Summary(ctx context.Context, sinceHours int) (SummaryReport, error) {
	query := url.Values{}
	query.Set("sinceHours", strconv.Itoa(sinceHours))
	var summary SummaryReport
	if err := c.getJSON(ctx, "/events/admin/summary", query, &summary); err != nil {
		return SummaryReport{}, err
	}
	return summary, nil
}

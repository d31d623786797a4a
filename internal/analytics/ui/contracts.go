// Package ui shapes analytics domain data into template-ready view models.
package ui

import (
	"html/template"
	"sort"
	"time"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// PresetOption is one entry of the time-window selector.
type PresetOption struct {
	Code     string
	Label    string
	Selected bool
}

// StatCard exposes one headline metric for the dashboard cards.
type StatCard struct {
	Label string
	Value int64
}

// FunnelRow is a single conversion step with its clamped display rate.
type FunnelRow struct {
	Label string
	Rate  float64
}

// PageRow lists a tracked page path with its event count.
type PageRow struct {
	Path  string
	Count int64
}

// PackageRow maps a package id to a human title where the catalog knows it.
type PackageRow struct {
	PackageID string
	Title     string
	Count     int64
}

// BookingStats summarizes the booking pipeline for the dashboard.
type BookingStats struct {
	Total     int
	Pending   int
	Confirmed int
	Cancelled int
}

// PackageStats counts the catalog by publication state.
type PackageStats struct {
	Total     int
	Published int
	Draft     int
}

// ReportView combines everything the analytics screens render from one
// resolved report.
type ReportView struct {
	Presets        []PresetOption
	Window         analytics.Window
	Since          time.Time
	Degraded       bool
	UniqueVisitors int64
	Cards          []StatCard
	Funnel         []FunnelRow
	TrendSVG       template.HTML
	TopPages       []PageRow
	TopPackages    []PackageRow
	HasSeries      bool
}

// DashboardViewModel combines the report with catalog and booking summaries
// for the landing screen.
type DashboardViewModel struct {
	Report         ReportView
	Packages       PackageStats
	Bookings       BookingStats
	RecentBookings []travelapi.Booking
	Advisory       string
	Stale          bool
}

// AnalyticsViewModel is the full-width analytics screen.
type AnalyticsViewModel struct {
	Report   ReportView
	Advisory string
	Stale    bool
}

// TrendRenderer abstracts the SVG trend renderer so handlers stay testable.
type TrendRenderer interface {
	Render(proj analytics.Projection) (template.HTML, error)
}

// PresetOptions marks the active window in the selector.
func PresetOptions(active string) []PresetOption {
	opts := make([]PresetOption, 0, len(analytics.Presets))
	for _, preset := range analytics.Presets {
		opts = append(opts, PresetOption{
			Code:     preset.Code,
			Label:    preset.Label,
			Selected: preset.Code == active,
		})
	}
	return opts
}

// ToStatCards builds the headline cards from the aggregated totals.
func ToStatCards(totals analytics.Totals, uniqueVisitors int64) []StatCard {
	return []StatCard{
		{Label: "Page views", Value: totals.PageViews},
		{Label: "Unique visitors", Value: uniqueVisitors},
		{Label: "Package views", Value: totals.PackageViews},
		{Label: "Bookings", Value: totals.BookingSubmits},
		{Label: "WhatsApp opens", Value: totals.WhatsappOpens},
	}
}

// ToFunnelRows clamps the raw conversion rates into display percentages.
// The raw rates stay untouched upstream; only the rendered value is bounded.
func ToFunnelRows(rates analytics.Rates) []FunnelRow {
	return []FunnelRow{
		{Label: "Visit to package view", Rate: analytics.ClampPercent(rates.ViewToPackage)},
		{Label: "Package view to booking", Rate: analytics.ClampPercent(rates.PackageToBooking)},
		{Label: "Booking to WhatsApp", Rate: analytics.ClampPercent(rates.BookingToWhatsapp)},
		{Label: "Visit to booking", Rate: analytics.ClampPercent(rates.ViewToBooking)},
	}
}

// ToPageRows converts the top pages table.
func ToPageRows(pages []travelapi.PageCount) []PageRow {
	rows := make([]PageRow, 0, len(pages))
	for _, page := range pages {
		rows = append(rows, PageRow{Path: page.Path, Count: page.Count})
	}
	return rows
}

// ToPackageRows resolves package ids against the catalog titles. Unknown ids
// fall back to the raw id so deleted packages still show their traffic.
func ToPackageRows(counts []travelapi.PackageCount, titles map[string]string) []PackageRow {
	rows := make([]PackageRow, 0, len(counts))
	for _, count := range counts {
		title := titles[count.PackageID]
		if title == "" {
			title = count.PackageID
		}
		rows = append(rows, PackageRow{PackageID: count.PackageID, Title: title, Count: count.Count})
	}
	return rows
}

// PackageTitles indexes catalog titles by id for the top-packages table.
func PackageTitles(packages []travelapi.Package) map[string]string {
	titles := make(map[string]string, len(packages))
	for _, pkg := range packages {
		titles[pkg.ID] = pkg.Title
	}
	return titles
}

// ToPackageStats counts the catalog by publication state.
func ToPackageStats(packages []travelapi.Package) PackageStats {
	stats := PackageStats{Total: len(packages)}
	for _, pkg := range packages {
		switch pkg.Status {
		case travelapi.PackageStatusPublished:
			stats.Published++
		case travelapi.PackageStatusDraft:
			stats.Draft++
		}
	}
	return stats
}

// ToBookingStats counts bookings by pipeline status.
func ToBookingStats(bookings []travelapi.Booking) BookingStats {
	stats := BookingStats{Total: len(bookings)}
	for _, booking := range bookings {
		switch booking.Status {
		case travelapi.BookingStatusPending:
			stats.Pending++
		case travelapi.BookingStatusConfirmed:
			stats.Confirmed++
		case travelapi.BookingStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// RecentBookings returns the n newest bookings by creation time. The input
// order is not trusted; a copy is sorted so the caller's slice stays intact.
func RecentBookings(bookings []travelapi.Booking, n int) []travelapi.Booking {
	if n <= 0 || len(bookings) == 0 {
		return nil
	}
	sorted := append([]travelapi.Booking(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) < n {
		n = len(sorted)
	}
	return sorted[:n]
}

// DashboardTrendKeys are the three overview lines of the dashboard chart;
// package views are left to the full analytics screen.
var DashboardTrendKeys = []string{
	travelapi.EventPageView,
	travelapi.EventBookingSubmit,
	travelapi.EventWhatsappOpen,
}

// AnalyticsTrendKeys draw every tracked event on the analytics screen.
var AnalyticsTrendKeys = []string{
	travelapi.EventPageView,
	travelapi.EventPackageView,
	travelapi.EventBookingSubmit,
	travelapi.EventWhatsappOpen,
}

// BuildReportView assembles the shared report view from a resolved report.
// trendKeys selects which event series the chart draws; empty means all.
func BuildReportView(report travelapi.Report, window analytics.Window, degraded bool, titles map[string]string, renderer TrendRenderer, trendKeys []string) (ReportView, error) {
	totals := analytics.SummarizeTotals(report.Summary)
	rates := analytics.ComputeRates(totals)

	view := ReportView{
		Presets:        PresetOptions(presetCodeFor(window)),
		Window:         window,
		Since:          report.Since,
		Degraded:       degraded,
		UniqueVisitors: int64(report.UniqueVisitors),
		Cards:          ToStatCards(totals, int64(report.UniqueVisitors)),
		Funnel:         ToFunnelRows(rates),
		TopPages:       ToPageRows(report.TopPages),
		TopPackages:    ToPackageRows(report.TopPackages, titles),
		HasSeries:      len(report.Series) > 0,
	}

	if renderer != nil {
		keys := trendKeys
		if len(keys) == 0 {
			keys = AnalyticsTrendKeys
		}
		proj := analytics.Project(report.Series, keys, analytics.DefaultCanvas())
		markup, err := renderer.Render(proj)
		if err != nil {
			return ReportView{}, err
		}
		view.TrendSVG = markup
	}
	return view, nil
}

func presetCodeFor(window analytics.Window) string {
	for _, preset := range analytics.Presets {
		if preset.Window == window {
			return preset.Code
		}
	}
	return ""
}

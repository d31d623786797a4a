package ui

import (
	"fmt"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

type stubRenderer struct {
	lastProj analytics.Projection
	err      error
}

func (s *stubRenderer) Render(proj analytics.Projection) (template.HTML, error) {
	s.lastProj = proj
	if s.err != nil {
		return "", s.err
	}
	return template.HTML("<svg></svg>"), nil
}

func TestPresetOptionsMarksActive(t *testing.T) {
	opts := PresetOptions("30d")
	if len(opts) != 3 {
		t.Fatalf("want 3 presets, got %d", len(opts))
	}
	for _, opt := range opts {
		if opt.Selected != (opt.Code == "30d") {
			t.Fatalf("selection wrong for %q", opt.Code)
		}
	}
}

func TestToFunnelRowsClampsDisplayOnly(t *testing.T) {
	rates := analytics.Rates{
		ViewToPackage:     150,
		PackageToBooking:  -3,
		BookingToWhatsapp: 42.5,
		ViewToBooking:     0,
	}
	rows := ToFunnelRows(rates)
	if rows[0].Rate != 100 {
		t.Fatalf("overshoot not clamped: %v", rows[0].Rate)
	}
	if rows[1].Rate != 0 {
		t.Fatalf("negative not clamped: %v", rows[1].Rate)
	}
	if rows[2].Rate != 42.5 {
		t.Fatalf("in-range rate changed: %v", rows[2].Rate)
	}
}

func TestToPackageRowsFallsBackToID(t *testing.T) {
	rows := ToPackageRows(
		[]travelapi.PackageCount{
			{PackageID: "pkg-1", Count: 8},
			{PackageID: "pkg-gone", Count: 2},
		},
		map[string]string{"pkg-1": "Umrah Standard"},
	)
	if rows[0].Title != "Umrah Standard" {
		t.Fatalf("title not resolved: %+v", rows[0])
	}
	if rows[1].Title != "pkg-gone" {
		t.Fatalf("missing title should fall back to id: %+v", rows[1])
	}
}

func TestToPackageStats(t *testing.T) {
	stats := ToPackageStats([]travelapi.Package{
		{Status: travelapi.PackageStatusPublished},
		{Status: travelapi.PackageStatusPublished},
		{Status: travelapi.PackageStatusDraft},
		{Status: travelapi.PackageStatusArchived},
	})
	if stats.Total != 4 || stats.Published != 2 || stats.Draft != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestToBookingStatsAndRecent(t *testing.T) {
	bookings := []travelapi.Booking{
		{ID: "b3", Status: travelapi.BookingStatusPending},
		{ID: "b2", Status: travelapi.BookingStatusConfirmed},
		{ID: "b1", Status: travelapi.BookingStatusCancelled},
	}
	stats := ToBookingStats(bookings)
	if stats.Total != 3 || stats.Pending != 1 || stats.Confirmed != 1 || stats.Cancelled != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	recent := RecentBookings(bookings, 2)
	if len(recent) != 2 || recent[0].ID != "b3" {
		t.Fatalf("recent slice wrong: %+v", recent)
	}
	if got := RecentBookings(bookings, 10); len(got) != 3 {
		t.Fatalf("over-ask should return all: %d", len(got))
	}
	if got := RecentBookings(nil, 5); got != nil {
		t.Fatalf("empty input should return nil, got %+v", got)
	}
}

func TestRecentBookingsSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	bookings := make([]travelapi.Booking, 0, 8)
	for day := 0; day < 8; day++ {
		bookings = append(bookings, travelapi.Booking{
			ID:        fmt.Sprintf("b%d", day+1),
			CreatedAt: base.AddDate(0, 0, day),
		})
	}

	recent := RecentBookings(bookings, 6)
	if len(recent) != 6 {
		t.Fatalf("want 6 bookings, got %d", len(recent))
	}
	if recent[0].ID != "b8" || recent[5].ID != "b3" {
		t.Fatalf("ascending input not re-sorted: first=%s last=%s", recent[0].ID, recent[5].ID)
	}
	if bookings[0].ID != "b1" {
		t.Fatalf("input slice mutated: %s", bookings[0].ID)
	}
}

func TestBuildReportView(t *testing.T) {
	since := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	report := travelapi.Report{
		Since:          since,
		SinceHours:     168,
		Bucket:         travelapi.BucketDay,
		Summary:        travelapi.EventSummary{travelapi.EventPageView: 100, travelapi.EventPackageView: 40},
		UniqueVisitors: 61,
		Series: []travelapi.SeriesRow{
			{Bucket: "2026-08-25", PageViews: 60},
			{Bucket: "2026-08-26", PageViews: 40},
		},
		TopPages:    []travelapi.PageCount{{Path: "/", Count: 80}},
		TopPackages: []travelapi.PackageCount{{PackageID: "pkg-1", Count: 12}},
	}
	window := analytics.Window{SinceHours: 168, Bucket: travelapi.BucketDay}
	renderer := &stubRenderer{}

	view, err := BuildReportView(report, window, false, map[string]string{"pkg-1": "Hajj Premium"}, renderer, AnalyticsTrendKeys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.HasSeries || view.TrendSVG == "" {
		t.Fatal("series present but trend not rendered")
	}
	if len(renderer.lastProj.Lines) != 4 {
		t.Fatalf("projection should carry all four event lines, got %d", len(renderer.lastProj.Lines))
	}
	if view.UniqueVisitors != 61 {
		t.Fatalf("unique visitors lost: %d", view.UniqueVisitors)
	}
	if view.Cards[0].Label != "Page views" || view.Cards[0].Value != 100 {
		t.Fatalf("first card wrong: %+v", view.Cards[0])
	}
	if view.Funnel[0].Rate != 40 {
		t.Fatalf("view-to-package rate wrong: %v", view.Funnel[0].Rate)
	}
	if view.TopPackages[0].Title != "Hajj Premium" {
		t.Fatalf("package title not resolved: %+v", view.TopPackages[0])
	}
	var selected string
	for _, opt := range view.Presets {
		if opt.Selected {
			selected = opt.Code
		}
	}
	if selected != "7d" {
		t.Fatalf("active preset wrong: %q", selected)
	}
}

func TestBuildReportViewDashboardDrawsThreeLines(t *testing.T) {
	report := travelapi.Report{
		SinceHours: 168,
		Bucket:     travelapi.BucketDay,
		Series: []travelapi.SeriesRow{
			{Bucket: "2026-08-25", PageViews: 60, PackageViews: 20, BookingSubmits: 2, WhatsappOpens: 5},
		},
	}
	window := analytics.Window{SinceHours: 168, Bucket: travelapi.BucketDay}
	renderer := &stubRenderer{}

	_, err := BuildReportView(report, window, false, nil, renderer, DashboardTrendKeys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(renderer.lastProj.Lines) != 3 {
		t.Fatalf("dashboard chart should carry three lines, got %d", len(renderer.lastProj.Lines))
	}
	for _, line := range renderer.lastProj.Lines {
		if line.Key == travelapi.EventPackageView {
			t.Fatal("package views belong to the analytics chart only")
		}
	}
}

func TestBuildReportViewDegraded(t *testing.T) {
	report := travelapi.Report{
		SinceHours: 24,
		Bucket:     travelapi.BucketHour,
		Summary:    travelapi.EventSummary{travelapi.EventPageView: 5},
		Series:     []travelapi.SeriesRow{},
	}
	window := analytics.Window{SinceHours: 24, Bucket: travelapi.BucketHour}

	view, err := BuildReportView(report, window, true, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Degraded {
		t.Fatal("degraded flag dropped")
	}
	if view.HasSeries {
		t.Fatal("empty series should not claim a trend")
	}
	if view.TrendSVG != "" {
		t.Fatal("nil renderer should leave the trend empty")
	}
	if !strings.Contains(view.Cards[1].Label, "Unique") || view.Cards[1].Value != 0 {
		t.Fatalf("degraded unique visitors should be zero: %+v", view.Cards[1])
	}
}

package analytichttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

type stubBackend struct {
	report      travelapi.Report
	reportErr   error
	summary     travelapi.SummaryReport
	summaryErr  error
	packages    []travelapi.Package
	packagesErr error
	bookings    []travelapi.Booking
	bookingsErr error

	reportCalls int
	lastQuery   travelapi.ReportQuery
}

func (s *stubBackend) Report(ctx context.Context, q travelapi.ReportQuery) (travelapi.Report, error) {
	s.reportCalls++
	s.lastQuery = q
	if s.reportErr != nil {
		return travelapi.Report{}, s.reportErr
	}
	return s.report, nil
}

func (s *stubBackend) Summary(ctx context.Context, sinceHours int) (travelapi.SummaryReport, error) {
	if s.summaryErr != nil {
		return travelapi.SummaryReport{}, s.summaryErr
	}
	return s.summary, nil
}

func (s *stubBackend) ListPackages(ctx context.Context) ([]travelapi.Package, error) {
	if s.packagesErr != nil {
		return nil, s.packagesErr
	}
	return s.packages, nil
}

func (s *stubBackend) ListBookings(ctx context.Context) ([]travelapi.Booking, error) {
	if s.bookingsErr != nil {
		return nil, s.bookingsErr
	}
	return s.bookings, nil
}

func newTestHandler(t *testing.T, backend *stubBackend) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	handler := NewHandler(nil, analytics.NewService(nil), func(token string) Backend { return backend }, templates, shared.NewCSRFManager("test-secret"))
	handler.WithNow(func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) })
	return handler
}

func signedInRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess := &shared.Session{ID: "sess-1"}
	sess.SignIn("backend-token", shared.AdminProfile{Name: "Admin", Email: "admin@example.com", Role: "admin"})
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func sampleReport() travelapi.Report {
	return travelapi.Report{
		Since:          time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		SinceHours:     168,
		Bucket:         travelapi.BucketDay,
		Summary:        travelapi.EventSummary{travelapi.EventPageView: 400, travelapi.EventPackageView: 120, travelapi.EventBookingSubmit: 24, travelapi.EventWhatsappOpen: 12},
		UniqueVisitors: 180,
		Series: []travelapi.SeriesRow{
			{Bucket: "2026-08-25", PageViews: 200, PackageViews: 60},
			{Bucket: "2026-08-26", PageViews: 200, PackageViews: 60},
		},
		TopPages:    []travelapi.PageCount{{Path: "/packages", Count: 150}},
		TopPackages: []travelapi.PackageCount{{PackageID: "pkg-1", Count: 60}},
	}
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	handler := newTestHandler(t, &stubBackend{})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestDashboardRendersReport(t *testing.T) {
	backend := &stubBackend{
		report: sampleReport(),
		packages: []travelapi.Package{
			{ID: "pkg-1", Title: "Umrah Deluxe", Status: travelapi.PackageStatusPublished, Price: travelapi.Money{Currency: "BDT", Amount: 150000}},
			{ID: "pkg-2", Title: "Hajj Premium", Status: travelapi.PackageStatusDraft, Price: travelapi.Money{Currency: "BDT", Amount: 650000}},
		},
		bookings: []travelapi.Booking{
			{ID: "b1", Name: "Rahim Uddin", Phone: "+880171", Travelers: 2, Status: travelapi.BookingStatusPending, CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)},
		},
	}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, signedInRequest("/admin"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Umrah Deluxe") {
		t.Fatal("package title missing from top packages table")
	}
	if !strings.Contains(body, "Rahim Uddin") {
		t.Fatal("recent booking missing")
	}
	if !strings.Contains(body, "<svg") {
		t.Fatal("trend chart missing")
	}
	if backend.lastQuery.Limit != dashboardRankLimit {
		t.Fatalf("dashboard should request limit %d, got %d", dashboardRankLimit, backend.lastQuery.Limit)
	}
	// Defaults to the 7 day window.
	if backend.lastQuery.SinceHours != 168 || backend.lastQuery.Bucket != travelapi.BucketDay {
		t.Fatalf("default window wrong: %+v", backend.lastQuery)
	}
}

func TestDashboardRangeQuerySelectsPreset(t *testing.T) {
	backend := &stubBackend{report: sampleReport()}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, signedInRequest("/admin?range=24h"))

	if backend.lastQuery.SinceHours != 24 || backend.lastQuery.Bucket != travelapi.BucketHour {
		t.Fatalf("24h preset not applied: %+v", backend.lastQuery)
	}
}

func TestDashboardUnknownRangeFallsBack(t *testing.T) {
	backend := &stubBackend{report: sampleReport()}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, signedInRequest("/admin?range=全部"))

	if backend.lastQuery.SinceHours != 168 {
		t.Fatalf("unknown range should fall back to 7d: %+v", backend.lastQuery)
	}
}

func TestDashboardDegradedShowsAdvisory(t *testing.T) {
	backend := &stubBackend{
		reportErr: &travelapi.Error{StatusCode: http.StatusNotFound, Message: "Route not found"},
		summary: travelapi.SummaryReport{
			Since:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			Summary: travelapi.EventSummary{travelapi.EventPageView: 42},
		},
	}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, signedInRequest("/admin"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "summary totals only") {
		t.Fatal("degraded advisory missing")
	}
	if !strings.Contains(body, "No event activity") {
		t.Fatal("degraded report should render without a trend")
	}
}

func TestDashboardStaleRenderOnFailure(t *testing.T) {
	backend := &stubBackend{
		report:   sampleReport(),
		packages: []travelapi.Package{{ID: "pkg-1", Title: "Umrah Deluxe", Status: travelapi.PackageStatusPublished}},
	}
	handler := newTestHandler(t, backend)

	first := httptest.NewRecorder()
	handler.handleDashboard(first, signedInRequest("/admin"))
	if first.Code != http.StatusOK {
		t.Fatalf("seed request failed: %d", first.Code)
	}

	backend.reportErr = &travelapi.Error{StatusCode: http.StatusBadGateway, Message: "backend down"}
	second := httptest.NewRecorder()
	handler.handleDashboard(second, signedInRequest("/admin"))

	if second.Code != http.StatusOK {
		t.Fatalf("stale render should still return 200, got %d", second.Code)
	}
	body := second.Body.String()
	if !strings.Contains(body, staleAdvisory) {
		t.Fatal("stale advisory missing")
	}
	// Previous data survives the failed refresh.
	if !strings.Contains(body, "<svg") {
		t.Fatal("stale snapshot should keep the trend chart")
	}
}

func TestDashboardFailureWithoutSnapshot(t *testing.T) {
	backend := &stubBackend{reportErr: &travelapi.Error{StatusCode: http.StatusBadGateway, Message: "backend down"}}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, signedInRequest("/admin"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), emptyAdvisory) {
		t.Fatal("empty advisory missing")
	}
}

func TestDashboardUnauthorizedExpiresSession(t *testing.T) {
	backend := &stubBackend{reportErr: &travelapi.Error{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}}
	handler := newTestHandler(t, backend)
	req := signedInRequest("/admin")
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	sess := shared.SessionFromContext(req.Context())
	if sess.SignedIn() {
		t.Fatal("session token should be dropped after a 401")
	}
	handler.mu.Lock()
	_, tracked := handler.states[sess.ID]
	handler.mu.Unlock()
	if tracked {
		t.Fatal("view state for an expired session should be evicted")
	}
}

func TestStateMapCapsTrackedSessions(t *testing.T) {
	handler := newTestHandler(t, &stubBackend{})
	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	handler.WithNow(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	for i := 0; i < maxTrackedSessions+5; i++ {
		handler.stateFor(fmt.Sprintf("sess-%04d", i))
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.states) != maxTrackedSessions {
		t.Fatalf("expected %d tracked sessions, got %d", maxTrackedSessions, len(handler.states))
	}
	if _, ok := handler.states["sess-0000"]; ok {
		t.Fatal("stalest session should have been evicted first")
	}
	if _, ok := handler.states[fmt.Sprintf("sess-%04d", maxTrackedSessions+4)]; !ok {
		t.Fatal("newest session should still be tracked")
	}
}

func TestAnalyticsUsesLargerRankLimit(t *testing.T) {
	backend := &stubBackend{report: sampleReport()}
	handler := newTestHandler(t, backend)
	rr := httptest.NewRecorder()
	handler.handleAnalytics(rr, signedInRequest("/admin/analytics?range=30d"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if backend.lastQuery.Limit != analyticsRankLimit {
		t.Fatalf("analytics should request limit %d, got %d", analyticsRankLimit, backend.lastQuery.Limit)
	}
	if backend.lastQuery.SinceHours != 24*30 {
		t.Fatalf("30d preset not applied: %+v", backend.lastQuery)
	}
}

package analytichttp

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
	"github.com/matribhumi/matribhumi-admin/internal/analytics/svg"
	"github.com/matribhumi/matribhumi-admin/internal/analytics/ui"
	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

const (
	requestTimeout = 5 * time.Second

	dashboardRankLimit = 8
	analyticsRankLimit = 10
	recentBookingCount = 6

	staleAdvisory = "Couldn't refresh analytics; showing the last loaded data."
	emptyAdvisory = "Couldn't load analytics. Try again in a moment."
)

// Backend is the slice of the travel backend the analytics screens consume.
type Backend interface {
	analytics.ReportSource
	ListPackages(ctx context.Context) ([]travelapi.Package, error)
	ListBookings(ctx context.Context) ([]travelapi.Booking, error)
}

// ClientFactory returns a backend client scoped to a session token.
type ClientFactory func(token string) Backend

// Resolver resolves reports, optionally through the shared cache.
type Resolver interface {
	Resolve(ctx context.Context, src analytics.ReportSource, window analytics.Window, limit int) (travelapi.Report, bool, error)
}

// Handler coordinates HTTP requests for the dashboard and analytics screens.
type Handler struct {
	logger    *slog.Logger
	resolver  Resolver
	clients   ClientFactory
	templates *view.Engine
	csrf      *shared.CSRFManager

	mu     sync.Mutex
	states map[string]*sessionState

	now func() time.Time
}

// maxTrackedSessions bounds the per-session view state map; the least
// recently seen session is dropped once the cap is reached.
const maxTrackedSessions = 1024

type sessionState struct {
	state    *analytics.ViewState
	lastSeen time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, resolver Resolver, clients ClientFactory, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		resolver:  resolver,
		clients:   clients,
		templates: templates,
		csrf:      csrf,
		states:    make(map[string]*sessionState),
		now:       time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// stateFor returns the per-session view state so a superseded range switch
// can never overwrite the latest one.
func (h *Handler) stateFor(sessionID string) *analytics.ViewState {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.states[sessionID]
	if !ok {
		if len(h.states) >= maxTrackedSessions {
			h.evictStalestLocked()
		}
		entry = &sessionState{state: &analytics.ViewState{}}
		h.states[sessionID] = entry
	}
	entry.lastSeen = h.now()
	return entry.state
}

// evictStalestLocked drops the least recently seen session entry.
// Callers must hold h.mu.
func (h *Handler) evictStalestLocked() {
	var stalest string
	var oldest time.Time
	for id, entry := range h.states {
		if stalest == "" || entry.lastSeen.Before(oldest) {
			stalest = id
			oldest = entry.lastSeen
		}
	}
	if stalest != "" {
		delete(h.states, stalest)
	}
}

// dropState forgets the view state for a session that is no longer valid.
func (h *Handler) dropState(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.states, sessionID)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.SignedIn() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	preset := analytics.PresetByCode(strings.TrimSpace(r.URL.Query().Get("range")))
	client := h.clients(sess.Token())
	state := h.stateFor(sess.ID)
	ticket := state.Activate(preset.Window)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		report   travelapi.Report
		degraded bool
		packages []travelapi.Package
		bookings []travelapi.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, degraded, err = h.resolver.Resolve(gctx, client, preset.Window, dashboardRankLimit)
		return err
	})
	g.Go(func() error {
		var err error
		packages, err = client.ListPackages(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = client.ListBookings(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if travelapi.IsUnauthorized(err) {
			h.expireSession(w, r, sess)
			return
		}
		h.logError("load dashboard", err)
		h.renderDashboardStale(w, r, sess, state)
		return
	}

	ticket.Commit(analytics.Snapshot{
		Window:    preset.Window,
		Report:    report,
		Degraded:  degraded,
		FetchedAt: h.now(),
	})

	reportView, err := ui.BuildReportView(report, preset.Window, degraded, ui.PackageTitles(packages), h.renderer(), ui.DashboardTrendKeys)
	if err != nil {
		h.handleServerError(w, "render trend", err)
		return
	}
	vm := ui.DashboardViewModel{
		Report:         reportView,
		Packages:       ui.ToPackageStats(packages),
		Bookings:       ui.ToBookingStats(bookings),
		RecentBookings: ui.RecentBookings(bookings, recentBookingCount),
	}
	h.render(w, r, sess, "pages/dashboard.html", "Dashboard", vm)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.SignedIn() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	preset := analytics.PresetByCode(strings.TrimSpace(r.URL.Query().Get("range")))
	client := h.clients(sess.Token())
	state := h.stateFor(sess.ID)
	ticket := state.Activate(preset.Window)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		report   travelapi.Report
		degraded bool
		packages []travelapi.Package
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, degraded, err = h.resolver.Resolve(gctx, client, preset.Window, analyticsRankLimit)
		return err
	})
	g.Go(func() error {
		var err error
		packages, err = client.ListPackages(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if travelapi.IsUnauthorized(err) {
			h.expireSession(w, r, sess)
			return
		}
		h.logError("load analytics", err)
		h.renderAnalyticsStale(w, r, sess, state)
		return
	}

	ticket.Commit(analytics.Snapshot{
		Window:    preset.Window,
		Report:    report,
		Degraded:  degraded,
		FetchedAt: h.now(),
	})

	reportView, err := ui.BuildReportView(report, preset.Window, degraded, ui.PackageTitles(packages), h.renderer(), ui.AnalyticsTrendKeys)
	if err != nil {
		h.handleServerError(w, "render trend", err)
		return
	}
	h.render(w, r, sess, "pages/analytics.html", "Analytics", ui.AnalyticsViewModel{Report: reportView})
}

// renderDashboardStale re-renders the previous snapshot instead of blanking
// the screen after a failed refresh.
func (h *Handler) renderDashboardStale(w http.ResponseWriter, r *http.Request, sess *shared.Session, state *analytics.ViewState) {
	reportView, advisory := h.staleReportView(state, ui.DashboardTrendKeys)
	vm := ui.DashboardViewModel{
		Report:   reportView,
		Advisory: advisory,
		Stale:    true,
	}
	h.render(w, r, sess, "pages/dashboard.html", "Dashboard", vm)
}

func (h *Handler) renderAnalyticsStale(w http.ResponseWriter, r *http.Request, sess *shared.Session, state *analytics.ViewState) {
	reportView, advisory := h.staleReportView(state, ui.AnalyticsTrendKeys)
	h.render(w, r, sess, "pages/analytics.html", "Analytics", ui.AnalyticsViewModel{
		Report:   reportView,
		Advisory: advisory,
		Stale:    true,
	})
}

func (h *Handler) staleReportView(state *analytics.ViewState, trendKeys []string) (ui.ReportView, string) {
	snap, ok := state.Snapshot()
	if !ok {
		reportView, err := ui.BuildReportView(travelapi.Report{}, analytics.PresetByCode(analytics.DefaultPreset).Window, false, nil, nil, trendKeys)
		if err != nil {
			return ui.ReportView{}, emptyAdvisory
		}
		return reportView, emptyAdvisory
	}
	reportView, err := ui.BuildReportView(snap.Report, snap.Window, snap.Degraded, nil, h.renderer(), trendKeys)
	if err != nil {
		h.logError("render stale trend", err)
		reportView, _ = ui.BuildReportView(snap.Report, snap.Window, snap.Degraded, nil, nil, trendKeys)
	}
	return reportView, staleAdvisory
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess *shared.Session, page, title string, data any) {
	csrfToken := ""
	var flash *shared.FlashMessage
	var admin *shared.AdminProfile
	if sess != nil {
		flash = sess.PopFlash()
		admin = sess.Admin()
		if h.csrf != nil {
			if token, err := h.csrf.EnsureToken(r.Context(), sess); err == nil {
				csrfToken = token
			}
		}
	}
	viewData := view.TemplateData{
		Title:       title,
		Flash:       flash,
		Admin:       admin,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) expireSession(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	h.dropState(sess.ID)
	sess.SignOut()
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Your session expired. Please sign in again."})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderer() ui.TrendRenderer {
	return trendRenderer{}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// trendRenderer adapts the SVG package to the view model contract.
type trendRenderer struct{}

func (trendRenderer) Render(proj analytics.Projection) (template.HTML, error) {
	return svg.Trend(analytics.DefaultCanvas(), proj, svg.TrendOpts{
		Title:       "Event activity",
		Description: "Page views, package views, bookings and WhatsApp opens per bucket",
		Series:      svg.DefaultSeriesStyles,
		ShowDots:    false,
	})
}

// HandleDashboardForTest exposes the dashboard handler for tests.
func (h *Handler) HandleDashboardForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDashboard(w, r)
}

// HandleAnalyticsForTest exposes the analytics handler for tests.
func (h *Handler) HandleAnalyticsForTest(w http.ResponseWriter, r *http.Request) {
	h.handleAnalytics(w, r)
}

package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/matribhumi/matribhumi-admin/internal/analytics/http"
	"github.com/matribhumi/matribhumi-admin/internal/auth"
	"github.com/matribhumi/matribhumi-admin/internal/bookings"
	"github.com/matribhumi/matribhumi-admin/internal/observability"
	"github.com/matribhumi/matribhumi-admin/internal/packages"
	"github.com/matribhumi/matribhumi-admin/internal/platform/httpx"
	"github.com/matribhumi/matribhumi-admin/internal/settings"
	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/jobs"
	"github.com/matribhumi/matribhumi-admin/web"
)

// RouterParams collects everything NewRouter needs to assemble the console.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	AnalyticsHandler *analytichttp.Handler
	PackagesHandler  *packages.Handler
	BookingsHandler  *bookings.Handler
	SettingsHandler  *settings.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter builds the chi router for the admin console.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         p.Logger,
		Config:         p.Config,
		SessionManager: p.SessionManager,
		CSRFManager:    p.CSRFManager,
		Metrics:        p.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil && sess.SignedIn() {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	p.AuthHandler.MountRoutes(r)

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireSession)
		p.AnalyticsHandler.MountRoutes(gr)
		p.PackagesHandler.MountRoutes(gr)
		p.BookingsHandler.MountRoutes(gr)
		p.SettingsHandler.MountRoutes(gr)
	})

	if p.JobHandler != nil {
		r.Route("/jobs", p.JobHandler.MountRoutes)
	}

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		p.Logger.Error("static assets unavailable", slog.Any("error", err))
	} else {
		r.Handle("/static/*", http.StripPrefix("/static/", staticCacheHandler(http.FileServer(http.FS(staticFS)))))
	}

	return r
}

func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

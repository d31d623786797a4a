// Package bookings manages the booking pipeline screens.
package bookings

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

const perPage = 25

// Desk is the slice of the backend client the booking screens need.
type Desk interface {
	ListBookings(ctx context.Context) ([]travelapi.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch travelapi.BookingPatch) (travelapi.Booking, error)
	ListPackages(ctx context.Context) ([]travelapi.Package, error)
}

// ClientFactory returns a booking client scoped to a session token.
type ClientFactory func(token string) Desk

// Handler serves the booking screens.
type Handler struct {
	logger    *slog.Logger
	clients   ClientFactory
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the bookings handler.
func NewHandler(logger *slog.Logger, clients ClientFactory, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, clients: clients, templates: templates, csrf: csrf}
}

// MountRoutes registers booking routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/bookings", h.handleList)
	r.Post("/admin/bookings/{id}", h.handleUpdate)
}

// Row pairs a booking with its resolved package title for the table.
type Row struct {
	travelapi.Booking
	PackageTitle string
}

type listPageData struct {
	Bookings     []Row
	StatusFilter string
	Pagination   shared.Pagination
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	client := h.clients(sess.Token())

	var (
		bookings []travelapi.Booking
		packages []travelapi.Package
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		bookings, err = client.ListBookings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		packages, err = client.ListPackages(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleBackendError(w, r, sess, "list bookings", err)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	filtered := filterByStatus(bookings, status)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, perPage, len(filtered))
	start, end := pagination.Bounds()

	titles := make(map[string]string, len(packages))
	for _, pkg := range packages {
		titles[pkg.ID] = pkg.Title
	}
	rows := make([]Row, 0, end-start)
	for _, booking := range filtered[start:end] {
		title := titles[booking.PackageID]
		if title == "" {
			title = booking.PackageID
		}
		rows = append(rows, Row{Booking: booking, PackageTitle: title})
	}

	h.render(w, r, sess, listPageData{
		Bookings:     rows,
		StatusFilter: status,
		Pagination:   pagination,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	patch := travelapi.BookingPatch{}
	if status := r.PostFormValue("status"); status != "" {
		if status != travelapi.BookingStatusPending && status != travelapi.BookingStatusConfirmed && status != travelapi.BookingStatusCancelled {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		patch.Status = &status
	}
	if _, ok := r.PostForm["notes"]; ok {
		notes := r.PostFormValue("notes")
		patch.Notes = &notes
	}
	if patch.Status == nil && patch.Notes == nil {
		http.Redirect(w, r, "/admin/bookings", http.StatusSeeOther)
		return
	}

	client := h.clients(sess.Token())
	updated, err := client.UpdateBooking(r.Context(), id, patch)
	if err != nil {
		h.handleBackendError(w, r, sess, "update booking", err)
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Booking for " + updated.Name + " updated."})
	http.Redirect(w, r, "/admin/bookings", http.StatusSeeOther)
}

func filterByStatus(bookings []travelapi.Booking, status string) []travelapi.Booking {
	if status == "" {
		return bookings
	}
	filtered := make([]travelapi.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Status == status {
			filtered = append(filtered, booking)
		}
	}
	return filtered
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess *shared.Session, data listPageData) {
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
		Title:       "Bookings",
		Flash:       flash,
		Admin:       admin,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/bookings.html", viewData); err != nil {
		h.logError("render template", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleBackendError(w http.ResponseWriter, r *http.Request, sess *shared.Session, context string, err error) {
	if travelapi.IsUnauthorized(err) {
		sess.SignOut()
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Your session expired. Please sign in again."})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.logError(context, err)
	if travelapi.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "The backend request failed. Try again."})
	http.Redirect(w, r, "/admin/bookings", http.StatusSeeOther)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// HandleListForTest exposes the list handler for tests.
func (h *Handler) HandleListForTest(w http.ResponseWriter, r *http.Request) { h.handleList(w, r) }

package bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

type stubDesk struct {
	bookings  []travelapi.Booking
	packages  []travelapi.Package
	listErr   error
	patched   *travelapi.BookingPatch
	patchedID string
	updateErr error
}

func (s *stubDesk) ListBookings(ctx context.Context) ([]travelapi.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bookings, nil
}

func (s *stubDesk) ListPackages(ctx context.Context) ([]travelapi.Package, error) {
	return s.packages, nil
}

func (s *stubDesk) UpdateBooking(ctx context.Context, id string, patch travelapi.BookingPatch) (travelapi.Booking, error) {
	if s.updateErr != nil {
		return travelapi.Booking{}, s.updateErr
	}
	s.patchedID = id
	s.patched = &patch
	return travelapi.Booking{ID: id, Name: "Karim"}, nil
}

func newTestHandler(t *testing.T, desk *stubDesk) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	return NewHandler(nil, func(token string) Desk { return desk }, templates, shared.NewCSRFManager("secret"))
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func signedInRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	sess := &shared.Session{ID: "sess-1"}
	sess.SignIn("tok", shared.AdminProfile{Name: "Admin"})
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func sampleBookings() []travelapi.Booking {
	return []travelapi.Booking{
		{ID: "b1", PackageID: "p1", Name: "Karim", Phone: "+880171", Travelers: 2, Status: travelapi.BookingStatusPending, PreferredMonth: "2026-11", CreatedAt: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", PackageID: "p2", Name: "Fatema", Phone: "+880172", Travelers: 1, Status: travelapi.BookingStatusConfirmed, PreferredMonth: "2026-12", CreatedAt: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)},
	}
}

func TestListResolvesPackageTitles(t *testing.T) {
	desk := &stubDesk{
		bookings: sampleBookings(),
		packages: []travelapi.Package{{ID: "p1", Title: "Umrah Economy"}},
	}
	handler := newTestHandler(t, desk)

	rr := httptest.NewRecorder()
	handler.handleList(rr, signedInRequest(http.MethodGet, "/admin/bookings", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Umrah Economy") {
		t.Fatal("known package title missing")
	}
	// Unknown package ids fall back to the raw id.
	if !strings.Contains(body, "p2") {
		t.Fatal("unknown package id missing")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	desk := &stubDesk{bookings: sampleBookings()}
	handler := newTestHandler(t, desk)

	rr := httptest.NewRecorder()
	handler.handleList(rr, signedInRequest(http.MethodGet, "/admin/bookings?status=confirmed", ""))

	body := rr.Body.String()
	if !strings.Contains(body, "Fatema") {
		t.Fatal("confirmed booking missing")
	}
	if strings.Contains(body, "Karim") {
		t.Fatal("pending booking should be filtered out")
	}
}

func TestUpdateStatus(t *testing.T) {
	desk := &stubDesk{}
	handler := newTestHandler(t, desk)

	form := url.Values{}
	form.Set("status", "confirmed")
	req := signedInRequest(http.MethodPost, "/admin/bookings/b1", form.Encode())
	rr := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if desk.patchedID != "b1" || desk.patched == nil || desk.patched.Status == nil || *desk.patched.Status != "confirmed" {
		t.Fatalf("patch wrong: id=%q patch=%+v", desk.patchedID, desk.patched)
	}
	if desk.patched.Notes != nil {
		t.Fatal("notes must stay untouched when not submitted")
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	desk := &stubDesk{}
	handler := newTestHandler(t, desk)

	form := url.Values{}
	form.Set("status", "archived")
	req := signedInRequest(http.MethodPost, "/admin/bookings/b1", form.Encode())
	rr := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if desk.patched != nil {
		t.Fatal("invalid status must not reach the backend")
	}
}

func TestListUnauthorizedSignsOut(t *testing.T) {
	desk := &stubDesk{listErr: &travelapi.Error{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}}
	handler := newTestHandler(t, desk)

	req := signedInRequest(http.MethodGet, "/admin/bookings", "")
	rr := httptest.NewRecorder()
	handler.handleList(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if shared.SessionFromContext(req.Context()).SignedIn() {
		t.Fatal("session token should be dropped")
	}
}

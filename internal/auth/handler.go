// Package auth signs administrators in against the travel backend and keeps
// the issued bearer token server side in the session.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

// Authenticator is the slice of the backend client the login flow needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (travelapi.LoginResult, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	backend        Authenticator
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, backend Authenticator, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		backend:        backend,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Email string
	Error string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.SignedIn() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, sess, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderLogin(w, r, sess, http.StatusBadRequest, loginPageData{
			Email: form.Email,
			Error: "Enter your email address and password.",
		})
		return
	}

	result, err := h.backend.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		message := "Invalid email or password."
		if !travelapi.IsUnauthorized(err) {
			h.logError("backend login", err)
			message = "Sign-in is unavailable right now. Try again shortly."
		}
		h.renderLogin(w, r, sess, http.StatusBadRequest, loginPageData{Email: form.Email, Error: message})
		return
	}

	if sess == nil {
		h.logError("login", shared.ErrSessionExpired)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SignIn(result.Token, shared.AdminProfile{
		Name:  result.User.Name,
		Email: result.User.Email,
		Role:  result.User.Role,
	})
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + result.User.Name})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.SignOut()
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, sess *shared.Session, status int, data loginPageData) {
	csrfToken := ""
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
		if token, err := h.csrfManager.EnsureToken(r.Context(), sess); err == nil {
			csrfToken = token
		}
	}
	viewData := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logError("render login", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}

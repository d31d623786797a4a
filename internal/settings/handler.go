// Package settings edits the public site configuration through the backend.
package settings

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

// Store is the slice of the backend client the settings screen needs.
type Store interface {
	Settings(ctx context.Context) (*travelapi.Settings, error)
	UpdateSettings(ctx context.Context, patch travelapi.Settings) (travelapi.Settings, error)
}

// ClientFactory returns a settings client scoped to a session token.
type ClientFactory func(token string) Store

// Handler serves the settings screen.
type Handler struct {
	logger    *slog.Logger
	clients   ClientFactory
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs the settings handler.
func NewHandler(logger *slog.Logger, clients ClientFactory, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		clients:   clients,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/settings", h.showSettings)
	r.Post("/admin/settings", h.handleUpdate)
}

type settingsForm struct {
	Whatsapp       string `validate:"omitempty,e164"`
	Phone          string
	Email          string `validate:"omitempty,email"`
	Address        string
	HeroHeadlineEN string
	HeroSubtextEN  string
	HeroHeadlineBN string
	HeroSubtextBN  string
}

type pageData struct {
	Form   settingsForm
	Errors map[string]string
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	client := h.clients(sess.Token())

	current, err := client.Settings(r.Context())
	if err != nil {
		h.handleBackendError(w, r, sess, "load settings", err)
		return
	}

	h.render(w, r, sess, http.StatusOK, pageData{Form: formFromSettings(current)})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := settingsForm{
		Whatsapp:       strings.TrimSpace(r.PostFormValue("whatsapp")),
		Phone:          strings.TrimSpace(r.PostFormValue("phone")),
		Email:          strings.TrimSpace(r.PostFormValue("email")),
		Address:        strings.TrimSpace(r.PostFormValue("address")),
		HeroHeadlineEN: strings.TrimSpace(r.PostFormValue("hero_headline_en")),
		HeroSubtextEN:  strings.TrimSpace(r.PostFormValue("hero_subtext_en")),
		HeroHeadlineBN: strings.TrimSpace(r.PostFormValue("hero_headline_bn")),
		HeroSubtextBN:  strings.TrimSpace(r.PostFormValue("hero_subtext_bn")),
	}
	if err := h.validator.Struct(form); err != nil {
		errs := make(map[string]string)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Whatsapp":
				errs["Whatsapp"] = "WhatsApp number must be in international format, like +8801712345678."
			case "Email":
				errs["Email"] = "Enter a valid email address."
			default:
				errs[fieldErr.Field()] = "Invalid value."
			}
		}
		h.render(w, r, sess, http.StatusBadRequest, pageData{Form: form, Errors: errs})
		return
	}

	client := h.clients(sess.Token())
	if _, err := client.UpdateSettings(r.Context(), settingsFromForm(form)); err != nil {
		h.handleBackendError(w, r, sess, "update settings", err)
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Settings saved."})
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

func formFromSettings(s *travelapi.Settings) settingsForm {
	if s == nil {
		return settingsForm{}
	}
	return settingsForm{
		Whatsapp:       s.WhatsappNumber,
		Phone:          s.Contact.Phone,
		Email:          s.Contact.Email,
		Address:        s.Contact.Address,
		HeroHeadlineEN: s.EN.HeroHeadline,
		HeroSubtextEN:  s.EN.HeroSubtext,
		HeroHeadlineBN: s.BN.HeroHeadline,
		HeroSubtextBN:  s.BN.HeroSubtext,
	}
}

func settingsFromForm(form settingsForm) travelapi.Settings {
	return travelapi.Settings{
		WhatsappNumber: form.Whatsapp,
		Contact: travelapi.ContactInfo{
			Whatsapp: form.Whatsapp,
			Phone:    form.Phone,
			Email:    form.Email,
			Address:  form.Address,
		},
		EN: travelapi.LocaleContent{HeroHeadline: form.HeroHeadlineEN, HeroSubtext: form.HeroSubtextEN},
		BN: travelapi.LocaleContent{HeroHeadline: form.HeroHeadlineBN, HeroSubtext: form.HeroSubtextBN},
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess *shared.Session, status int, data pageData) {
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
		Title:       "Site settings",
		Flash:       flash,
		Admin:       admin,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/settings.html", viewData); err != nil {
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
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "The backend request failed. Try again."})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// ShowSettingsForTest exposes the GET handler for tests.
func (h *Handler) ShowSettingsForTest(w http.ResponseWriter, r *http.Request) { h.showSettings(w, r) }

// HandleUpdateForTest exposes the POST handler for tests.
func (h *Handler) HandleUpdateForTest(w http.ResponseWriter, r *http.Request) { h.handleUpdate(w, r) }

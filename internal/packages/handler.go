// Package packages manages the Hajj and Umrah catalog through the travel
// backend.
package packages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matribhumi/matribhumi-admin/internal/shared"
	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
	"github.com/matribhumi/matribhumi-admin/internal/view"
)

const perPage = 20

// Catalog is the slice of the backend client the catalog screens need.
type Catalog interface {
	ListPackages(ctx context.Context) ([]travelapi.Package, error)
	CreatePackage(ctx context.Context, input travelapi.PackageInput) (travelapi.Package, error)
	UpdatePackage(ctx context.Context, id string, patch travelapi.PackagePatch) (travelapi.Package, error)
	ArchivePackage(ctx context.Context, id string) (travelapi.Package, error)
}

// ClientFactory returns a catalog client scoped to a session token.
type ClientFactory func(token string) Catalog

// Handler serves the catalog screens.
type Handler struct {
	logger    *slog.Logger
	clients   ClientFactory
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, clients ClientFactory, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		clients:   clients,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/packages", h.handleList)
	r.Get("/admin/packages/new", h.showCreate)
	r.Post("/admin/packages", h.handleCreate)
	r.Get("/admin/packages/{id}/edit", h.showEdit)
	r.Post("/admin/packages/{id}", h.handleUpdate)
	r.Post("/admin/packages/{id}/archive", h.handleArchive)
}

type packageForm struct {
	Title          string `validate:"required,min=3"`
	Type           string `validate:"required,oneof=hajj umrah"`
	Status         string `validate:"required,oneof=draft published"`
	PriceAmount    string `validate:"required"`
	PriceCurrency  string `validate:"required,oneof=BDT USD SAR"`
	DurationDays   string `validate:"required"`
	SeatsAvailable string `validate:"required"`
	Thumbnail      string `validate:"omitempty,url"`
}

type listPageData struct {
	Packages   []travelapi.Package
	Pagination shared.Pagination
}

type formPageData struct {
	IsNew  bool
	Action string
	Form   packageForm
	Errors map[string]string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	client := h.clients(sess.Token())

	all, err := client.ListPackages(r.Context())
	if err != nil {
		h.handleBackendError(w, r, sess, "list packages", err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, perPage, len(all))
	start, end := pagination.Bounds()

	h.render(w, r, sess, "pages/packages.html", "Packages", listPageData{
		Packages:   all[start:end],
		Pagination: pagination,
	})
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.render(w, r, sess, "pages/package_form.html", "New package", formPageData{
		IsNew:  true,
		Action: "/admin/packages",
		Form:   packageForm{Type: travelapi.PackageTypeUmrah, Status: travelapi.PackageStatusDraft, PriceCurrency: "BDT"},
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	form, errs := h.parseForm(r)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, sess, "pages/package_form.html", "New package", formPageData{
			IsNew:  true,
			Action: "/admin/packages",
			Form:   form,
			Errors: errs,
		})
		return
	}

	input := formToInput(form)
	client := h.clients(sess.Token())
	created, err := client.CreatePackage(r.Context(), input)
	if err != nil {
		h.handleBackendError(w, r, sess, "create package", err)
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Package \"" + created.Title + "\" created."})
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	client := h.clients(sess.Token())

	pkg, err := h.findPackage(r.Context(), client, id)
	if err != nil {
		h.handleBackendError(w, r, sess, "load package", err)
		return
	}

	h.render(w, r, sess, "pages/package_form.html", "Edit package", formPageData{
		Action: "/admin/packages/" + pkg.ID,
		Form: packageForm{
			Title:          pkg.Title,
			Type:           pkg.Type,
			Status:         pkg.Status,
			PriceAmount:    strconv.FormatFloat(pkg.Price.Amount, 'f', -1, 64),
			PriceCurrency:  pkg.Price.Currency,
			DurationDays:   strconv.Itoa(pkg.DurationDays),
			SeatsAvailable: strconv.Itoa(pkg.SeatsAvailable),
			Thumbnail:      pkg.Thumbnail,
		},
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	form, errs := h.parseForm(r)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, sess, "pages/package_form.html", "Edit package", formPageData{
			Action: "/admin/packages/" + id,
			Form:   form,
			Errors: errs,
		})
		return
	}

	patch := formToPatch(form)
	client := h.clients(sess.Token())
	updated, err := client.UpdatePackage(r.Context(), id, patch)
	if err != nil {
		h.handleBackendError(w, r, sess, "update package", err)
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Package \"" + updated.Title + "\" updated."})
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	client := h.clients(sess.Token())

	archived, err := client.ArchivePackage(r.Context(), id)
	if err != nil {
		h.handleBackendError(w, r, sess, "archive package", err)
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Package \"" + archived.Title + "\" archived."})
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
}

// findPackage resolves a single package from the list endpoint; the backend
// exposes no per-id admin read.
func (h *Handler) findPackage(ctx context.Context, client Catalog, id string) (travelapi.Package, error) {
	all, err := client.ListPackages(ctx)
	if err != nil {
		return travelapi.Package{}, err
	}
	for _, pkg := range all {
		if pkg.ID == id {
			return pkg, nil
		}
	}
	return travelapi.Package{}, &travelapi.Error{StatusCode: http.StatusNotFound, Message: "package not found"}
}

func (h *Handler) parseForm(r *http.Request) (packageForm, map[string]string) {
	if err := r.ParseForm(); err != nil {
		return packageForm{}, map[string]string{"form": "The submitted form could not be read."}
	}
	form := packageForm{
		Title:          strings.TrimSpace(r.PostFormValue("title")),
		Type:           r.PostFormValue("type"),
		Status:         r.PostFormValue("status"),
		PriceAmount:    strings.TrimSpace(r.PostFormValue("price_amount")),
		PriceCurrency:  r.PostFormValue("price_currency"),
		DurationDays:   strings.TrimSpace(r.PostFormValue("duration_days")),
		SeatsAvailable: strings.TrimSpace(r.PostFormValue("seats_available")),
		Thumbnail:      strings.TrimSpace(r.PostFormValue("thumbnail")),
	}

	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = fieldMessage(fieldErr.Field())
		}
	}
	if _, err := strconv.ParseFloat(form.PriceAmount, 64); form.PriceAmount != "" && err != nil {
		errs["PriceAmount"] = "Price must be a number."
	}
	if v, err := strconv.Atoi(form.DurationDays); form.DurationDays != "" && (err != nil || v < 1) {
		errs["DurationDays"] = "Duration must be at least one day."
	}
	if v, err := strconv.Atoi(form.SeatsAvailable); form.SeatsAvailable != "" && (err != nil || v < 0) {
		errs["SeatsAvailable"] = "Seats must be zero or more."
	}
	if len(errs) > 0 {
		return form, errs
	}
	return form, nil
}

func fieldMessage(field string) string {
	switch field {
	case "Title":
		return "Title must be at least 3 characters."
	case "Type":
		return "Type must be hajj or umrah."
	case "Status":
		return "Status must be draft or published."
	case "PriceAmount":
		return "Price is required."
	case "PriceCurrency":
		return "Currency must be BDT, USD or SAR."
	case "DurationDays":
		return "Duration is required."
	case "SeatsAvailable":
		return "Seats available is required."
	case "Thumbnail":
		return "Thumbnail must be a valid URL."
	default:
		return "Invalid value."
	}
}

func formToInput(form packageForm) travelapi.PackageInput {
	amount, _ := strconv.ParseFloat(form.PriceAmount, 64)
	days, _ := strconv.Atoi(form.DurationDays)
	seats, _ := strconv.Atoi(form.SeatsAvailable)
	return travelapi.PackageInput{
		Title:          form.Title,
		Type:           form.Type,
		Status:         form.Status,
		Price:          travelapi.Money{Currency: form.PriceCurrency, Amount: amount},
		DurationDays:   days,
		SeatsAvailable: seats,
		Thumbnail:      form.Thumbnail,
	}
}

func formToPatch(form packageForm) travelapi.PackagePatch {
	amount, _ := strconv.ParseFloat(form.PriceAmount, 64)
	days, _ := strconv.Atoi(form.DurationDays)
	seats, _ := strconv.Atoi(form.SeatsAvailable)
	price := travelapi.Money{Currency: form.PriceCurrency, Amount: amount}
	return travelapi.PackagePatch{
		Title:          &form.Title,
		Type:           &form.Type,
		Status:         &form.Status,
		Price:          &price,
		DurationDays:   &days,
		SeatsAvailable: &seats,
		Thumbnail:      &form.Thumbnail,
	}
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
	http.Redirect(w, r, "/admin/packages", http.StatusSeeOther)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// HandleListForTest exposes the list handler for tests.
func (h *Handler) HandleListForTest(w http.ResponseWriter, r *http.Request) { h.handleList(w, r) }

// HandleCreateForTest exposes the create handler for tests.
func (h *Handler) HandleCreateForTest(w http.ResponseWriter, r *http.Request) { h.handleCreate(w, r) }

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/DukeRupert/rcadmin/internal/csrf"
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/service"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/admins"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// AdminHandler handles the admin management pages.
//
// Routes handled:
// - GET  /admin-management              -> List
// - POST /admin-management              -> Create
// - POST /admin-management/{id}/delete  -> Delete
type AdminHandler struct {
	admins   service.AdminService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admins service.AdminService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *AdminHandler {
	return &AdminHandler{
		admins:   admins,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// RegisterRoutes registers admin management routes behind the route guard.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	mux.Handle("GET /admin-management", requireSession(http.HandlerFunc(h.List)))
	mux.Handle("POST /admin-management", requireSession(http.HandlerFunc(h.Create)))
	mux.Handle("POST /admin-management/{id}/delete", requireSession(http.HandlerFunc(h.Delete)))
}

// List renders the admin accounts, newest first.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, admins.FormData{}, nil, false)
}

// Create validates the form and creates an admin account.
//
// Form Fields: name, email, role, password, confirm_password.
// On validation failure the page is re-rendered with the form open and
// field errors shown. Passwords are never echoed back.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("admin.create", "Invalid form submission. Please try again."))
		return
	}

	params := domain.CreateAdminParams{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Role:            r.FormValue("role"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	form := admins.FormData{Name: params.Name, Email: params.Email, Role: params.Role}

	err := h.admins.Create(r.Context(), params)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			if wantsJSON(r) {
				ValidationErrorResponse(w, r, h.logger, err)
				return
			}
			h.renderPage(w, r, http.StatusUnprocessableEntity, form, ve.Fields, true)
			return
		}

		h.logger.Error("failed to create admin", "error", err, "email", params.Email)
		if wantsJSON(r) {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		h.renderPage(w, r, StatusFor(domain.ErrorCode(err)), form, map[string]string{
			"form": domain.ErrorMessage(err),
		}, true)
		return
	}

	h.logger.Info("admin created", "email", params.Email, "role", params.Role)

	setFlash(w, shared.FlashSuccess, "Admin created successfully.", h.isSecure)
	http.Redirect(w, r, "/admin-management", http.StatusSeeOther)
}

// Delete removes an admin account. htmx requests get the refreshed table
// and a toast; plain form posts are redirected back with a flash message.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.admins.Delete(r.Context(), id)

	var toast ToastData
	if err != nil {
		if domain.ErrorCode(err) != domain.ENOTFOUND {
			h.logger.Error("failed to delete admin", "error", err, "id", id)
		}
		toast = ToastData{Type: "error", Message: domain.ErrorMessage(err)}
	} else {
		h.logger.Info("admin deleted", "id", id, "email", deleted.Email)
		toast = ToastData{Type: "success", Message: "Admin " + deleted.Email + " deleted."}
	}

	if r.Header.Get("HX-Request") != "true" {
		setFlash(w, shared.FlashType(toast.Type), toast.Message, h.isSecure)
		http.Redirect(w, r, "/admin-management", http.StatusSeeOther)
		return
	}

	list, listErr := h.admins.List(r.Context())
	if listErr != nil {
		// Keep the rows on screen; only report the outcome.
		w.Header().Set("HX-Reswap", "none")
		renderComponent(w, r, h.logger, http.StatusOK, h.renderer.Partial("toast", toast.withDefaults()))
		return
	}

	table := admins.TableData{Admins: list, CSRFToken: csrf.FromContext(r.Context())}
	renderComponent(w, r, h.logger, http.StatusOK, templ.Join(
		h.renderer.Partial("admin_table", table),
		h.renderer.Partial("toast", toast.withDefaults()),
	))
}

func (h *AdminHandler) renderPage(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form admins.FormData,
	fieldErrors map[string]string,
	showForm bool,
) {
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}

	data := admins.PageData{
		Layout:   newLayout(w, r),
		Form:     form,
		Errors:   fieldErrors,
		Roles:    domain.AdminRoles,
		ShowForm: showForm,
	}

	list, err := h.admins.List(r.Context())
	if err != nil {
		data.Error = domain.ErrorMessage(err)
	} else {
		data.Admins = list
	}

	renderComponent(w, r, h.logger, status, h.renderer.Page("admin_management", data))
}

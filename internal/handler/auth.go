// Package handler contains HTTP handlers for the admin dashboard.
//
// This file implements sign-in and sign-out. The remote auth API decides
// whether credentials are valid; the handlers only translate its answer into
// a session and a redirect.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/DukeRupert/rcadmin/internal/auth"
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/service"
	authpages "github.com/DukeRupert/rcadmin/internal/templ/pages/auth"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	Page(name string, data interface{}) templ.Component
	Partial(name string, data interface{}) templ.Component
}

// SessionManager creates and destroys dashboard sessions.
// session.Manager implements it.
type SessionManager interface {
	Login(ctx context.Context, w http.ResponseWriter, user *domain.Identity, token string) (*domain.Session, error)
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// LoginLimiter counts failed sign-ins. middleware.LoginRateLimiter implements it.
type LoginLimiter interface {
	RecordFailedLogin(r *http.Request)
	ResetLogin(r *http.Request)
}

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
// - GET  /login  -> ShowLogin
// - POST /login  -> Login
// - POST /logout -> Logout
type AuthHandler struct {
	authService service.AuthService
	sessions    SessionManager
	limiter     LoginLimiter
	renderer    TemplateRenderer
	logger      *slog.Logger
	role        string
	isSecure    bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
//
// Example usage in main.go:
//
//	authHandler := handler.NewAuthHandler(authService, sessions, limiter, renderer, logger, cfg.LoginRole, cfg.IsSecure())
func NewAuthHandler(
	authService service.AuthService,
	sessions SessionManager,
	limiter LoginLimiter,
	renderer TemplateRenderer,
	logger *slog.Logger,
	role string,
	isSecure bool,
) *AuthHandler {
	if role == "" {
		role = domain.RoleSuperAdmin
	}
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		limiter:     limiter,
		renderer:    renderer,
		logger:      logger,
		role:        role,
		isSecure:    isSecure,
	}
}

// RegisterRoutes registers auth routes. redirectIfAuthenticated keeps
// signed-in users away from the login page.
func (h *AuthHandler) RegisterRoutes(
	mux *http.ServeMux,
	redirectIfAuthenticated func(http.Handler) http.Handler,
	limitLogin func(http.Handler) http.Handler,
) {
	mux.Handle("GET /login", redirectIfAuthenticated(http.HandlerFunc(h.ShowLogin)))
	mux.Handle("POST /login", redirectIfAuthenticated(limitLogin(http.HandlerFunc(h.Login))))
	mux.HandleFunc("POST /logout", h.Logout)
}

// =============================================================================
// GET /login - Show Login Form
// =============================================================================

// ShowLogin renders the login form.
//
// Template: auth/login
//
// Query Parameters:
// - return_to (optional): path to return to after signing in, set by the route guard
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if !auth.IsSafeReturnPath(returnTo) {
		returnTo = ""
	}

	h.renderLogin(w, r, http.StatusOK, authpages.FormData{}, nil, nil, returnTo)
}

// =============================================================================
// POST /login - Process Login
// =============================================================================

// Login processes the login form submission.
//
// Form Fields:
// - email (required)
// - password (required)
// - return_to (optional): path to redirect to after successful login
//
// The role is not a form field: every attempt is made as the configured
// dashboard role.
//
// Error Flow: the form is re-rendered with the email preserved and the
// auth API's message shown. Rejected credentials count against the login
// rate limit.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse login form", "error", err)
		h.renderLogin(w, r, http.StatusBadRequest, authpages.FormData{}, nil, &shared.Flash{
			Type:    shared.FlashError,
			Message: "Invalid form submission. Please try again.",
		}, "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnTo := r.FormValue("return_to")
	if !auth.IsSafeReturnPath(returnTo) {
		returnTo = ""
	}
	form := authpages.FormData{Email: email}

	errors := make(map[string]string)
	if email == "" {
		errors["email"] = "Email is required"
	}
	if password == "" {
		errors["password"] = "Password is required"
	}
	if len(errors) > 0 {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form, errors, nil, returnTo)
		return
	}

	result, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		status := StatusFor(domain.ErrorCode(err))
		switch domain.ErrorCode(err) {
		case domain.EUNAUTHORIZED, domain.EFORBIDDEN, domain.EINVALID, domain.ENOTFOUND:
			h.limiter.RecordFailedLogin(r)
			// The form was re-rendered, not rejected by us.
			status = http.StatusUnprocessableEntity
		default:
			h.logger.Error("login failed", "error", err, "email", email)
		}
		h.renderLogin(w, r, status, form, nil, &shared.Flash{
			Type:    shared.FlashError,
			Message: domain.ErrorMessage(err),
		}, returnTo)
		return
	}

	sess, err := h.sessions.Login(r.Context(), w, result.User, result.Token)
	if err != nil {
		h.logger.Error("failed to start session", "error", err, "email", email)
		h.renderLogin(w, r, http.StatusInternalServerError, form, nil, &shared.Flash{
			Type:    shared.FlashError,
			Message: "Login failed. Please try again later.",
		}, returnTo)
		return
	}
	h.limiter.ResetLogin(r)

	h.logger.Info("user logged in",
		"email", sess.User.Email,
		"role", sess.User.Role,
		"expires_at", sess.ExpiresAt,
	)

	redirectURL := "/dashboard"
	if returnTo != "" {
		redirectURL = returnTo
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// renderLogin renders the login form with optional errors.
func (h *AuthHandler) renderLogin(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form authpages.FormData,
	errors map[string]string,
	flash *shared.Flash,
	returnTo string,
) {
	if errors == nil {
		errors = make(map[string]string)
	}

	layout := newLayout(w, r)
	layout.Title = "Sign in"
	if flash != nil {
		layout.Flash = flash
	}

	data := authpages.LoginPageData{
		Layout:   layout,
		Form:     form,
		Errors:   errors,
		ReturnTo: returnTo,
		Role:     h.role,
	}

	renderComponent(w, r, h.logger, status, h.renderer.Page("auth/login", data))
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout ends the session and sends the browser to the login page.
//
// The remote logout call is best effort: local state is always cleared,
// and logging out without a session is a no-op that still redirects.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if auth.GetSession(r.Context()) != nil {
		if err := h.authService.Logout(r.Context()); err != nil {
			h.logger.Warn("remote logout failed", "error", err)
		}
	}

	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		h.logger.Error("failed to delete session", "error", err)
	}

	setFlash(w, shared.FlashSuccess, "You have been signed out.", h.isSecure)

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", auth.LoginPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

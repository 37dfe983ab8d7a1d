// Package middleware contains HTTP middleware for the admin dashboard.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/auth"
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/handler"
	"github.com/DukeRupert/rcadmin/internal/session"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = auth.LoginPath

	// HomePath is where authenticated users land by default.
	HomePath = "/dashboard"
)

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// Authenticator is the single authentication check behind every protected
// route. session.Manager implements it.
type Authenticator interface {
	// Load returns the session for the request, or session.ErrNoSession.
	Load(ctx context.Context, r *http.Request) (*domain.Session, error)

	// Clear removes the session cookie.
	Clear(w http.ResponseWriter)
}

// AuthMiddleware provides authentication middleware functionality.
//
// Create one instance and use its methods as middleware.
type AuthMiddleware struct {
	sessions Authenticator
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(sessions Authenticator, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
	}
}

// =============================================================================
// Guard Decision
// =============================================================================

// Decision is the outcome of guarding a route: render it, or redirect.
type Decision struct {
	Render   bool
	Redirect string
}

// GuardDecision decides what a protected route does for sess at path.
// path is the request path including any query string.
//
// An authenticated session renders the route. Anything else redirects to
// the login page, carrying path so the user returns to it after signing in.
func GuardDecision(sess *domain.Session, path string) Decision {
	if sess.IsAuthenticated() {
		return Decision{Render: true}
	}
	if path == "" || path == "/" || !auth.IsSafeReturnPath(path) {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Redirect: LoginPath + "?return_to=" + url.QueryEscape(path)}
}

// =============================================================================
// WithSession Middleware
// =============================================================================

// WithSession loads the session from the cookie and the session store and
// puts it in the request context, where handlers and the API client's
// bearer transport find it. It always continues to the next handler.
//
// A cookie that no longer maps to a live session is cleared. A store
// failure leaves the cookie alone: the session may still be valid once the
// store recovers.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.sessions.Load(r.Context(), r)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				if _, cerr := r.Cookie(session.CookieName); cerr == nil {
					m.sessions.Clear(w)
				}
			} else {
				m.logger.Error("failed to load session", "error", err, "path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.SetSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// RequireSession Middleware
// =============================================================================

// RequireSession renders the route only for an authenticated session.
//
// IMPORTANT: This middleware must be used AFTER WithSession in the chain.
//
// Unauthenticated HTML requests are redirected to the login page with a
// return_to parameter; API requests get a 401 JSON error.
//
// Flow:
//
//	Request -> WithSession -> RequireSession -> Handler
//	                          |
//	                          +-> GuardDecision(session, path)
//	                          +-> Render: call next handler
//	                          +-> Redirect: 303 to /login (or 401 for API)
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := GuardDecision(auth.GetSession(r.Context()), r.URL.RequestURI())
		if decision.Render {
			next.ServeHTTP(w, r)
			return
		}

		if isAPIRequest(r) {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		// htmx follows redirects inside the swap target; ask for a full page load.
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", decision.Redirect)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
	})
}

// RedirectIfAuthenticated sends signed-in users away from the login page.
// Use after WithSession.
func (m *AuthMiddleware) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetSession(r.Context()) != nil {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Request Helpers
// =============================================================================

// isAPIRequest determines if the request expects a JSON response.
//
// Checks:
// 1. Accept header contains application/json
// 2. Content-Type is application/json
// 3. URL path starts with /api/
// 4. HX-Request header is NOT present (htmx wants HTML)
func isAPIRequest(r *http.Request) bool {
	// htmx requests want HTML fragments
	if r.Header.Get("HX-Request") == "true" {
		return false
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}

	return strings.HasPrefix(r.URL.Path, "/api/")
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(authMw.WithSession, authMw.RequireSession)
//	mux.Handle("GET /dashboard", stack(dashboardHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// =============================================================================
// Compile-time checks
// =============================================================================

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithSession
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireSession
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RedirectIfAuthenticated
	_ Authenticator                   = (*session.Manager)(nil)
)

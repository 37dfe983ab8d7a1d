package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/rcadmin/internal/csrf"
)

// CSRFMiddleware issues a CSRF cookie on every request and rejects unsafe
// requests whose submitted token does not match it.
type CSRFMiddleware struct {
	isSecure bool
	logger   *slog.Logger
}

// NewCSRFMiddleware creates a new CSRF middleware.
func NewCSRFMiddleware(isSecure bool, logger *slog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{isSecure: isSecure, logger: logger}
}

// Handler returns the middleware. The token is placed in the request
// context for templates via csrf.FromContext.
func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !csrf.ValidateRequest(r) {
				m.logger.Warn("csrf token mismatch",
					"method", r.Method,
					"path", r.URL.Path,
					"ip", getClientIP(r),
				)
				http.Error(w, "Invalid or missing CSRF token. Reload the page and try again.", http.StatusForbidden)
				return
			}
		}

		token, err := csrf.EnsureToken(w, r, m.isSecure)
		if err != nil {
			m.logger.Error("failed to generate csrf token", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(csrf.NewContext(r.Context(), token)))
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DukeRupert/rcadmin/internal/csrf"
)

func csrfProtected(seen *string) http.Handler {
	return NewCSRFMiddleware(false, newTestLogger()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = csrf.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddleware_GetIssuesToken(t *testing.T) {
	var seen string
	rec := httptest.NewRecorder()
	csrfProtected(&seen).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == "" {
		t.Fatal("expected token in context")
	}

	var issued string
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrf.CookieName {
			issued = c.Value
		}
	}
	if issued != seen {
		t.Errorf("cookie token %q does not match context token %q", issued, seen)
	}
}

func TestCSRFMiddleware_PostRequiresMatchingToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		form   string
		header string
		want   int
	}{
		{"matching form field", "tok", "tok", "", http.StatusOK},
		{"matching header", "tok", "", "tok", http.StatusOK},
		{"mismatch", "tok", "other", "", http.StatusForbidden},
		{"missing cookie", "", "tok", "", http.StatusForbidden},
		{"missing token", "tok", "", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.form != "" {
				form.Set(csrf.FormFieldName, tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(csrf.HeaderName, tt.header)
			}

			var seen string
			rec := httptest.NewRecorder()
			csrfProtected(&seen).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rcadmin/internal/domain"
	authpages "github.com/DukeRupert/rcadmin/internal/templ/pages/auth"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

type authFixture struct {
	handler  *AuthHandler
	service  *mockAuthService
	sessions *mockSessionManager
	limiter  *mockLimiter
	renderer *mockRenderer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		service:  &mockAuthService{},
		sessions: &mockSessionManager{},
		limiter:  &mockLimiter{},
		renderer: &mockRenderer{},
	}
	f.handler = NewAuthHandler(f.service, f.sessions, f.limiter, f.renderer, newTestLogger(), "", false)
	return f
}

func postLogin(h http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func loginData(t *testing.T, r *mockRenderer) authpages.LoginPageData {
	t.Helper()
	call := r.last()
	require.Equal(t, "auth/login", call.name)
	data, ok := call.data.(authpages.LoginPageData)
	require.True(t, ok, "unexpected data type %T", call.data)
	return data
}

// =============================================================================
// GET /login
// =============================================================================

func TestShowLogin(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantReturnTo string
	}{
		{"no return path", "", ""},
		{"keeps a local return path", "?return_to=%2Flistings%3Fpage%3D2", "/listings?page=2"},
		{"drops an external return path", "?return_to=https%3A%2F%2Fevil.example", ""},
		{"drops a protocol-relative return path", "?return_to=%2F%2Fevil.example", ""},
		{"drops the login page itself", "?return_to=%2Flogin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			rec := httptest.NewRecorder()
			f.handler.ShowLogin(rec, httptest.NewRequest(http.MethodGet, "/login"+tt.query, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			data := loginData(t, f.renderer)
			assert.Equal(t, tt.wantReturnTo, data.ReturnTo)
			assert.Equal(t, domain.RoleSuperAdmin, data.Role)
			assert.Equal(t, "Sign in", data.Layout.Title)
		})
	}
}

// =============================================================================
// POST /login
// =============================================================================

func TestLogin_Success_StartsSessionAndRedirects(t *testing.T) {
	f := newAuthFixture()
	var gotEmail, gotPassword string
	f.service.LoginFunc = func(ctx context.Context, email, password string) (*domain.LoginResult, error) {
		gotEmail, gotPassword = email, password
		return &domain.LoginResult{User: testIdentity(), Token: "tok-123"}, nil
	}

	rec := postLogin(f.handler.Login, url.Values{"email": {"  admin@example.com "}, "password": {"secret"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, "admin@example.com", gotEmail)
	assert.Equal(t, "secret", gotPassword)
	assert.Equal(t, "tok-123", f.sessions.loggedInWith)
	assert.Equal(t, 1, f.limiter.resets)
	assert.Zero(t, f.limiter.failures)
}

func TestLogin_Success_HonoursReturnPath(t *testing.T) {
	tests := []struct {
		name     string
		returnTo string
		want     string
	}{
		{"local path", "/listings?page=2", "/listings?page=2"},
		{"external url", "https://evil.example/", "/dashboard"},
		{"protocol-relative", "//evil.example", "/dashboard"},
		{"backslash trick", "/\\evil.example", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			f.service.LoginFunc = func(context.Context, string, string) (*domain.LoginResult, error) {
				return &domain.LoginResult{User: testIdentity(), Token: "tok"}, nil
			}

			rec := postLogin(f.handler.Login, url.Values{
				"email":     {"admin@example.com"},
				"password":  {"secret"},
				"return_to": {tt.returnTo},
			})

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := newAuthFixture()
	f.service.LoginFunc = func(context.Context, string, string) (*domain.LoginResult, error) {
		t.Fatal("auth API must not be called for an incomplete form")
		return nil, nil
	}

	rec := postLogin(f.handler.Login, url.Values{"email": {"admin@example.com"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	data := loginData(t, f.renderer)
	assert.Equal(t, "Password is required", data.Errors["password"])
	assert.Empty(t, data.Errors["email"])
	assert.Equal(t, "admin@example.com", data.Form.Email)
	assert.Zero(t, f.limiter.failures)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	f := newAuthFixture()
	f.service.LoginFunc = func(context.Context, string, string) (*domain.LoginResult, error) {
		return nil, domain.Unauthorized("auth.Login", "Invalid email or password")
	}

	rec := postLogin(f.handler.Login, url.Values{
		"email":     {"admin@example.com"},
		"password":  {"wrong"},
		"return_to": {"/listings"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 1, f.limiter.failures)
	assert.Zero(t, f.limiter.resets)
	assert.Empty(t, f.sessions.loggedInWith)

	data := loginData(t, f.renderer)
	require.NotNil(t, data.Layout.Flash)
	assert.Equal(t, shared.FlashError, data.Layout.Flash.Type)
	assert.Equal(t, "Invalid email or password", data.Layout.Flash.Message)
	assert.Equal(t, "admin@example.com", data.Form.Email)
	assert.Equal(t, "/listings", data.ReturnTo)
}

func TestLogin_UpstreamFailureIsNotCountedAsAttempt(t *testing.T) {
	f := newAuthFixture()
	f.service.LoginFunc = func(context.Context, string, string) (*domain.LoginResult, error) {
		return nil, domain.Unavailable(errors.New("dial tcp: refused"), "auth.Login", "Login service is unavailable")
	}

	rec := postLogin(f.handler.Login, url.Values{"email": {"admin@example.com"}, "password": {"secret"}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, f.limiter.failures)
	assert.Equal(t, "Login service is unavailable", loginData(t, f.renderer).Layout.Flash.Message)
}

func TestLogin_SessionStoreFailure(t *testing.T) {
	f := newAuthFixture()
	f.service.LoginFunc = func(context.Context, string, string) (*domain.LoginResult, error) {
		return &domain.LoginResult{User: testIdentity(), Token: "tok"}, nil
	}
	f.sessions.LoginFunc = func(context.Context, http.ResponseWriter, *domain.Identity, string) (*domain.Session, error) {
		return nil, errors.New("redis: connection refused")
	}

	rec := postLogin(f.handler.Login, url.Values{"email": {"admin@example.com"}, "password": {"secret"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, f.limiter.resets)
	assert.Empty(t, rec.Header().Get("Location"))
}

// =============================================================================
// POST /logout
// =============================================================================

func TestLogout_WithSession(t *testing.T) {
	f := newAuthFixture()

	req := withSession(httptest.NewRequest(http.MethodPost, "/logout", nil))
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, f.service.logoutCalls)
	assert.Equal(t, 1, f.sessions.logoutCalls)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), flashCookieName+"=")
}

func TestLogout_RemoteFailureStillSignsOut(t *testing.T) {
	f := newAuthFixture()
	f.service.LogoutFunc = func(context.Context) error {
		return domain.Unavailable(errors.New("timeout"), "auth.Logout", "unavailable")
	}

	rec := httptest.NewRecorder()
	f.handler.Logout(rec, withSession(httptest.NewRequest(http.MethodPost, "/logout", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, f.sessions.logoutCalls)
}

func TestLogout_WithoutSessionSkipsRemoteCall(t *testing.T) {
	f := newAuthFixture()

	rec := httptest.NewRecorder()
	f.handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, f.service.logoutCalls)
	assert.Equal(t, 1, f.sessions.logoutCalls)
}

func TestLogout_Htmx(t *testing.T) {
	f := newAuthFixture()

	req := withSession(httptest.NewRequest(http.MethodPost, "/logout", nil))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
}

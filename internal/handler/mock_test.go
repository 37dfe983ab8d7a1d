package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"

	"github.com/DukeRupert/rcadmin/internal/auth"
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/service"
)

// =============================================================================
// Test Helpers
// =============================================================================

// newTestLogger creates a logger that only shows errors.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testIdentity() *domain.Identity {
	return &domain.Identity{Email: "admin@example.com", Role: domain.RoleSuperAdmin, Name: "Asha"}
}

func testSession() *domain.Session {
	return &domain.Session{
		Token:     "abc123",
		User:      testIdentity(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// withSession returns r carrying an authenticated session.
func withSession(r *http.Request) *http.Request {
	return r.WithContext(auth.SetSession(r.Context(), testSession()))
}

// =============================================================================
// Mock Renderer
// =============================================================================

type renderCall struct {
	kind string // "page" or "partial"
	name string
	data interface{}
}

// mockRenderer records what was rendered and writes "<kind>:<name>".
type mockRenderer struct {
	calls []renderCall
	err   error
}

func (m *mockRenderer) Page(name string, data interface{}) templ.Component {
	return m.component("page", name, data)
}

func (m *mockRenderer) Partial(name string, data interface{}) templ.Component {
	return m.component("partial", name, data)
}

func (m *mockRenderer) component(kind, name string, data interface{}) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if m.err != nil {
			return m.err
		}
		m.calls = append(m.calls, renderCall{kind: kind, name: name, data: data})
		_, err := io.WriteString(w, kind+":"+name+"\n")
		return err
	})
}

func (m *mockRenderer) last() renderCall {
	if len(m.calls) == 0 {
		return renderCall{}
	}
	return m.calls[len(m.calls)-1]
}

// =============================================================================
// Mock Services
// =============================================================================

type mockAuthService struct {
	LoginFunc   func(ctx context.Context, email, password string) (*domain.LoginResult, error)
	LogoutFunc  func(ctx context.Context) error
	logoutCalls int
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errors.New("LoginFunc not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context) error {
	m.logoutCalls++
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

type mockSessionManager struct {
	LoginFunc    func(ctx context.Context, w http.ResponseWriter, user *domain.Identity, token string) (*domain.Session, error)
	logoutCalls  int
	loggedInWith string
}

func (m *mockSessionManager) Login(ctx context.Context, w http.ResponseWriter, user *domain.Identity, token string) (*domain.Session, error) {
	m.loggedInWith = token
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, w, user, token)
	}
	return &domain.Session{Token: token, User: user, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockSessionManager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.logoutCalls++
	return nil
}

type mockLimiter struct {
	failures int
	resets   int
}

func (m *mockLimiter) RecordFailedLogin(*http.Request) { m.failures++ }
func (m *mockLimiter) ResetLogin(*http.Request)        { m.resets++ }

type mockAdminService struct {
	ListFunc   func(ctx context.Context) ([]domain.Admin, error)
	CreateFunc func(ctx context.Context, params domain.CreateAdminParams) error
	DeleteFunc func(ctx context.Context, id string) (*domain.Admin, error)
}

func (m *mockAdminService) List(ctx context.Context) ([]domain.Admin, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Admin{}, nil
}

func (m *mockAdminService) Create(ctx context.Context, params domain.CreateAdminParams) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil
}

func (m *mockAdminService) Delete(ctx context.Context, id string) (*domain.Admin, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil, errors.New("DeleteFunc not implemented")
}

type mockDashboardService struct {
	OverviewFunc          func(ctx context.Context, c, t domain.TimeSeriesFilter) *service.Overview
	CandidateSeriesFunc   func(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error)
	TransactionSeriesFunc func(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error)
}

func (m *mockDashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	return &domain.DashboardMetrics{}, nil
}

func (m *mockDashboardService) FilterOptions(ctx context.Context) *domain.FilterOptions {
	return &domain.FilterOptions{}
}

func (m *mockDashboardService) CandidateSeries(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if m.CandidateSeriesFunc != nil {
		return m.CandidateSeriesFunc(ctx, f)
	}
	return &domain.TimeSeries{}, nil
}

func (m *mockDashboardService) TransactionSeries(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if m.TransactionSeriesFunc != nil {
		return m.TransactionSeriesFunc(ctx, f)
	}
	return &domain.TimeSeries{}, nil
}

func (m *mockDashboardService) Overview(ctx context.Context, c, t domain.TimeSeriesFilter) *service.Overview {
	if m.OverviewFunc != nil {
		return m.OverviewFunc(ctx, c, t)
	}
	return &service.Overview{}
}

type mockCatalogService struct {
	ListingsFunc func(ctx context.Context, params service.ListingsParams) (*service.ListingsResult, error)
	ProductFunc  func(ctx context.Context, id string) (*domain.Product, error)
}

func (m *mockCatalogService) Listings(ctx context.Context, params service.ListingsParams) (*service.ListingsResult, error) {
	if m.ListingsFunc != nil {
		return m.ListingsFunc(ctx, params)
	}
	return &service.ListingsResult{}, nil
}

func (m *mockCatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	if m.ProductFunc != nil {
		return m.ProductFunc(ctx, id)
	}
	return nil, domain.NotFound("catalog.Product", "product", id)
}

var (
	_ TemplateRenderer         = (*mockRenderer)(nil)
	_ service.AuthService      = (*mockAuthService)(nil)
	_ SessionManager           = (*mockSessionManager)(nil)
	_ LoginLimiter             = (*mockLimiter)(nil)
	_ service.AdminService     = (*mockAdminService)(nil)
	_ service.DashboardService = (*mockDashboardService)(nil)
	_ service.CatalogService   = (*mockCatalogService)(nil)
)

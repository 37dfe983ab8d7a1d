package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// mockAPI implements every remote API contract with overridable funcs.
type mockAPI struct {
	LoginFunc  func(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)
	LogoutFunc func(ctx context.Context) error

	ListAdminsFunc  func(ctx context.Context) ([]domain.Admin, error)
	CreateAdminFunc func(ctx context.Context, params domain.CreateAdminParams) error
	DeleteAdminFunc func(ctx context.Context, id, email string) error

	BidMetricsFunc            func(ctx context.Context) (*domain.BidMetrics, error)
	ChatDealCountsFunc        func(ctx context.Context) (*domain.ChatDealCounts, error)
	ProfileAgingFunc          func(ctx context.Context) (*domain.ProfileAging, error)
	CountsFunc                func(ctx context.Context) (*domain.Counts, error)
	PriceSummaryFunc          func(ctx context.Context) (domain.PriceSummary, error)
	FilterOptionsFunc         func(ctx context.Context) (*domain.FilterOptions, error)
	CandidateTimeSeriesFunc   func(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error)
	TransactionTimeSeriesFunc func(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error)

	ListProductsFunc   func(ctx context.Context) ([]domain.Product, error)
	GetProductFunc     func(ctx context.Context, id string) (*domain.Product, error)
	ListCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
	ListPromotionsFunc func(ctx context.Context) ([]domain.Promotion, error)
}

func (m *mockAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	return m.LoginFunc(ctx, creds)
}

func (m *mockAPI) Logout(ctx context.Context) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx)
}

func (m *mockAPI) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return m.ListAdminsFunc(ctx)
}

func (m *mockAPI) CreateAdmin(ctx context.Context, params domain.CreateAdminParams) error {
	return m.CreateAdminFunc(ctx, params)
}

func (m *mockAPI) DeleteAdmin(ctx context.Context, id, email string) error {
	return m.DeleteAdminFunc(ctx, id, email)
}

func (m *mockAPI) BidMetrics(ctx context.Context) (*domain.BidMetrics, error) {
	if m.BidMetricsFunc == nil {
		return &domain.BidMetrics{}, nil
	}
	return m.BidMetricsFunc(ctx)
}

func (m *mockAPI) ChatDealCounts(ctx context.Context) (*domain.ChatDealCounts, error) {
	if m.ChatDealCountsFunc == nil {
		return &domain.ChatDealCounts{}, nil
	}
	return m.ChatDealCountsFunc(ctx)
}

func (m *mockAPI) ProfileAging(ctx context.Context) (*domain.ProfileAging, error) {
	if m.ProfileAgingFunc == nil {
		return &domain.ProfileAging{}, nil
	}
	return m.ProfileAgingFunc(ctx)
}

func (m *mockAPI) Counts(ctx context.Context) (*domain.Counts, error) {
	if m.CountsFunc == nil {
		return &domain.Counts{}, nil
	}
	return m.CountsFunc(ctx)
}

func (m *mockAPI) PriceSummary(ctx context.Context) (domain.PriceSummary, error) {
	if m.PriceSummaryFunc == nil {
		return domain.PriceSummary{}, nil
	}
	return m.PriceSummaryFunc(ctx)
}

func (m *mockAPI) CandidateFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	if m.FilterOptionsFunc == nil {
		return &domain.FilterOptions{}, nil
	}
	return m.FilterOptionsFunc(ctx)
}

func (m *mockAPI) CandidateTimeSeries(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if m.CandidateTimeSeriesFunc == nil {
		return &domain.TimeSeries{}, nil
	}
	return m.CandidateTimeSeriesFunc(ctx, f)
}

func (m *mockAPI) TransactionTimeSeries(ctx context.Context, f domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if m.TransactionTimeSeriesFunc == nil {
		return &domain.TimeSeries{}, nil
	}
	return m.TransactionTimeSeriesFunc(ctx, f)
}

func (m *mockAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.ListProductsFunc(ctx)
}

func (m *mockAPI) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return m.GetProductFunc(ctx, id)
}

func (m *mockAPI) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.ListCategoriesFunc == nil {
		return nil, nil
	}
	return m.ListCategoriesFunc(ctx)
}

func (m *mockAPI) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	if m.ListPromotionsFunc == nil {
		return nil, nil
	}
	return m.ListPromotionsFunc(ctx)
}

var (
	_ AuthAPI     = (*mockAPI)(nil)
	_ AccountsAPI = (*mockAPI)(nil)
	_ MetricsAPI  = (*mockAPI)(nil)
	_ CatalogAPI  = (*mockAPI)(nil)
)

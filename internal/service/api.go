// Package service contains the business logic layer.
//
// Services orchestrate calls to the remote marketplace APIs and domain
// logic. They are responsible for:
// - Input validation
// - Fan-out of independent remote calls
// - Error translation (remote failures -> user-facing domain errors)
package service

import (
	"context"

	"github.com/DukeRupert/rcadmin/internal/apiclient"
	"github.com/DukeRupert/rcadmin/internal/domain"
)

// =============================================================================
// Remote API Contracts
// =============================================================================

// AuthAPI issues and revokes bearer tokens.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)
	Logout(ctx context.Context) error
}

// AccountsAPI manages admin accounts.
type AccountsAPI interface {
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	CreateAdmin(ctx context.Context, params domain.CreateAdminParams) error
	DeleteAdmin(ctx context.Context, id, email string) error
}

// MetricsAPI serves the dashboard figures.
type MetricsAPI interface {
	BidMetrics(ctx context.Context) (*domain.BidMetrics, error)
	ChatDealCounts(ctx context.Context) (*domain.ChatDealCounts, error)
	ProfileAging(ctx context.Context) (*domain.ProfileAging, error)
	Counts(ctx context.Context) (*domain.Counts, error)
	PriceSummary(ctx context.Context) (domain.PriceSummary, error)
	CandidateFilterOptions(ctx context.Context) (*domain.FilterOptions, error)
	CandidateTimeSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error)
	TransactionTimeSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error)
}

// CatalogAPI serves product listings.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
}

// Compile-time checks
var (
	_ AuthAPI     = (*apiclient.Client)(nil)
	_ AccountsAPI = (*apiclient.Client)(nil)
	_ MetricsAPI  = (*apiclient.Client)(nil)
	_ CatalogAPI  = (*apiclient.Client)(nil)
)

package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/pagination"
)

// ListingsParams selects a page of product listings.
type ListingsParams struct {
	Category string
	Page     int
	PerPage  int
}

// ListingsResult is one page of listings plus what the page shows around it.
type ListingsResult struct {
	Products   []domain.Product
	Pagination pagination.Data
	Categories []domain.Category
	Promotions []domain.Promotion
}

// CatalogService reads product listings.
type CatalogService interface {
	// Listings returns a page of products filtered by category, with the
	// categories and active promotions. Category and promotion failures
	// are logged and leave those lists empty.
	Listings(ctx context.Context, params ListingsParams) (*ListingsResult, error)

	// Product returns one listing.
	Product(ctx context.Context, id string) (*domain.Product, error)
}

type catalogService struct {
	api    CatalogAPI
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(api CatalogAPI, logger *slog.Logger) CatalogService {
	return &catalogService{api: api, logger: logger}
}

func (s *catalogService) Listings(ctx context.Context, params ListingsParams) (*ListingsResult, error) {
	const op = "catalog.listings"

	var (
		products   []domain.Product
		categories []domain.Category
		promotions []domain.Promotion
	)

	// Only the product list is fatal; the side lists degrade to empty.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.api.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if categories, err = s.api.ListCategories(gctx); err != nil {
			s.logger.Warn("failed to fetch categories", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if promotions, err = s.api.ListPromotions(gctx); err != nil {
			s.logger.Warn("failed to fetch promotions", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Wrap(err, domain.ErrorCode(err), op, "Failed to fetch listings. Please try again later.")
	}

	filtered := domain.FilterProductsByCategory(products, params.Category)
	page, pg := pagination.Paginate(filtered, params.Page, params.PerPage)

	return &ListingsResult{
		Products:   page,
		Pagination: pg,
		Categories: categories,
		Promotions: activePromotions(promotions),
	}, nil
}

func (s *catalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.NotFound("catalog.product", "listing", id)
		}
		return nil, err
	}
	return product, nil
}

func activePromotions(promotions []domain.Promotion) []domain.Promotion {
	var out []domain.Promotion
	for _, p := range promotions {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

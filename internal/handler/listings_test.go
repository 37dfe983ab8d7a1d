package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/pagination"
	"github.com/DukeRupert/rcadmin/internal/service"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/listings"
)

func TestListingsIndex(t *testing.T) {
	renderer := &mockRenderer{}
	var got service.ListingsParams
	h := NewListingsHandler(&mockCatalogService{
		ListingsFunc: func(ctx context.Context, p service.ListingsParams) (*service.ListingsResult, error) {
			got = p
			return &service.ListingsResult{
				Products:   []domain.Product{{ID: "p1", Name: "Steel pipe", Category: "Hardware"}},
				Pagination: pagination.New(11, 2, p.PerPage),
				Categories: []domain.Category{{ID: "c1", Name: "Hardware"}},
			}, nil
		},
	}, renderer, newTestLogger())

	rec := httptest.NewRecorder()
	h.Index(rec, withSession(httptest.NewRequest(http.MethodGet, "/listings?category=+Hardware+&page=2", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ListingsParams{Category: "Hardware", Page: 2, PerPage: pagination.DefaultPerPage}, got)

	call := renderer.last()
	require.Equal(t, "listings/index", call.name)
	data := call.data.(listings.IndexPageData)
	assert.Len(t, data.Products, 1)
	assert.Equal(t, 2, data.Pagination.CurrentPage)
	assert.Equal(t, "Hardware", data.Category)
	assert.Equal(t, "Listings", data.Layout.Title)
	assert.Empty(t, data.Error)
}

func TestListingsIndex_BadPageDefaults(t *testing.T) {
	var got service.ListingsParams
	h := NewListingsHandler(&mockCatalogService{
		ListingsFunc: func(ctx context.Context, p service.ListingsParams) (*service.ListingsResult, error) {
			got = p
			return &service.ListingsResult{}, nil
		},
	}, &mockRenderer{}, newTestLogger())

	h.Index(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodGet, "/listings?page=abc", nil)))

	assert.Zero(t, got.Page)
}

func TestListingsIndex_Failure(t *testing.T) {
	renderer := &mockRenderer{}
	h := NewListingsHandler(&mockCatalogService{
		ListingsFunc: func(context.Context, service.ListingsParams) (*service.ListingsResult, error) {
			return nil, domain.Unavailable(errors.New("down"), "catalog.Listings", "Failed to load products")
		},
	}, renderer, newTestLogger())

	rec := httptest.NewRecorder()
	h.Index(rec, withSession(httptest.NewRequest(http.MethodGet, "/listings", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := renderer.last().data.(listings.IndexPageData)
	assert.Equal(t, "Failed to load products", data.Error)
	assert.Equal(t, 1, data.Pagination.TotalPages)
}

func TestListingsShow(t *testing.T) {
	tests := []struct {
		name       string
		product    *domain.Product
		err        error
		wantStatus int
		wantTitle  string
		wantError  string
	}{
		{
			name:       "found",
			product:    &domain.Product{ID: "p1", Name: "Steel pipe"},
			wantStatus: http.StatusOK,
			wantTitle:  "Steel pipe",
		},
		{
			name:       "not found",
			err:        domain.NotFound("catalog.Product", "product", "p1"),
			wantStatus: http.StatusNotFound,
			wantTitle:  "Listings",
			wantError:  `product with ID "p1" not found`,
		},
		{
			name:       "upstream down",
			err:        domain.Unavailable(errors.New("502"), "catalog.Product", "Failed to load product"),
			wantStatus: http.StatusBadGateway,
			wantTitle:  "Listings",
			wantError:  "Failed to load product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &mockRenderer{}
			var gotID string
			h := NewListingsHandler(&mockCatalogService{
				ProductFunc: func(ctx context.Context, id string) (*domain.Product, error) {
					gotID = id
					return tt.product, tt.err
				},
			}, renderer, newTestLogger())

			req := httptest.NewRequest(http.MethodGet, "/listings/p1", nil)
			req.SetPathValue("id", "p1")
			rec := httptest.NewRecorder()
			h.Show(rec, withSession(req))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "p1", gotID)
			data := renderer.last().data.(listings.ShowPageData)
			assert.Equal(t, tt.wantTitle, data.Layout.Title)
			assert.Equal(t, tt.wantError, data.Error)
		})
	}
}

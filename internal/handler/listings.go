package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/pagination"
	"github.com/DukeRupert/rcadmin/internal/service"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/listings"
)

// ListingsHandler renders supplier product listings.
//
// Routes handled:
// - GET /listings      -> Index
// - GET /listings/{id} -> Show
type ListingsHandler struct {
	catalog  service.CatalogService
	renderer TemplateRenderer
	logger   *slog.Logger
}

// NewListingsHandler creates a new ListingsHandler.
func NewListingsHandler(catalog service.CatalogService, renderer TemplateRenderer, logger *slog.Logger) *ListingsHandler {
	return &ListingsHandler{
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers listings routes behind the route guard.
func (h *ListingsHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	mux.Handle("GET /listings", requireSession(http.HandlerFunc(h.Index)))
	mux.Handle("GET /listings/{id}", requireSession(http.HandlerFunc(h.Show)))
}

// Index renders a page of listings.
//
// Query Parameters:
// - category (optional): only show products in this category
// - page (optional): 1-based page number, clamped into range
func (h *ListingsHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	page, _ := strconv.Atoi(q.Get("page"))

	data := listings.IndexPageData{
		Layout:     newLayout(w, r),
		Category:   category,
		Pagination: pagination.New(0, 1, pagination.DefaultPerPage),
	}

	result, err := h.catalog.Listings(r.Context(), service.ListingsParams{
		Category: category,
		Page:     page,
		PerPage:  pagination.DefaultPerPage,
	})
	if err != nil {
		h.logger.Error("failed to load listings", "error", err)
		data.Error = domain.ErrorMessage(err)
	} else {
		data.Products = result.Products
		data.Pagination = result.Pagination
		data.Categories = result.Categories
		data.Promotions = result.Promotions
	}

	renderComponent(w, r, h.logger, http.StatusOK, h.renderer.Page("listings/index", data))
}

// Show renders a single listing.
func (h *ListingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := listings.ShowPageData{Layout: newLayout(w, r)}
	status := http.StatusOK

	product, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		status = StatusFor(domain.ErrorCode(err))
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to load listing", "error", err, "id", r.PathValue("id"))
		}
		data.Error = domain.ErrorMessage(err)
	} else {
		data.Product = product
		data.Layout.Title = product.Name
	}

	renderComponent(w, r, h.logger, status, h.renderer.Page("listings/show", data))
}

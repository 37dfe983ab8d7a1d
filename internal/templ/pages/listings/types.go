package listings

import (
	"net/url"
	"strconv"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/pagination"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// IndexPageData contains data for the listings page.
type IndexPageData struct {
	Layout     shared.Layout
	Products   []domain.Product
	Categories []domain.Category
	Promotions []domain.Promotion
	Pagination pagination.Data
	Category   string
	Error      string
}

// PageURL returns the listings URL for page, keeping the category filter.
func (d IndexPageData) PageURL(page int) string {
	q := url.Values{}
	if d.Category != "" {
		q.Set("category", d.Category)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/listings"
	}
	return "/listings?" + q.Encode()
}

// ShowPageData contains data for a single listing.
type ShowPageData struct {
	Layout  shared.Layout
	Product *domain.Product
	Error   string
}

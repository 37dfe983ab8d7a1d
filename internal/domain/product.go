package domain

import (
	"strings"
	"time"
)

// ProductSupplier is the supplier summary embedded in a product listing.
type ProductSupplier struct {
	Logo string `json:"logo"`
	Name string `json:"name"`
	City string `json:"city"`
}

// ProductSpecifications are free-text physical attributes of a product.
type ProductSpecifications struct {
	Weight     string `json:"weight"`
	Color      string `json:"color"`
	Dimensions string `json:"dimensions"`
}

// Product is a supplier listing as returned by the product API.
type Product struct {
	ID             string                `json:"_id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Category       string                `json:"category"`
	Location       string                `json:"location"`
	Quantity       int                   `json:"quantity"`
	Price          float64               `json:"price"`
	Currency       string                `json:"currency"`
	Status         string                `json:"status"`
	IsFeatured     bool                  `json:"isFeatured"`
	IsNew          bool                  `json:"isNew"`
	CoverImage     string                `json:"coverImage"`
	Images         []string              `json:"images"`
	Supplier       ProductSupplier       `json:"supplier"`
	Specifications ProductSpecifications `json:"specifications"`
	ProductDemand  int                   `json:"productDemand"`
	ProductViews   int                   `json:"productViews"`
	Orders         int                   `json:"orders"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// FilterProductsByCategory returns the products in category, matched
// case-insensitively. An empty category returns products unchanged.
func FilterProductsByCategory(products []Product, category string) []Product {
	category = strings.TrimSpace(category)
	if category == "" {
		return products
	}
	var out []Product
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Category is a product category.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Promotion is a discount campaign.
type Promotion struct {
	ID             string   `json:"_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	DiscountType   string   `json:"discount_type"` // "percentage" or "fixed_price"
	DiscountRate   float64  `json:"discount_rate"`
	StartDate      string   `json:"start_date"`
	ExpirationDate string   `json:"expiration_date"`
	Usage          string   `json:"usage"` // "expiration" or "max_redemptions"
	MaxRedemptions int      `json:"max_redemptions,omitempty"`
	DiscountCode   string   `json:"discount_code,omitempty"`
	ServiceIDs     []string `json:"service_ids"`
	IsActive       bool     `json:"is_active"`
}

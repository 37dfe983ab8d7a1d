package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// ListProducts returns every product listing.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "apiclient.ListProducts"

	var raw json.RawMessage
	if err := c.getJSON(ctx, op, ServiceCatalog, c.config.BaseURL, "/product/products", nil, &raw); err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := decodeList(op, raw, &products, "products", "data"); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product listing.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "apiclient.GetProduct"

	if id == "" {
		return nil, domain.Invalid(op, "product id is required")
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, op, ServiceCatalog, c.config.BaseURL, "/product/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := decode(op, raw, &envelope); err != nil {
		return nil, err
	}
	for _, key := range []string{"product", "data"} {
		if inner, ok := envelope[key]; ok && isObject(inner) {
			raw = inner
			break
		}
	}

	var product domain.Product
	if err := decode(op, raw, &product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		return nil, domain.NotFound(op, "product", id)
	}
	return &product, nil
}

// ListCategories returns the product categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "apiclient.ListCategories"

	var raw json.RawMessage
	if err := c.getJSON(ctx, op, ServiceCatalog, c.config.BaseURL, "/categories", nil, &raw); err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := decodeList(op, raw, &categories, "categories", "data"); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListPromotions returns the discount campaigns.
func (c *Client) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	var payload struct {
		Promotions []domain.Promotion `json:"promotions"`
	}
	if err := c.getJSON(ctx, "apiclient.ListPromotions", ServiceCatalog, c.config.BaseURL, "/promotion", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Promotions, nil
}

// decodeList decodes a list that may be a bare array or wrapped in an
// object under one of keys.
func decodeList(op string, raw json.RawMessage, out any, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decode(op, trimmed, out)
	}

	var envelope map[string]json.RawMessage
	if err := decode(op, trimmed, &envelope); err != nil {
		return err
	}
	for _, key := range keys {
		if inner, ok := envelope[key]; ok {
			return decode(op, inner, out)
		}
	}
	return domain.Unavailable(nil, op, "The service returned an unexpected response.")
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"shopfront/internal/domain"
)

// ListParams are the catalog query parameters. Category "all" or "" means no
// category filter; an empty Query means no text search.
type ListParams struct {
	Page     int
	PageSize int
	Query    string
	Category string
	SortBy   string
	SortDir  string
}

// ListProducts fetches one catalog page.
func (c *Client) ListProducts(ctx context.Context, params ListParams) (*domain.ProductPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("page_size", strconv.Itoa(params.PageSize))
	query.Set("sort_by", params.SortBy)
	query.Set("sort_dir", params.SortDir)
	if params.Category != "" && params.Category != "all" {
		query.Set("category", params.Category)
	}
	if params.Query != "" {
		query.Set("q", params.Query)
	}

	raw, err := c.do(ctx, "list_products", http.MethodGet, "/products", query, "", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items   json.RawMessage `json:"items"`
		Filters struct {
			AvailableCategories []string `json:"available_categories"`
		} `json:"filters"`
		Pagination *domain.Pagination `json:"pagination"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: missing item list", ErrInvalidPayload)
	}

	var items []domain.Product
	if err := decode(resp.Items, &items); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(resp.Filters.AvailableCategories))
	for _, category := range resp.Filters.AvailableCategories {
		if category != "" {
			categories = append(categories, category)
		}
	}

	return &domain.ProductPage{
		Items:      items,
		Categories: categories,
		Pagination: resp.Pagination,
	}, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	path := fmt.Sprintf("/products/%d", productID)

	raw, err := c.do(ctx, "get_product", http.MethodGet, path, nil, "", nil)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := decode(raw, &product); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, ErrInvalidPayload
	}
	return &product, nil
}

// RelatedProducts fetches rule-based related items for a product.
func (c *Client) RelatedProducts(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
	path := fmt.Sprintf("/products/%d/related", productID)
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	raw, err := c.do(ctx, "related_products", http.MethodGet, path, query, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

// Recommendations fetches contextual recommendations. productID is only sent
// for the "product" context.
func (c *Client) Recommendations(ctx context.Context, railContext string, productID int64, limit int) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("context", railContext)
	query.Set("limit", strconv.Itoa(limit))
	if railContext == "product" && productID > 0 {
		query.Set("product_id", strconv.FormatInt(productID, 10))
	}

	raw, err := c.do(ctx, "recommendations", http.MethodGet, "/recommendations", query, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

// decodeItems unpacks an {items: [...]} envelope, rejecting a missing list.
func decodeItems(raw []byte) ([]domain.Product, error) {
	var resp struct {
		Items []domain.Product `json:"items"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: missing item list", ErrInvalidPayload)
	}
	return resp.Items, nil
}

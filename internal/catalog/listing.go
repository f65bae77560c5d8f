// Package catalog holds the data-driven storefront views: the catalog
// listing, the product detail page, and the recommendation rail. Each owns a
// fetch machine and derives a complete request descriptor from its current
// parameters on every change.
package catalog

import (
	"context"
	"strings"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/domain"
	"shopfront/internal/fetch"
)

// Lister is the slice of the backend client the listing view needs.
type Lister interface {
	ListProducts(ctx context.Context, params api.ListParams) (*domain.ProductPage, error)
}

// ListingParams is the fully derived catalog query. Category "all" means no
// category filter.
type ListingParams struct {
	Page     int
	PageSize int
	Query    string
	Category string
	SortBy   string
	SortDir  string
}

// DefaultListingParams returns the initial catalog query.
func DefaultListingParams(pageSize int) ListingParams {
	return ListingParams{
		Page:     1,
		PageSize: pageSize,
		Category: "all",
		SortBy:   "name",
		SortDir:  "asc",
	}
}

// Listing drives the catalog page. Every filter change resets to page 1 and
// supersedes the in-flight request; only paging keeps the other parameters.
type Listing struct {
	api     Lister
	machine *fetch.Machine[*domain.ProductPage]

	mu     sync.Mutex
	params ListingParams
}

// NewListing creates an idle listing view with default parameters.
func NewListing(lister Lister, pageSize int) *Listing {
	return &Listing{
		api:     lister,
		machine: fetch.NewMachine[*domain.ProductPage]("catalog"),
		params:  DefaultListingParams(pageSize),
	}
}

// Load issues a fetch for the current parameters.
func (l *Listing) Load(ctx context.Context) <-chan struct{} {
	return l.dispatch(ctx)
}

// SetQuery applies a free-text search and resets to page 1.
func (l *Listing) SetQuery(ctx context.Context, query string) <-chan struct{} {
	l.mu.Lock()
	l.params.Query = strings.TrimSpace(query)
	l.params.Page = 1
	l.mu.Unlock()
	return l.dispatch(ctx)
}

// SetCategory applies a category filter and resets to page 1.
func (l *Listing) SetCategory(ctx context.Context, category string) <-chan struct{} {
	if category == "" {
		category = "all"
	}
	l.mu.Lock()
	l.params.Category = category
	l.params.Page = 1
	l.mu.Unlock()
	return l.dispatch(ctx)
}

// SetSort applies a sort field and direction and resets to page 1. Unknown
// values fall back to the defaults.
func (l *Listing) SetSort(ctx context.Context, sortBy, sortDir string) <-chan struct{} {
	if sortBy != "name" && sortBy != "price" {
		sortBy = "name"
	}
	if sortDir != "asc" && sortDir != "desc" {
		sortDir = "asc"
	}
	l.mu.Lock()
	l.params.SortBy = sortBy
	l.params.SortDir = sortDir
	l.params.Page = 1
	l.mu.Unlock()
	return l.dispatch(ctx)
}

// SetPage moves to another page keeping every other parameter.
func (l *Listing) SetPage(ctx context.Context, page int) <-chan struct{} {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.params.Page = page
	l.mu.Unlock()
	return l.dispatch(ctx)
}

// ResetFilters restores the initial query and reloads.
func (l *Listing) ResetFilters(ctx context.Context) <-chan struct{} {
	l.mu.Lock()
	l.params = DefaultListingParams(l.params.PageSize)
	l.mu.Unlock()
	return l.dispatch(ctx)
}

// Retry re-issues the same descriptor after an error.
func (l *Listing) Retry(ctx context.Context) <-chan struct{} {
	return l.dispatch(ctx)
}

// Params returns the current query parameters.
func (l *Listing) Params() ListingParams {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.params
}

// Snapshot returns the view state and the last applied page.
func (l *Listing) Snapshot() (fetch.State, *domain.ProductPage, error) {
	return l.machine.Snapshot()
}

// OnChange registers a state-change callback.
func (l *Listing) OnChange(fn func()) {
	l.machine.OnChange(fn)
}

// Close cancels any in-flight request; the view mutates nothing afterward.
func (l *Listing) Close() {
	l.machine.Close()
}

func (l *Listing) dispatch(ctx context.Context) <-chan struct{} {
	params := l.Params()
	descriptor := api.ListParams{
		Page:     params.Page,
		PageSize: params.PageSize,
		Query:    params.Query,
		Category: params.Category,
		SortBy:   params.SortBy,
		SortDir:  params.SortDir,
	}
	return l.machine.Dispatch(ctx, func(ctx context.Context) (*domain.ProductPage, error) {
		return l.api.ListProducts(ctx, descriptor)
	})
}

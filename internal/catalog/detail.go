package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"shopfront/internal/domain"
	"shopfront/internal/fetch"
	"shopfront/internal/observability"
)

// relatedLimit caps the related-products strip on the detail page.
const relatedLimit = 4

// DetailAPI is the slice of the backend client the detail view needs.
type DetailAPI interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	RelatedProducts(ctx context.Context, productID int64, limit int) ([]domain.Product, error)
}

// DetailResult is a hydrated product page: the product plus its related
// items.
type DetailResult struct {
	Product *domain.Product
	Related []domain.Product
}

// Detail drives the product page: two sequential fetches keyed by the route
// identifier. A missing or unparsable identifier short-circuits to an error
// without touching the network.
type Detail struct {
	api     DetailAPI
	machine *fetch.Machine[DetailResult]
}

// NewDetail creates an idle detail view.
func NewDetail(detailAPI DetailAPI) *Detail {
	return &Detail{
		api:     detailAPI,
		machine: fetch.NewMachine[DetailResult]("product_detail"),
	}
}

// Load hydrates the page for the given route identifier.
func (d *Detail) Load(ctx context.Context, routeID string) <-chan struct{} {
	productID, err := strconv.ParseInt(routeID, 10, 64)
	if err != nil || productID <= 0 {
		return d.machine.Dispatch(ctx, func(ctx context.Context) (DetailResult, error) {
			return DetailResult{}, fmt.Errorf("product id is missing from the route")
		})
	}

	return d.machine.Dispatch(ctx, func(ctx context.Context) (DetailResult, error) {
		product, err := d.api.GetProduct(ctx, productID)
		if err != nil {
			return DetailResult{}, err
		}

		related, err := d.api.RelatedProducts(ctx, productID, relatedLimit)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return DetailResult{}, err
			}
			// Related items are decoration; their failure degrades to an
			// empty strip instead of failing the whole page.
			observability.FromContext(ctx).Debug("related products unavailable",
				"product_id", productID, "error", err.Error())
			related = nil
		}

		return DetailResult{Product: product, Related: related}, nil
	})
}

// Retry re-issues the load for the same identifier.
func (d *Detail) Retry(ctx context.Context, routeID string) <-chan struct{} {
	return d.Load(ctx, routeID)
}

// Snapshot returns the view state and the last hydrated page.
func (d *Detail) Snapshot() (fetch.State, DetailResult, error) {
	return d.machine.Snapshot()
}

// OnChange registers a state-change callback.
func (d *Detail) OnChange(fn func()) {
	d.machine.OnChange(fn)
}

// Close cancels any in-flight request; the view mutates nothing afterward.
func (d *Detail) Close() {
	d.machine.Close()
}

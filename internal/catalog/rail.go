package catalog

import (
	"context"

	"shopfront/internal/domain"
	"shopfront/internal/fetch"
)

// Recommendation rail contexts.
const (
	ContextHome    = "home"
	ContextProduct = "product"
)

// Recommender is the slice of the backend client the rail needs.
type Recommender interface {
	Recommendations(ctx context.Context, railContext string, productID int64, limit int) ([]domain.Product, error)
}

// Rail drives a contextual recommendation strip.
type Rail struct {
	api     Recommender
	machine *fetch.Machine[[]domain.Product]
}

// NewRail creates an idle recommendation rail.
func NewRail(recommender Recommender) *Rail {
	return &Rail{
		api:     recommender,
		machine: fetch.NewMachine[[]domain.Product]("recommendations"),
	}
}

// Load fetches recommendations for the given context. A "product" context
// without a product id yet skips the fetch entirely and resets to idle.
func (r *Rail) Load(ctx context.Context, railContext string, productID int64, limit int) <-chan struct{} {
	if railContext == ContextProduct && productID <= 0 {
		r.machine.Reset()
		done := make(chan struct{})
		close(done)
		return done
	}

	return r.machine.Dispatch(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return r.api.Recommendations(ctx, railContext, productID, limit)
	})
}

// Snapshot returns the rail state and the last applied items.
func (r *Rail) Snapshot() (fetch.State, []domain.Product, error) {
	return r.machine.Snapshot()
}

// OnChange registers a state-change callback.
func (r *Rail) OnChange(fn func()) {
	r.machine.OnChange(fn)
}

// Close cancels any in-flight request; the rail mutates nothing afterward.
func (r *Rail) Close() {
	r.machine.Close()
}

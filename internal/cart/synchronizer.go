// Package cart keeps a client-side mirror of the server-authoritative cart.
// The mirror is only ever replaced wholesale by a full server response; no
// quantity, subtotal, or count is derived locally.
package cart

import (
	"context"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/domain"
	"shopfront/internal/observability"
)

// SessionSource is the slice of the session manager the synchronizer needs.
type SessionSource interface {
	Current() (*domain.User, string)
}

// CartAPI is the slice of the backend client the synchronizer needs. Every
// mutation returns the full updated cart.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*domain.Cart, error)
	AddCartItem(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, token string, itemID int64) (*domain.Cart, error)
	Checkout(ctx context.Context, token string) (*api.CheckoutResult, error)
}

// Synchronizer owns the cart mirror for the current identity. Mutations are
// rejected locally when no session is held, so an anonymous user never
// produces cart traffic.
type Synchronizer struct {
	mu      sync.Mutex
	api     CartAPI
	session SessionSource

	cart     *domain.Cart
	loading  bool
	mutating bool
	err      error

	// gen invalidates in-flight responses once a logout clears the mirror;
	// a reply for the previous identity must not resurrect its cart.
	gen uint64

	subscribers []func()
}

// NewSynchronizer creates an empty cart mirror bound to the given session.
func NewSynchronizer(cartAPI CartAPI, session SessionSource) *Synchronizer {
	return &Synchronizer{api: cartAPI, session: session}
}

// Subscribe registers a callback invoked after every mirror change.
// Callbacks run outside the synchronizer lock.
func (s *Synchronizer) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Cart returns the last server response seen, or nil when anonymous.
func (s *Synchronizer) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Loading reports whether an initial cart fetch is in flight.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Mutating reports whether a cart mutation is in flight.
func (s *Synchronizer) Mutating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating
}

// Err returns the last load or mutation error, cleared by the next success.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Refresh reloads the cart from the server. Without a session it clears the
// mirror and returns nil; an empty cart for an anonymous user is not an
// error.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	_, token := s.session.Current()
	if token == "" {
		s.clear()
		return nil
	}

	s.mu.Lock()
	s.loading = true
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	cart, err := s.api.GetCart(ctx, token)

	s.mu.Lock()
	if s.gen != gen {
		// Logout won the race; the mirror already reflects the anonymous
		// state and this response belongs to a dead identity.
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.cart = cart
	s.err = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// OnSessionChange reconciles the mirror with the current identity: refresh
// when authenticated, clear otherwise. Wire it as a session subscriber.
func (s *Synchronizer) OnSessionChange(ctx context.Context) {
	if _, token := s.session.Current(); token == "" {
		s.clear()
		return
	}
	if err := s.Refresh(ctx); err != nil {
		observability.Warn("cart refresh after session change failed", "error", err.Error())
	}
}

// AddItem adds a product to the cart.
func (s *Synchronizer) AddItem(ctx context.Context, productID int64, quantity int) error {
	return s.mutate(ctx, "add", func(ctx context.Context, token string) (*domain.Cart, error) {
		return s.api.AddCartItem(ctx, token, productID, quantity)
	})
}

// UpdateItem changes a line quantity. A quantity of zero or less is a
// removal.
func (s *Synchronizer) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}
	return s.mutate(ctx, "update", func(ctx context.Context, token string) (*domain.Cart, error) {
		return s.api.UpdateCartItem(ctx, token, itemID, quantity)
	})
}

// RemoveItem deletes a line from the cart.
func (s *Synchronizer) RemoveItem(ctx context.Context, itemID int64) error {
	return s.mutate(ctx, "remove", func(ctx context.Context, token string) (*domain.Cart, error) {
		return s.api.RemoveCartItem(ctx, token, itemID)
	})
}

// Checkout closes the cart and returns the order summary. The mirror is
// replaced with the final (closed) cart from the response.
func (s *Synchronizer) Checkout(ctx context.Context) (*api.CheckoutResult, error) {
	_, token := s.session.Current()
	if token == "" {
		observability.CartMutationsTotal.WithLabelValues("checkout", "rejected").Inc()
		return nil, domain.ErrAuthRequired
	}

	s.mu.Lock()
	s.mutating = true
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	result, err := s.api.Checkout(ctx, token)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.notify()
		observability.CartMutationsTotal.WithLabelValues("checkout", "superseded").Inc()
		return result, err
	}
	s.mutating = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.notify()
		observability.CartMutationsTotal.WithLabelValues("checkout", "error").Inc()
		return nil, err
	}
	s.cart = result.Cart
	s.err = nil
	s.mu.Unlock()
	s.notify()
	observability.CartMutationsTotal.WithLabelValues("checkout", "success").Inc()
	return result, nil
}

// mutate runs a cart mutation under the mutating flag and applies the
// returned cart wholesale. Anonymous calls are rejected locally with no
// network traffic.
func (s *Synchronizer) mutate(ctx context.Context, operation string, fn func(ctx context.Context, token string) (*domain.Cart, error)) error {
	_, token := s.session.Current()
	if token == "" {
		observability.CartMutationsTotal.WithLabelValues(operation, "rejected").Inc()
		return domain.ErrAuthRequired
	}

	s.mu.Lock()
	s.mutating = true
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	cart, err := fn(ctx, token)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.notify()
		observability.CartMutationsTotal.WithLabelValues(operation, "superseded").Inc()
		return err
	}
	s.mutating = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.notify()
		observability.CartMutationsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	s.cart = cart
	s.err = nil
	s.mu.Unlock()
	s.notify()
	observability.CartMutationsTotal.WithLabelValues(operation, "success").Inc()
	return nil
}

// clear drops the mirror and invalidates any in-flight response.
func (s *Synchronizer) clear() {
	s.mu.Lock()
	s.cart = nil
	s.err = nil
	s.loading = false
	s.mutating = false
	s.gen++
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) notify() {
	s.mu.Lock()
	subscribers := make([]func(), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}

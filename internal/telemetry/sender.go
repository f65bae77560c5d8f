// Package telemetry emits fire-and-forget interaction events. Delivery is
// best effort: every failure is swallowed, logged at debug level, and never
// reaches a caller.
package telemetry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"shopfront/internal/domain"
	"shopfront/internal/observability"
)

// sendTimeout bounds each delivery attempt so a hanging backend cannot pile
// up goroutines.
const sendTimeout = 3 * time.Second

// Transport is the slice of the backend client the sender needs.
type Transport interface {
	SendInteraction(ctx context.Context, token string, event domain.InteractionEvent) error
}

// TokenSource supplies the current bearer token; empty means anonymous.
type TokenSource interface {
	Current() (*domain.User, string)
}

// Sender delivers interaction events asynchronously. Emit never blocks on the
// network and never returns an error; events over the rate cap are dropped.
type Sender struct {
	api     Transport
	session TokenSource
	limiter *rate.Limiter

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewSender creates a sender capped at eventsPerSecond with the given burst.
func NewSender(transport Transport, session TokenSource, eventsPerSecond float64, burst int) *Sender {
	return &Sender{
		api:     transport,
		session: session,
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
	}
}

// Emit queues one event for delivery. The attempt is made exactly once, with
// the current token if one is held; over-rate events are dropped outright.
func (s *Sender) Emit(event domain.InteractionEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !s.limiter.Allow() {
		s.mu.Unlock()
		observability.TelemetryEventsTotal.WithLabelValues("dropped").Inc()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	_, token := s.session.Current()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := s.api.SendInteraction(ctx, token, event); err != nil {
			observability.TelemetryEventsTotal.WithLabelValues("failed").Inc()
			observability.Debug("interaction event not delivered",
				"type", string(event.InteractionType),
				"product_id", event.ProductID,
				"error", err.Error())
			return
		}
		observability.TelemetryEventsTotal.WithLabelValues("sent").Inc()
	}()
}

// View reports a product view.
func (s *Sender) View(productID int64) {
	s.Emit(domain.InteractionEvent{ProductID: productID, InteractionType: domain.InteractionView})
}

// Click reports a product click-through.
func (s *Sender) Click(productID int64) {
	s.Emit(domain.InteractionEvent{ProductID: productID, InteractionType: domain.InteractionClick})
}

// AddToCart reports a cart addition with its quantity.
func (s *Sender) AddToCart(productID int64, quantity int) {
	s.Emit(domain.InteractionEvent{
		ProductID:       productID,
		InteractionType: domain.InteractionAddToCart,
		Metadata:        map[string]any{"quantity": quantity},
	})
}

// UpdateCart reports a cart quantity change.
func (s *Sender) UpdateCart(productID int64, quantity int) {
	s.Emit(domain.InteractionEvent{
		ProductID:       productID,
		InteractionType: domain.InteractionUpdateCart,
		Metadata:        map[string]any{"quantity": quantity},
	})
}

// PseudoPurchase reports a checkout for each purchased product.
func (s *Sender) PseudoPurchase(productID int64, quantity int) {
	s.Emit(domain.InteractionEvent{
		ProductID:       productID,
		InteractionType: domain.InteractionPseudoPurchase,
		Metadata:        map[string]any{"quantity": quantity},
	})
}

// Close waits for in-flight deliveries to finish. Emit becomes a no-op.
func (s *Sender) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

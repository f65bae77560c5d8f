package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/api"
	"shopfront/internal/domain"
)

type mockSession struct {
	mu    sync.Mutex
	user  *domain.User
	token string
}

func (m *mockSession) Current() (*domain.User, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.token
}

func (m *mockSession) set(user *domain.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.mu.Unlock()
}

type mockCartAPI struct {
	calls    atomic.Int64
	get      func(ctx context.Context, token string) (*domain.Cart, error)
	add      func(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error)
	update   func(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error)
	remove   func(ctx context.Context, token string, itemID int64) (*domain.Cart, error)
	checkout func(ctx context.Context, token string) (*api.CheckoutResult, error)
}

func (m *mockCartAPI) GetCart(ctx context.Context, token string) (*domain.Cart, error) {
	m.calls.Add(1)
	if m.get != nil {
		return m.get(ctx, token)
	}
	return &domain.Cart{ID: 1, Status: "active"}, nil
}

func (m *mockCartAPI) AddCartItem(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error) {
	m.calls.Add(1)
	if m.add != nil {
		return m.add(ctx, token, productID, quantity)
	}
	return &domain.Cart{ID: 1, Status: "active", ItemCount: quantity}, nil
}

func (m *mockCartAPI) UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error) {
	m.calls.Add(1)
	if m.update != nil {
		return m.update(ctx, token, itemID, quantity)
	}
	return &domain.Cart{ID: 1, Status: "active"}, nil
}

func (m *mockCartAPI) RemoveCartItem(ctx context.Context, token string, itemID int64) (*domain.Cart, error) {
	m.calls.Add(1)
	if m.remove != nil {
		return m.remove(ctx, token, itemID)
	}
	return &domain.Cart{ID: 1, Status: "active", ItemCount: 0}, nil
}

func (m *mockCartAPI) Checkout(ctx context.Context, token string) (*api.CheckoutResult, error) {
	m.calls.Add(1)
	if m.checkout != nil {
		return m.checkout(ctx, token)
	}
	return &api.CheckoutResult{
		Order: domain.Order{ID: 10, Status: "confirmed", Reference: "ORD-1"},
		Cart:  &domain.Cart{ID: 1, Status: "checked_out"},
	}, nil
}

func authenticated() *mockSession {
	return &mockSession{user: &domain.User{ID: 1, Email: "ana@example.com"}, token: "token-1"}
}

func TestSynchronizer_RefreshReplacesMirrorWholesale(t *testing.T) {
	mock := &mockCartAPI{
		get: func(ctx context.Context, token string) (*domain.Cart, error) {
			assert.Equal(t, "token-1", token)
			return &domain.Cart{ID: 1, ItemCount: 3, Subtotal: 129.97}, nil
		},
	}
	s := NewSynchronizer(mock, authenticated())

	require.NoError(t, s.Refresh(context.Background()))

	cart := s.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, 129.97, cart.Subtotal)
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
}

func TestSynchronizer_RefreshAnonymousClearsWithoutNetwork(t *testing.T) {
	mock := &mockCartAPI{}
	s := NewSynchronizer(mock, &mockSession{})

	require.NoError(t, s.Refresh(context.Background()))

	assert.Nil(t, s.Cart())
	assert.Equal(t, int64(0), mock.calls.Load())
}

func TestSynchronizer_AnonymousMutationRejectedLocally(t *testing.T) {
	mock := &mockCartAPI{}
	s := NewSynchronizer(mock, &mockSession{})

	err := s.AddItem(context.Background(), 42, 1)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	err = s.UpdateItem(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = s.Checkout(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	assert.Equal(t, int64(0), mock.calls.Load(), "anonymous mutations must produce no network traffic")
}

func TestSynchronizer_AddItemAppliesServerResponse(t *testing.T) {
	mock := &mockCartAPI{
		add: func(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error) {
			assert.Equal(t, int64(42), productID)
			assert.Equal(t, 2, quantity)
			return &domain.Cart{ID: 1, ItemCount: 2, Subtotal: 59.98}, nil
		},
	}
	s := NewSynchronizer(mock, authenticated())

	require.NoError(t, s.AddItem(context.Background(), 42, 2))

	cart := s.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, 2, cart.ItemCount)
	assert.False(t, s.Mutating())
}

func TestSynchronizer_UpdateToZeroIsRemoval(t *testing.T) {
	removed := 0
	mock := &mockCartAPI{
		update: func(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error) {
			t.Error("update must not be called for zero or negative quantity")
			return &domain.Cart{}, nil
		},
		remove: func(ctx context.Context, token string, itemID int64) (*domain.Cart, error) {
			removed++
			assert.Equal(t, int64(7), itemID)
			return &domain.Cart{ID: 1, ItemCount: 0}, nil
		},
	}
	s := NewSynchronizer(mock, authenticated())

	require.NoError(t, s.UpdateItem(context.Background(), 7, 0))
	require.NoError(t, s.UpdateItem(context.Background(), 7, -3))
	assert.Equal(t, 2, removed)
}

func TestSynchronizer_RepeatedUpdateIsIdempotent(t *testing.T) {
	// The server derives the cart purely from the requested quantity, so a
	// second identical update must leave the mirror exactly where the first
	// one put it.
	mock := &mockCartAPI{
		update: func(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error) {
			return &domain.Cart{
				ID:        1,
				Status:    "active",
				ItemCount: quantity,
				Subtotal:  float64(quantity) * 549.00,
				Items: []domain.CartItem{{
					ID:        itemID,
					Quantity:  quantity,
					UnitPrice: 549.00,
					LineTotal: float64(quantity) * 549.00,
					Product:   domain.ProductSummary{ID: 42, Name: "Walnut Writing Desk"},
				}},
			}, nil
		},
	}
	s := NewSynchronizer(mock, authenticated())

	require.NoError(t, s.UpdateItem(context.Background(), 7, 4))
	once := s.Cart()
	require.NotNil(t, once)

	require.NoError(t, s.UpdateItem(context.Background(), 7, 4))
	twice := s.Cart()
	require.NotNil(t, twice)

	assert.Equal(t, once.Items[0].Quantity, twice.Items[0].Quantity)
	assert.Equal(t, once.Subtotal, twice.Subtotal)
	assert.Equal(t, once.ItemCount, twice.ItemCount)
	assert.Equal(t, *once, *twice)
	assert.Equal(t, int64(2), mock.calls.Load(), "both updates go to the server")
}

func TestSynchronizer_MutationErrorKeepsPriorMirror(t *testing.T) {
	mock := &mockCartAPI{}
	s := NewSynchronizer(mock, authenticated())
	require.NoError(t, s.Refresh(context.Background()))
	prior := s.Cart()

	mutationErr := &api.APIError{Status: 409, Message: "Insufficient stock available."}
	mock.add = func(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error) {
		return nil, mutationErr
	}

	err := s.AddItem(context.Background(), 42, 100)
	assert.ErrorIs(t, err, mutationErr)
	assert.Same(t, prior, s.Cart(), "failed mutation must not touch the mirror")
	assert.ErrorIs(t, s.Err(), mutationErr)
}

func TestSynchronizer_LogoutDuringLoadDropsLateResponse(t *testing.T) {
	session := authenticated()
	release := make(chan struct{})
	started := make(chan struct{})

	mock := &mockCartAPI{
		get: func(ctx context.Context, token string) (*domain.Cart, error) {
			close(started)
			<-release
			return &domain.Cart{ID: 1, ItemCount: 5}, nil
		},
	}
	s := NewSynchronizer(mock, session)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- s.Refresh(context.Background()) }()
	<-started

	// Logout while the load is in flight.
	session.set(nil, "")
	s.OnSessionChange(context.Background())
	assert.Nil(t, s.Cart())

	close(release)
	require.NoError(t, <-refreshDone)

	assert.Nil(t, s.Cart(), "a late response for a dead identity must not resurrect the cart")
	assert.False(t, s.Loading())
}

func TestSynchronizer_SessionChangeToAuthenticatedRefreshes(t *testing.T) {
	session := &mockSession{}
	mock := &mockCartAPI{
		get: func(ctx context.Context, token string) (*domain.Cart, error) {
			return &domain.Cart{ID: 1, ItemCount: 1}, nil
		},
	}
	s := NewSynchronizer(mock, session)

	s.OnSessionChange(context.Background())
	assert.Nil(t, s.Cart())

	session.set(&domain.User{ID: 1}, "token-1")
	s.OnSessionChange(context.Background())

	cart := s.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, 1, cart.ItemCount)
}

func TestSynchronizer_CheckoutReplacesMirrorWithClosedCart(t *testing.T) {
	s := NewSynchronizer(&mockCartAPI{}, authenticated())

	result, err := s.Checkout(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ORD-1", result.Order.Reference)

	cart := s.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, "checked_out", cart.Status)
}

func TestSynchronizer_CheckoutErrorSurfaced(t *testing.T) {
	checkoutErr := &api.APIError{Status: 400, Message: "Cart is empty."}
	mock := &mockCartAPI{
		checkout: func(ctx context.Context, token string) (*api.CheckoutResult, error) {
			return nil, checkoutErr
		},
	}
	s := NewSynchronizer(mock, authenticated())

	result, err := s.Checkout(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, checkoutErr)
	assert.ErrorIs(t, s.Err(), checkoutErr)
}

func TestSynchronizer_SubscriberNotified(t *testing.T) {
	s := NewSynchronizer(&mockCartAPI{}, authenticated())

	var mu sync.Mutex
	notifications := 0
	s.Subscribe(func() {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	require.NoError(t, s.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, notifications, 2, "loading and applied notifications expected")
}

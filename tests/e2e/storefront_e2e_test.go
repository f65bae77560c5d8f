//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/api"
	"shopfront/internal/domain"
	"shopfront/internal/fetch"
)

func TestCatalogBrowsingFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// Initial load with defaults.
	<-s.listing.Load(ctx)
	state, page, err := s.listing.Snapshot()
	require.Equal(t, fetch.StateLoaded, state)
	require.NoError(t, err)
	assert.Len(t, page.Items, 12)
	assert.NotEmpty(t, page.Categories)

	// Category change resets to page 1.
	<-s.listing.SetPage(ctx, 2)
	<-s.listing.SetCategory(ctx, "Lighting")
	assert.Equal(t, 1, s.listing.Params().Page)

	_, page, _ = s.listing.Snapshot()
	for _, p := range page.Items {
		require.NotNil(t, p.Category)
		assert.Equal(t, "Lighting", *p.Category)
	}

	// Search narrows further; clearing filters restores the full catalog.
	<-s.listing.SetQuery(ctx, "lamp")
	_, page, _ = s.listing.Snapshot()
	assert.NotEmpty(t, page.Items)

	<-s.listing.ResetFilters(ctx)
	_, page, _ = s.listing.Snapshot()
	assert.Len(t, page.Items, 12)
}

func TestCartFollowsIdentity(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.session.Subscribe(func() { s.cart.OnSessionChange(ctx) })
	s.session.Initialize(ctx)

	// Anonymous: no cart, mutations rejected.
	assert.Nil(t, s.cart.Cart())
	assert.ErrorIs(t, s.cart.AddItem(ctx, 1, 1), domain.ErrAuthRequired)

	// Sign up: the subscriber refresh kicks in, then mutate.
	require.NoError(t, s.session.Register(ctx, api.RegisterPayload{
		Email:    "ana@example.com",
		Password: "correct-horse",
	}))
	require.NoError(t, s.cart.AddItem(ctx, 1, 2))
	require.NoError(t, s.cart.AddItem(ctx, 5, 1))

	current := s.cart.Cart()
	require.NotNil(t, current)
	assert.Equal(t, 3, current.ItemCount)
	assert.Equal(t, 2*549.00+89.00, current.Subtotal)

	// Logout empties the mirror immediately.
	s.session.Logout()
	assert.Nil(t, s.cart.Cart())

	// Logging back in restores the server-side cart.
	require.NoError(t, s.session.Login(ctx, "ana@example.com", "correct-horse"))
	current = s.cart.Cart()
	require.NotNil(t, current)
	assert.Equal(t, 3, current.ItemCount)
}

func TestCheckoutRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.session.Register(ctx, api.RegisterPayload{
		Email:    "ana@example.com",
		Password: "correct-horse",
	}))
	require.NoError(t, s.cart.Refresh(ctx))
	require.NoError(t, s.cart.AddItem(ctx, 1, 1))

	result, err := s.cart.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Order.Status)
	assert.Equal(t, 549.00, result.Order.TotalAmount)
	assert.Equal(t, "checked_out", s.cart.Cart().Status)

	// The next refresh sees a fresh empty cart.
	require.NoError(t, s.cart.Refresh(ctx))
	assert.Equal(t, 0, s.cart.Cart().ItemCount)
}

func TestTelemetryReachesBackend(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// Anonymous view first.
	s.events.View(4)

	require.NoError(t, s.session.Register(ctx, api.RegisterPayload{
		Email:    "ana@example.com",
		Password: "correct-horse",
	}))
	s.events.AddToCart(4, 2)

	// Close waits for the in-flight deliveries.
	s.events.Close()

	deadline := time.Now().Add(2 * time.Second)
	var recorded int
	for time.Now().Before(deadline) {
		recorded = len(s.backend.Interactions())
		if recorded == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 2, recorded)

	events := s.backend.Interactions()
	assert.Equal(t, int64(0), events[0].UserID, "pre-login event is anonymous")
	assert.NotZero(t, events[1].UserID, "post-login event carries the identity")
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"shopfront/internal/domain"
)

// CheckoutResult is the checkout payload: an order summary plus the final
// (now closed) cart state.
type CheckoutResult struct {
	Order domain.Order `json:"order"`
	Cart  *domain.Cart `json:"cart"`
}

type cartEnvelope struct {
	Cart *domain.Cart `json:"cart"`
}

// GetCart fetches the canonical cart for the authenticated user.
func (c *Client) GetCart(ctx context.Context, token string) (*domain.Cart, error) {
	raw, err := c.do(ctx, "get_cart", http.MethodGet, "/cart", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// AddCartItem adds a product and returns the full updated cart.
func (c *Client) AddCartItem(ctx context.Context, token string, productID int64, quantity int) (*domain.Cart, error) {
	payload := map[string]any{"product_id": productID, "quantity": quantity}

	raw, err := c.do(ctx, "add_cart_item", http.MethodPost, "/cart/items", nil, token, payload)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// UpdateCartItem changes a line quantity and returns the full updated cart.
func (c *Client) UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*domain.Cart, error) {
	path := fmt.Sprintf("/cart/items/%d", itemID)
	payload := map[string]any{"quantity": quantity}

	raw, err := c.do(ctx, "update_cart_item", http.MethodPatch, path, nil, token, payload)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// RemoveCartItem deletes a line and returns the full updated cart.
func (c *Client) RemoveCartItem(ctx context.Context, token string, itemID int64) (*domain.Cart, error) {
	path := fmt.Sprintf("/cart/items/%d", itemID)

	raw, err := c.do(ctx, "remove_cart_item", http.MethodDelete, path, nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// Checkout closes the cart and returns the order summary with the final cart.
func (c *Client) Checkout(ctx context.Context, token string) (*CheckoutResult, error) {
	raw, err := c.do(ctx, "checkout", http.MethodPost, "/cart/checkout", nil, token, nil)
	if err != nil {
		return nil, err
	}

	var result CheckoutResult
	if err := decode(raw, &result); err != nil {
		return nil, err
	}
	if result.Cart == nil || result.Order.ID == 0 {
		return nil, ErrInvalidPayload
	}
	return &result, nil
}

func decodeCart(raw []byte) (*domain.Cart, error) {
	var envelope cartEnvelope
	if err := decode(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.Cart == nil {
		return nil, fmt.Errorf("%w: missing cart", ErrInvalidPayload)
	}
	return envelope.Cart, nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const cartResponse = `{
	"cart": {
		"id": 10,
		"status": "open",
		"currency": "USD",
		"item_count": 2,
		"subtotal": 79.0,
		"items": [
			{"id": 5, "quantity": 2, "unit_price": 39.5, "line_total": 79.0,
			 "product": {"id": 1, "name": "Desk Lamp", "price": 39.5, "currency": "USD"}}
		]
	}
}`

func TestAddCartItem_RequestAndMirror(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cart/items" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(cartResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	cart, err := client.AddCartItem(context.Background(), "token", 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody["product_id"].(float64) != 1 || gotBody["quantity"].(float64) != 2 {
		t.Errorf("unexpected body: %v", gotBody)
	}
	// The mirror comes verbatim from the response, totals included
	if cart.Subtotal != 79.0 || cart.ItemCount != 2 {
		t.Errorf("unexpected cart totals: subtotal=%v item_count=%v", cart.Subtotal, cart.ItemCount)
	}
	if len(cart.Items) != 1 || cart.Items[0].LineTotal != 79.0 {
		t.Errorf("unexpected cart items: %+v", cart.Items)
	}
}

func TestUpdateCartItem_Path(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Write([]byte(cartResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	if _, err := client.UpdateCartItem(context.Background(), "token", 5, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/cart/items/5" {
		t.Errorf("expected PATCH /cart/items/5, got %s %s", gotMethod, gotPath)
	}
}

func TestRemoveCartItem_Path(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Write([]byte(cartResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	if _, err := client.RemoveCartItem(context.Background(), "token", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/cart/items/5" {
		t.Errorf("expected DELETE /cart/items/5, got %s %s", gotMethod, gotPath)
	}
}

func TestGetCart_MissingCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	_, err := client.GetCart(context.Background(), "token")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestCheckout_ReturnsOrderAndClosedCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/checkout" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"order": {"id": 3, "status": "confirmed", "total_amount": 79.0, "currency": "USD", "reference": "ord-abc"},
			"cart": {"id": 10, "status": "checked_out", "currency": "USD", "item_count": 0, "subtotal": 0, "items": []}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	result, err := client.Checkout(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.Reference != "ord-abc" {
		t.Errorf("unexpected order: %+v", result.Order)
	}
	if result.Cart.Status != "checked_out" {
		t.Errorf("expected closed cart, got %+v", result.Cart)
	}
}

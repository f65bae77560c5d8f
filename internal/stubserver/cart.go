package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopfront/internal/domain"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// cartFor returns the active cart for the user, creating one on first use.
// Callers hold the lock.
func (s *Server) cartFor(userID int64) *serverCart {
	cart, ok := s.carts[userID]
	if !ok || cart.status != "active" {
		cart = &serverCart{id: s.nextCartID, status: "active"}
		s.nextCartID++
		s.carts[userID] = cart
	}
	return cart
}

// renderCart projects the internal cart into the wire shape with all totals
// computed server-side.
func (s *Server) renderCart(cart *serverCart) domain.Cart {
	out := domain.Cart{
		ID:       cart.id,
		Status:   cart.status,
		Currency: "USD",
		Items:    make([]domain.CartItem, 0, len(cart.items)),
	}
	for _, item := range cart.items {
		product := s.findProduct(item.productID)
		if product == nil {
			continue
		}
		line := domain.CartItem{
			ID:        item.id,
			Quantity:  item.quantity,
			UnitPrice: product.Price,
			LineTotal: float64(item.quantity) * product.Price,
			Product: domain.ProductSummary{
				ID:       product.ID,
				Name:     product.Name,
				Price:    product.Price,
				Currency: product.Currency,
				ImageURL: product.ImageURL,
			},
		}
		out.Items = append(out.Items, line)
		out.ItemCount += item.quantity
		out.Subtotal += line.LineTotal
	}
	return out
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID := s.authenticate(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return 0, false
	}
	return userID, true
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	cart := s.renderCart(s.cartFor(userID))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]domain.Cart{"cart": cart})
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Quantity < 1 || req.Quantity > domain.MaxQuantity {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Quantity must be between 1 and %d.", domain.MaxQuantity))
		return
	}

	s.mu.Lock()
	if s.findProduct(req.ProductID) == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}

	cart := s.cartFor(userID)
	merged := false
	for i := range cart.items {
		if cart.items[i].productID == req.ProductID {
			cart.items[i].quantity += req.Quantity
			if cart.items[i].quantity > domain.MaxQuantity {
				cart.items[i].quantity = domain.MaxQuantity
			}
			merged = true
			break
		}
	}
	if !merged {
		cart.items = append(cart.items, serverCartItem{
			id:        s.nextItemID,
			productID: req.ProductID,
			quantity:  req.Quantity,
		})
		s.nextItemID++
	}
	rendered := s.renderCart(cart)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]domain.Cart{"cart": rendered})
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item id.")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Quantity < 1 || req.Quantity > domain.MaxQuantity {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Quantity must be between 1 and %d.", domain.MaxQuantity))
		return
	}

	s.mu.Lock()
	cart := s.cartFor(userID)
	found := false
	for i := range cart.items {
		if cart.items[i].id == itemID {
			cart.items[i].quantity = req.Quantity
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Cart item not found.")
		return
	}
	rendered := s.renderCart(cart)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]domain.Cart{"cart": rendered})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item id.")
		return
	}

	s.mu.Lock()
	cart := s.cartFor(userID)
	found := false
	for i := range cart.items {
		if cart.items[i].id == itemID {
			cart.items = append(cart.items[:i], cart.items[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Cart item not found.")
		return
	}
	rendered := s.renderCart(cart)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]domain.Cart{"cart": rendered})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	cart := s.cartFor(userID)
	if len(cart.items) == 0 {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Cart is empty.")
		return
	}

	cart.status = "checked_out"
	rendered := s.renderCart(cart)

	reference := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	order := domain.Order{
		ID:          s.nextOrderID,
		Status:      "confirmed",
		TotalAmount: rendered.Subtotal,
		Currency:    rendered.Currency,
		Reference:   reference,
		CreatedAt:   nowStamp(),
	}
	s.nextOrderID++
	s.orders = append(s.orders, order)
	delete(s.carts, userID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"order": order,
		"cart":  rendered,
	})
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r) // anonymous is fine

	var event domain.InteractionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if event.InteractionType == "" {
		writeError(w, http.StatusBadRequest, "interaction_type is required.")
		return
	}

	s.mu.Lock()
	s.interactions = append(s.interactions, RecordedInteraction{UserID: userID, Event: event})
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// Interactions returns a copy of everything recorded so far.
func (s *Server) Interactions() []RecordedInteraction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedInteraction(nil), s.interactions...)
}

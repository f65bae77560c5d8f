// Package stubserver is an in-memory implementation of the storefront
// backend contract. It backs the demo binary and the end-to-end tests so the
// client stack can be exercised without a real deployment.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"shopfront/internal/domain"
)

const (
	tokenType      = "bearer"
	tokenLifetime  = int64(3600)
	defaultPageMax = 100
)

type account struct {
	user         domain.User
	passwordHash []byte
}

type serverCart struct {
	id     int64
	status string
	items  []serverCartItem
}

type serverCartItem struct {
	id        int64
	productID int64
	quantity  int
}

// Server holds all backend state in memory, guarded by a single mutex. IDs
// are assigned sequentially the way the real database would.
type Server struct {
	mu sync.Mutex

	products []domain.Product

	accounts map[string]*account // keyed by email
	tokens   map[string]int64    // bearer token -> user id
	carts    map[int64]*serverCart
	orders   []domain.Order

	interactions []RecordedInteraction

	nextUserID  int64
	nextCartID  int64
	nextItemID  int64
	nextOrderID int64
}

// RecordedInteraction pairs a stored event with the identity that sent it.
// UserID zero means anonymous.
type RecordedInteraction struct {
	UserID int64
	Event  domain.InteractionEvent
}

// NewServer creates a stub backend seeded with the sample catalog.
func NewServer() *Server {
	return &Server{
		products:    seedProducts(),
		accounts:    make(map[string]*account),
		tokens:      make(map[string]int64),
		carts:       make(map[int64]*serverCart),
		nextUserID:  1,
		nextCartID:  1,
		nextItemID:  1,
		nextOrderID: 1,
	}
}

// Router builds the full HTTP surface under the /api prefix.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/me", s.handleMe)

		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/products/{id}/related", s.handleRelatedProducts)
		r.Get("/recommendations", s.handleRecommendations)

		r.Get("/cart", s.handleGetCart)
		r.Post("/cart/items", s.handleAddCartItem)
		r.Patch("/cart/items/{id}", s.handleUpdateCartItem)
		r.Delete("/cart/items/{id}", s.handleRemoveCartItem)
		r.Post("/cart/checkout", s.handleCheckout)

		r.Post("/interactions", s.handleInteraction)
	})

	return r
}

// authenticate resolves the bearer token to a user id. Zero means anonymous.
func (s *Server) authenticate(r *http.Request) int64 {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

// issueToken mints a bearer token for the user. Callers hold the lock.
func (s *Server) issueToken(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

func nowStamp() *string {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return &stamp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package stubserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/domain"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := queryInt(query.Get("page"), 1)
	pageSize := queryInt(query.Get("page_size"), 12)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > defaultPageMax {
		pageSize = 12
	}

	q := strings.ToLower(strings.TrimSpace(query.Get("q")))
	category := query.Get("category")
	sortBy := query.Get("sort_by")
	if sortBy != "price" {
		sortBy = "name"
	}
	sortDir := query.Get("sort_dir")
	if sortDir != "desc" {
		sortDir = "asc"
	}

	s.mu.Lock()
	filtered := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && (p.Category == nil || *p.Category != category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		filtered = append(filtered, p)
	}
	categories := s.categories()
	s.mu.Unlock()

	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool
		if sortBy == "price" {
			less = filtered[i].Price < filtered[j].Price
		} else {
			less = filtered[i].Name < filtered[j].Name
		}
		if sortDir == "desc" {
			return !less
		}
		return less
	})

	totalItems := len(filtered)
	totalPages := (totalItems + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > totalItems {
		start = totalItems
	}
	end := start + pageSize
	if end > totalItems {
		end = totalItems
	}

	pagination := domain.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalItems > 0,
		SortBy:     sortBy,
		SortDir:    sortDir,
	}
	if category != "" {
		pagination.Category = &category
	}
	if q != "" {
		original := strings.TrimSpace(query.Get("q"))
		pagination.Query = &original
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": filtered[start:end],
		"filters": map[string]any{
			"available_categories": categories,
		},
		"pagination": pagination,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	s.mu.Lock()
	product := s.findProduct(id)
	s.mu.Unlock()

	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleRelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id.")
		return
	}
	limit := queryInt(r.URL.Query().Get("limit"), 4)

	s.mu.Lock()
	product := s.findProduct(id)
	if product == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}

	// Same category first, newest ids first, never the product itself.
	related := make([]domain.Product, 0, limit)
	for _, p := range s.products {
		if p.ID == id || len(related) >= limit {
			continue
		}
		if sameCategory(p, *product) {
			related = append(related, p)
		}
	}
	for _, p := range s.products {
		if p.ID == id || len(related) >= limit {
			continue
		}
		if !sameCategory(p, *product) {
			related = append(related, p)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"items": related})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	railContext := query.Get("context")
	limit := queryInt(query.Get("limit"), 8)
	productID := int64(queryInt(query.Get("product_id"), 0))

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Product, 0, limit)
	if railContext == "product" && productID > 0 {
		if anchor := s.findProduct(productID); anchor != nil {
			for _, p := range s.products {
				if p.ID != productID && sameCategory(p, *anchor) && len(items) < limit {
					items = append(items, p)
				}
			}
		}
	}
	// Fill the remainder with the most expensive items as a popularity proxy.
	byPrice := append([]domain.Product(nil), s.products...)
	sort.SliceStable(byPrice, func(i, j int) bool { return byPrice[i].Price > byPrice[j].Price })
	for _, p := range byPrice {
		if len(items) >= limit {
			break
		}
		if p.ID == productID || containsProduct(items, p.ID) {
			continue
		}
		items = append(items, p)
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func sameCategory(a, b domain.Product) bool {
	return a.Category != nil && b.Category != nil && *a.Category == *b.Category
}

func containsProduct(items []domain.Product, id int64) bool {
	for _, p := range items {
		if p.ID == id {
			return true
		}
	}
	return false
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

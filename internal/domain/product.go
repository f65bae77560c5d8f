package domain

// Product is a read-only catalog projection, immutable once fetched.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   *string `json:"created_at,omitempty"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
}

// Pagination mirrors the pagination envelope returned by GET /products.
type Pagination struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalItems int     `json:"total_items"`
	TotalPages int     `json:"total_pages"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
	SortBy     string  `json:"sort_by"`
	SortDir    string  `json:"sort_dir"`
	Category   *string `json:"category,omitempty"`
	Query      *string `json:"query,omitempty"`
}

// ProductPage is one page of catalog results together with the category
// filter choices and pagination info the server reported for it.
type ProductPage struct {
	Items      []Product
	Categories []string
	Pagination *Pagination
}

package domain

// MaxQuantity is the server-enforced per-line quantity ceiling.
const MaxQuantity = 99

// ProductSummary is the trimmed product projection embedded in cart items.
type ProductSummary struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL *string `json:"image_url,omitempty"`
}

// CartItem is one cart line. UnitPrice and LineTotal are taken verbatim from
// the server payload and never recomputed client-side.
type CartItem struct {
	ID        int64          `json:"id"`
	Quantity  int            `json:"quantity"`
	UnitPrice float64        `json:"unit_price"`
	LineTotal float64        `json:"line_total"`
	Product   ProductSummary `json:"product"`
}

// Cart is the server-authoritative cart. The client always holds the last
// server response seen, wholesale; Subtotal and ItemCount are never derived
// locally.
type Cart struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	Currency  string     `json:"currency"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
	Items     []CartItem `json:"items"`
	CreatedAt *string    `json:"created_at,omitempty"`
	UpdatedAt *string    `json:"updated_at,omitempty"`
}

// Order is the checkout summary, distinct from the (then closed) cart.
type Order struct {
	ID          int64   `json:"id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference"`
	CreatedAt   *string `json:"created_at,omitempty"`
}

package domain

// InteractionType classifies a behavioral signal.
type InteractionType string

const (
	InteractionView           InteractionType = "view"
	InteractionClick          InteractionType = "click"
	InteractionAddToCart      InteractionType = "add_to_cart"
	InteractionUpdateCart     InteractionType = "update_cart"
	InteractionPseudoPurchase InteractionType = "pseudo_purchase"
)

// InteractionEvent is a fire-and-forget behavioral signal. It is never
// persisted client-side and carries no delivery guarantee.
type InteractionEvent struct {
	ProductID       int64           `json:"product_id"`
	InteractionType InteractionType `json:"interaction_type"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

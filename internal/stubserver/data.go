package stubserver

import "shopfront/internal/domain"

func strPtr(s string) *string { return &s }

// seedProducts returns the sample catalog. Prices and categories are chosen
// so that filtering, sorting, and pagination all have something to bite on.
func seedProducts() []domain.Product {
	products := []domain.Product{
		{ID: 1, Name: "Walnut Writing Desk", Description: "Solid walnut desk with two drawers and cable routing.", Category: strPtr("Desks"), Price: 549.00, Currency: "USD"},
		{ID: 2, Name: "Oak Standing Desk", Description: "Height-adjustable oak desk with memory presets.", Category: strPtr("Desks"), Price: 799.00, Currency: "USD"},
		{ID: 3, Name: "Compact Laptop Desk", Description: "Space-saving desk for small apartments.", Category: strPtr("Desks"), Price: 189.00, Currency: "USD"},
		{ID: 4, Name: "Brass Arc Floor Lamp", Description: "Arched floor lamp with a marble base and brass finish.", Category: strPtr("Lighting"), Price: 239.00, Currency: "USD"},
		{ID: 5, Name: "Ceramic Table Lamp", Description: "Hand-glazed ceramic lamp with a linen shade.", Category: strPtr("Lighting"), Price: 89.00, Currency: "USD"},
		{ID: 6, Name: "Paper Pendant Light", Description: "Rice paper pendant that softens overhead light.", Category: strPtr("Lighting"), Price: 59.00, Currency: "USD"},
		{ID: 7, Name: "Clip-On Desk Light", Description: "Adjustable LED light that clips to any shelf or desk.", Category: strPtr("Lighting"), Price: 34.00, Currency: "USD"},
		{ID: 8, Name: "Ergonomic Task Chair", Description: "Mesh-back chair with lumbar support and adjustable arms.", Category: strPtr("Seating"), Price: 429.00, Currency: "USD"},
		{ID: 9, Name: "Boucle Lounge Chair", Description: "Curved lounge chair upholstered in cream boucle.", Category: strPtr("Seating"), Price: 649.00, Currency: "USD"},
		{ID: 10, Name: "Stackable Dining Chair", Description: "Beech dining chair that stacks four high.", Category: strPtr("Seating"), Price: 119.00, Currency: "USD"},
		{ID: 11, Name: "Modular Shelf Unit", Description: "Six-cube shelf that works upright or sideways.", Category: strPtr("Storage"), Price: 199.00, Currency: "USD"},
		{ID: 12, Name: "Under-Desk Drawer Cart", Description: "Three-drawer steel cart on casters.", Category: strPtr("Storage"), Price: 129.00, Currency: "USD"},
		{ID: 13, Name: "Woven Storage Baskets", Description: "Set of three seagrass baskets with handles.", Category: strPtr("Storage"), Price: 49.00, Currency: "USD"},
		{ID: 14, Name: "Abstract Wall Print", Description: "Framed giclee print, 50 by 70 centimeters.", Category: strPtr("Decor"), Price: 79.00, Currency: "USD"},
		{ID: 15, Name: "Stoneware Vase Set", Description: "Two matte stoneware vases in sand and clay tones.", Category: strPtr("Decor"), Price: 64.00, Currency: "USD"},
		{ID: 16, Name: "Wool Throw Blanket", Description: "Merino wool throw in a herringbone weave.", Category: strPtr("Textiles"), Price: 109.00, Currency: "USD"},
		{ID: 17, Name: "Linen Cushion Covers", Description: "Pair of washed linen covers, 45 by 45 centimeters.", Category: strPtr("Textiles"), Price: 39.00, Currency: "USD"},
		{ID: 18, Name: "Flatweave Area Rug", Description: "Hand-loomed cotton rug, 160 by 230 centimeters.", Category: strPtr("Textiles"), Price: 249.00, Currency: "USD"},
	}

	for i := range products {
		products[i].CreatedAt = strPtr("2026-01-15T09:00:00Z")
		products[i].UpdatedAt = strPtr("2026-01-15T09:00:00Z")
	}
	return products
}

// categories returns the distinct category names in catalog order.
func (s *Server) categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.products {
		if p.Category == nil || seen[*p.Category] {
			continue
		}
		seen[*p.Category] = true
		out = append(out, *p.Category)
	}
	return out
}

// findProduct returns the product with the given id, or nil.
func (s *Server) findProduct(id int64) *domain.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

package domain

// LineItem is one (product, variant, quantity) entry in a cart. Title,
// price, image and variant name are display snapshots captured at add-time;
// the price actually charged is re-validated by the order API at
// order-creation time, never trusted from here.
type LineItem struct {
	ProductID   string  `json:"productId"`
	VariantID   string  `json:"variantId,omitempty"`
	Quantity    int     `json:"quantity"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	VariantName string  `json:"variantName,omitempty"`
}

// Matches reports whether the line identifies the same cart entry. Two
// lines are the same entry iff product and variant IDs are equal, an empty
// variant ID meaning the default variant.
func (i LineItem) Matches(productID, variantID string) bool {
	return i.ProductID == productID && i.VariantID == variantID
}

// ItemCount is the total quantity across all lines (the header badge view).
func ItemCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums price*quantity across all lines.
func Subtotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

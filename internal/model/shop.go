// Package model defines the storefront domain types and error model.
// All money amounts are held internally as int64 cents; conversion to and
// from the backend's decimal wire format happens at the API boundary.
package model

// Product is a catalog entry as served by the backend search endpoint.
// Read-only; keyed by ID.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"` // cents
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
}

// CartLine is one aggregated cart entry per distinct product id.
// Derived from a Product on add; carries no identity beyond the product id.
type CartLine struct {
	ProductID int64  `json:"id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"` // unit price, cents
	Quantity  int    `json:"quantity"`
}

// Total returns price × quantity for this line, in cents.
func (l CartLine) Total() int64 {
	return l.Price * int64(l.Quantity)
}

// Order is the write-once payload submitted to the backend at checkout.
// Constructed from the cart lines and the configured customer identity,
// never mutated after submission.
type Order struct {
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Items           []CartLine
	Subtotal        int64 // cents
	Notes           string
}

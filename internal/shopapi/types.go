package shopapi

import "storefront/internal/model"

// Wire types for the commerce backend API. Prices cross the wire as JSON
// numbers in dollars; the transforms below convert to and from cents.

// wireProduct is a catalog entry as returned by GET /api/products.
type wireProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}

// wireOrder is the body of POST /api/orders.
type wireOrder struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerAddress string          `json:"customer_address"`
	Items           []wireOrderItem `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Notes           string          `json:"notes"`
}

// wireOrderItem mirrors a cart line: one entry per distinct product id.
type wireOrderItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// wireError is a best-effort decode of backend error bodies.
// Backends vary between {"error": "..."} and {"message": "..."}.
type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e wireError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// toModelProduct converts a wire product to the internal representation.
func toModelProduct(w wireProduct) model.Product {
	return model.Product{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Price:       model.CentsFromFloat(w.Price),
		ImageURL:    w.ImageURL,
		Category:    w.Category,
	}
}

// orderToWire converts an internal order to the backend payload.
func orderToWire(o *model.Order) wireOrder {
	items := make([]wireOrderItem, len(o.Items))
	for i, line := range o.Items {
		items[i] = wireOrderItem{
			ID:       line.ProductID,
			Title:    line.Title,
			Price:    model.CentsToDecimal(line.Price),
			Quantity: line.Quantity,
		}
	}
	return wireOrder{
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerAddress: o.CustomerAddress,
		Items:           items,
		Subtotal:        model.CentsToDecimal(o.Subtotal),
		Notes:           o.Notes,
	}
}

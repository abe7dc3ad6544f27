// Package cart implements the in-memory shopping cart.
//
// A cart is a list of lines, one per distinct product id. Adding a product
// that is already in the cart increments its quantity; there is no removal
// or decrement operation. The subtotal is recomputed from the lines on
// every call, never cached.
package cart

import "storefront/internal/model"

// Cart holds the session's line items. The zero value is an empty cart.
// Cart is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines []model.CartLine
}

// Add merges a product into the cart: if a line for product.ID exists its
// quantity is incremented by 1, otherwise a new line with quantity 1 is
// appended. The line captures the product's title and price at add time.
func (c *Cart) Add(p model.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, model.CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Quantity:  1,
	})
}

// Subtotal returns Σ price×quantity over all lines, in cents.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Units returns the total number of units across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Clear removes all lines. Called after a successful order submission.
func (c *Cart) Clear() {
	c.lines = nil
}

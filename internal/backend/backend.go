// Package backend defines the contract with the remote commerce backend.
// The storefront holds no business logic of its own; pricing, inventory,
// and order processing all live behind this interface.
package backend

import (
	"context"

	"storefront/internal/model"
)

// Backend abstracts the two operations the storefront needs from the
// commerce API. The HTTP implementation lives in internal/shopapi; tests
// use the Mock in this package.
type Backend interface {
	// SearchProducts fetches the catalog matching the optional free-text
	// query and category filter. Both parameters may be empty. There is no
	// retry, caching, or pagination; every search hits the backend fresh.
	SearchProducts(ctx context.Context, query, category string) ([]model.Product, error)

	// SubmitOrder posts a write-once order payload. A non-2xx status or a
	// network error is returned as an upstream error; the caller keeps its
	// cart intact so the shopper can retry.
	SubmitOrder(ctx context.Context, order *model.Order) (*OrderReceipt, error)
}

// OrderReceipt is the backend's acknowledgement of an accepted order.
// Backends are not required to return a body; all fields are best-effort.
type OrderReceipt struct {
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

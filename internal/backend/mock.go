package backend

import (
	"context"

	"storefront/internal/model"
)

// Mock implements Backend for testing.
// Each method can be configured via function fields.
type Mock struct {
	SearchProductsFunc func(ctx context.Context, query, category string) ([]model.Product, error)
	SubmitOrderFunc    func(ctx context.Context, order *model.Order) (*OrderReceipt, error)
}

// SearchProducts calls the configured SearchProductsFunc or returns an
// empty catalog.
func (m *Mock) SearchProducts(ctx context.Context, query, category string) ([]model.Product, error) {
	if m.SearchProductsFunc != nil {
		return m.SearchProductsFunc(ctx, query, category)
	}
	return []model.Product{}, nil
}

// SubmitOrder calls the configured SubmitOrderFunc or returns an error.
func (m *Mock) SubmitOrder(ctx context.Context, order *model.Order) (*OrderReceipt, error) {
	if m.SubmitOrderFunc != nil {
		return m.SubmitOrderFunc(ctx, order)
	}
	return nil, model.NewInternalError(nil)
}

// Verify Mock implements Backend interface at compile time.
var _ Backend = (*Mock)(nil)

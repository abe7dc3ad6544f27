package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/session"
)

// The JSON API mirrors the page flow for non-browser clients. Every
// response includes the session token so a stateless client like shopctl
// can carry it between invocations.

// searchResponse is the body of GET /api/products.
type searchResponse struct {
	SessionToken string          `json:"session_token"`
	Products     []model.Product `json:"products"`
}

// handleSearchProducts proxies a catalog search and records the result as
// the session's displayed catalog.
func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)

	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	products, err := h.backend.SearchProducts(r.Context(), query, category)
	if err != nil {
		sess.CatalogFailed(query, category, session.Errorf("Could not load products. Please try again."))
		h.writeError(w, err)
		return
	}

	sess.SetCatalog(products, query, category)
	h.writeJSON(w, http.StatusOK, searchResponse{
		SessionToken: sess.Token(),
		Products:     products,
	})
}

// handleGetCart returns the session's full view: catalog, cart lines, and
// the recomputed subtotal.
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)
	h.writeJSON(w, http.StatusOK, sess.View())
}

// addItemRequest is the body of POST /api/cart/items.
type addItemRequest struct {
	ProductID int64 `json:"id"`
}

// handleAddToCart adds one unit of a product from the session's displayed
// catalog to the cart.
func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	product, ok := sess.FindProduct(req.ProductID)
	if !ok {
		h.writeError(w, model.NewNotFoundError("product"))
		return
	}

	sess.AddToCart(product)
	h.writeJSON(w, http.StatusOK, sess.View())
}

// checkoutResponse is the body of POST /api/checkout.
type checkoutResponse struct {
	SessionToken string         `json:"session_token"`
	OrderID      string         `json:"order_id,omitempty"`
	Status       session.Status `json:"status"`
	Subtotal     int64          `json:"subtotal"`
}

// handleCheckout submits the session's cart as an order. The cart is
// cleared only when the backend accepts the order; any failure leaves it
// intact and surfaces as an error response.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)

	res := h.submitter.Submit(r.Context(), sess)
	if res.Err != nil {
		h.writeError(w, res.Err)
		return
	}

	h.writeJSON(w, http.StatusCreated, checkoutResponse{
		SessionToken: sess.Token(),
		OrderID:      res.OrderID,
		Status:       res.Status,
		Subtotal:     sess.View().Subtotal,
	})
}

package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/session"
)

// pageData is passed to the storefront template.
type pageData struct {
	ShopName string
	View     session.View
}

// handleStorefront renders the shop page. A request that carries search
// params, or a session that has never loaded a catalog, triggers a backend
// fetch first. When the fetch fails the previously displayed list stays on
// screen and the status line reports the failure.
func (h *Handler) handleStorefront(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)

	params := r.URL.Query()
	searching := params.Has("q") || params.Has("category")

	if searching || !sess.CatalogLoaded() {
		query := params.Get("q")
		category := params.Get("category")

		products, err := h.backend.SearchProducts(r.Context(), query, category)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "catalog fetch failed",
				"query", query, "category", category, "error", err)
			sess.CatalogFailed(query, category, session.Errorf("Could not load products. Please try again."))
		} else {
			sess.SetCatalog(products, query, category)
		}
	}

	h.renderPage(w, sess)
}

// handleAddToCartForm handles the add-to-cart form post. The product must
// be in the currently displayed catalog; its id arrives as a form field.
func (h *Handler) handleAddToCartForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)

	id, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil {
		sess.SetStatus(session.Errorf("Unknown product."))
		h.redirectHome(w, r)
		return
	}

	product, ok := sess.FindProduct(id)
	if !ok {
		sess.SetStatus(session.Errorf("Unknown product."))
		h.redirectHome(w, r)
		return
	}

	sess.AddToCart(product)
	h.redirectHome(w, r)
}

// handleCheckoutForm handles the checkout form post. The submitter applies
// the outcome to the session, so all this handler does is redirect back to
// the page where the status line shows the result.
func (h *Handler) handleCheckoutForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)
	h.submitter.Submit(r.Context(), sess)
	h.redirectHome(w, r)
}

// redirectHome sends the browser back to the storefront page without search
// params, so the redirect target renders from session state instead of
// triggering a fresh catalog fetch.
func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) renderPage(w http.ResponseWriter, sess *session.Session) {
	data := pageData{
		ShopName: h.shopName,
		View:     sess.View(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "storefront.html.tmpl", data); err != nil {
		h.logger.Error("template render failed", "error", err)
	}
}

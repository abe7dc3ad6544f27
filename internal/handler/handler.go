// Package handler provides the storefront's HTTP surface: the rendered
// shop page, the JSON API used by shopctl, and the MCP endpoint.
package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"storefront/internal/backend"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	backend   backend.Backend
	sessions  *session.Store
	submitter *checkout.Submitter
	shopName  string
	logger    *slog.Logger
	tmpl      *template.Template
}

// New creates a Handler. Panics if the embedded templates fail to parse;
// that is a build defect, not a runtime condition.
func New(be backend.Backend, sessions *session.Store, submitter *checkout.Submitter, shopName string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl := template.Must(template.New("storefront").
		Funcs(template.FuncMap{"money": model.FormatCents}).
		ParseFS(templateFS, "templates/*.tmpl"))

	return &Handler{
		backend:   be,
		sessions:  sessions,
		submitter: submitter,
		shopName:  shopName,
		logger:    logger,
		tmpl:      tmpl,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Rendered storefront page and its form posts
	mux.HandleFunc("GET /{$}", h.handleStorefront)
	mux.HandleFunc("POST /cart/items", h.handleAddToCartForm)
	mux.HandleFunc("POST /checkout", h.handleCheckoutForm)

	// JSON API used by shopctl and other non-browser clients
	mux.HandleFunc("GET /api/products", h.handleSearchProducts)
	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddToCart)
	mux.HandleFunc("POST /api/checkout", h.handleCheckout)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// sessionFor returns the request's session. The middleware always puts one
// on the context; a fresh session is created here only for handlers invoked
// outside the middleware chain (tests).
func (h *Handler) sessionFor(r *http.Request) *session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return h.sessions.GetOrCreate("")
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	// Limit request body size to prevent DoS
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// handleHealth reports liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MCP transport handler for the storefront using the official MCP Go SDK.
// Exposes the shopping flow as MCP tools so agents can browse and order.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront/internal/model"
	"storefront/internal/session"
)

// === MCP Tool Input/Output Types ===
// Tools are keyed by cart_token, the same opaque token the HTTP API calls
// a session token. search_products mints one when none is supplied; the
// other tools require it.

// SearchProductsInput is the input schema for the search_products tool.
type SearchProductsInput struct {
	CartToken string `json:"cart_token,omitempty" jsonschema:"cart token from a previous call, omit to start a new cart"`
	Query     string `json:"query,omitempty" jsonschema:"free-text search query"`
	Category  string `json:"category,omitempty" jsonschema:"category filter"`
}

// SearchProductsOutput is the result of the search_products tool.
type SearchProductsOutput struct {
	CartToken string          `json:"cart_token"`
	Products  []model.Product `json:"products"`
}

// AddToCartInput is the input schema for the add_to_cart tool.
type AddToCartInput struct {
	CartToken string `json:"cart_token" jsonschema:"cart token,required"`
	ProductID int64  `json:"product_id" jsonschema:"id of a product returned by search_products,required"`
}

// ViewCartInput is the input schema for the view_cart tool.
type ViewCartInput struct {
	CartToken string `json:"cart_token" jsonschema:"cart token,required"`
}

// CartOutput is the cart state returned by add_to_cart and view_cart.
type CartOutput struct {
	CartToken string           `json:"cart_token"`
	Lines     []model.CartLine `json:"lines"`
	Subtotal  int64            `json:"subtotal"`
	Display   string           `json:"display_subtotal"`
}

// SubmitOrderInput is the input schema for the submit_order tool.
type SubmitOrderInput struct {
	CartToken string `json:"cart_token" jsonschema:"cart token,required"`
}

// SubmitOrderOutput is the result of the submit_order tool.
type SubmitOrderOutput struct {
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

// NewMCPServer creates an MCP server with the shopping tools registered.
// The server exposes the same operations as the JSON API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront shopping tools. Search the catalog, build a cart, " +
				"and submit an order. Keep the cart_token from search_products and pass " +
				"it to the other tools.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search the product catalog. Returns products and a cart_token for follow-up calls.",
	}, h.mcpSearchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add one unit of a product to the cart. Adding the same product again increments its quantity.",
	}, h.mcpAddToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_cart",
		Description: "View the cart's line items and subtotal.",
	}, h.mcpViewCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_order",
		Description: "Submit the cart as an order. The cart is emptied only if the order is accepted.",
	}, h.mcpSubmitOrder)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpSearchProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchProductsInput,
) (*mcp.CallToolResult, *SearchProductsOutput, error) {
	sess := h.sessions.GetOrCreate(input.CartToken)

	products, err := h.backend.SearchProducts(ctx, input.Query, input.Category)
	if err != nil {
		sess.CatalogFailed(input.Query, input.Category,
			session.Errorf("Could not load products. Please try again."))
		return nil, nil, h.mcpError(err)
	}

	sess.SetCatalog(products, input.Query, input.Category)
	return nil, &SearchProductsOutput{
		CartToken: sess.Token(),
		Products:  products,
	}, nil
}

func (h *Handler) mcpAddToCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AddToCartInput,
) (*mcp.CallToolResult, *CartOutput, error) {
	sess, err := h.mcpSession(input.CartToken)
	if err != nil {
		return nil, nil, err
	}

	product, ok := sess.FindProduct(input.ProductID)
	if !ok {
		return nil, nil, h.mcpError(model.NewNotFoundError("product"))
	}

	sess.AddToCart(product)
	return nil, cartOutput(sess), nil
}

func (h *Handler) mcpViewCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ViewCartInput,
) (*mcp.CallToolResult, *CartOutput, error) {
	sess, err := h.mcpSession(input.CartToken)
	if err != nil {
		return nil, nil, err
	}

	return nil, cartOutput(sess), nil
}

func (h *Handler) mcpSubmitOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SubmitOrderInput,
) (*mcp.CallToolResult, *SubmitOrderOutput, error) {
	sess, err := h.mcpSession(input.CartToken)
	if err != nil {
		return nil, nil, err
	}

	res := h.submitter.Submit(ctx, sess)
	if res.Err != nil {
		return nil, nil, h.mcpError(res.Err)
	}

	return nil, &SubmitOrderOutput{
		OrderID: res.OrderID,
		Message: res.Status.Text,
	}, nil
}

// mcpSession resolves a cart token. Unlike the HTTP path there is no
// cookie fallback: an unknown token is an error, not a fresh cart.
func (h *Handler) mcpSession(token string) (*session.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("cart_token is required")
	}
	sess, ok := h.sessions.Get(token)
	if !ok {
		return nil, h.mcpError(model.NewNotFoundError("cart"))
	}
	return sess, nil
}

func cartOutput(sess *session.Session) *CartOutput {
	v := sess.View()
	return &CartOutput{
		CartToken: v.Token,
		Lines:     v.Lines,
		Subtotal:  v.Subtotal,
		Display:   model.FormatCents(v.Subtotal),
	}
}

// mcpError converts internal errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}

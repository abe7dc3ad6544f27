// Package shopapi implements the backend.Backend contract against the
// commerce backend's HTTP API.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"storefront/internal/backend"
	"storefront/internal/model"
	"storefront/internal/transport"
)

const (
	productsPath = "/api/products"
	ordersPath   = "/api/orders"
)

// userAgent identifies this client to the backend.
// Some CDN/WAF setups rate-limit requests without a User-Agent.
const userAgent = "Storefront/1.0"

// minAPIVersion is the oldest backend API release this client is written
// against. The backend advertises its version in the API-Version response
// header; older or different-major backends get a logged warning, nothing
// more — requests are not rejected on version grounds.
const minAPIVersion = "v1.0.0"

// Config holds backend client configuration.
type Config struct {
	// BackendURL is the base URL of the commerce backend.
	BackendURL string

	// BrowserTLS routes requests through the Chrome-fingerprint TLS
	// transport. See internal/transport for rationale.
	BrowserTLS bool

	// Logger receives version-mismatch warnings. Optional; defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client implements backend.Backend over HTTP.
type Client struct {
	httpClient *http.Client
	backendURL string
	logger     *slog.Logger
}

// New creates a backend client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if cfg.BrowserTLS {
		httpClient.Transport = transport.NewChromeTransport(30 * time.Second)
	}

	return &Client{
		httpClient: httpClient,
		backendURL: strings.TrimSuffix(cfg.BackendURL, "/"),
		logger:     logger,
	}, nil
}

// SearchProducts fetches the catalog from GET /api/products.
// Empty query parameters are omitted from the request URL.
func (c *Client) SearchProducts(ctx context.Context, query, category string) ([]model.Product, error) {
	reqURL := c.backendURL + productsPath

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if category != "" {
		params.Set("category", category)
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating products request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError("backend", err)
	}
	defer resp.Body.Close()

	c.checkAPIVersion(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading products response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.parseErrorResponse(resp.StatusCode, body)
	}

	var wire []wireProduct
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, model.NewUpstreamError("backend",
			fmt.Errorf("parsing products response: %w", err))
	}

	products := make([]model.Product, len(wire))
	for i, w := range wire {
		products[i] = toModelProduct(w)
	}
	return products, nil
}

// SubmitOrder posts the order to POST /api/orders.
// Each attempt carries a fresh Idempotency-Key so a backend that honors the
// header can reject transport-level duplicates of the same attempt.
func (c *Client) SubmitOrder(ctx context.Context, order *model.Order) (*backend.OrderReceipt, error) {
	if order == nil || len(order.Items) == 0 {
		return nil, model.NewValidationError("order", "at least one item required")
	}

	payload, err := json.Marshal(orderToWire(order))
	if err != nil {
		return nil, fmt.Errorf("marshaling order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.backendURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError("backend", err)
	}
	defer resp.Body.Close()

	c.checkAPIVersion(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading order response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.parseErrorResponse(resp.StatusCode, body)
	}

	// The backend is not required to return a body; any 2xx is an
	// accepted order. Decode a receipt if one is present.
	receipt := &backend.OrderReceipt{}
	if len(body) > 0 {
		json.Unmarshal(body, receipt) // Best effort parse
	}
	return receipt, nil
}

// setHeaders sets the standard headers for backend requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// checkAPIVersion compares the backend's advertised API-Version header
// against minAPIVersion and logs a warning on incompatibility. The header
// is optional and many backends omit it.
func (c *Client) checkAPIVersion(resp *http.Response) {
	v := strings.TrimSpace(resp.Header.Get("API-Version"))
	if v == "" {
		return
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		c.logger.Debug("backend sent unparseable API-Version", slog.String("version", v))
		return
	}
	if semver.Major(v) != semver.Major(minAPIVersion) || semver.Compare(v, minAPIVersion) < 0 {
		c.logger.Warn("backend API version may be incompatible",
			slog.String("backend_version", v),
			slog.String("min_supported", minAPIVersion),
		)
	}
}

// parseErrorResponse converts a backend error reply to an APIError.
func (c *Client) parseErrorResponse(statusCode int, body []byte) error {
	var werr wireError
	json.Unmarshal(body, &werr) // Best effort parse

	switch statusCode {
	case 404:
		return model.NewNotFoundError("resource")
	case 400:
		msg := werr.text()
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	case 429:
		return model.NewRateLimitError("backend")
	default:
		return model.NewUpstreamError("backend",
			fmt.Errorf("status %d: %s", statusCode, werr.text()))
	}
}

// Verify Client implements Backend interface at compile time.
var _ backend.Backend = (*Client)(nil)

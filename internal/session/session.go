// Package session holds per-shopper storefront state.
//
// A session owns the cart, the last successfully fetched catalog, and the
// current status line. Nothing is persisted: state lives in memory for the
// lifetime of the browser session and is swept after an idle TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"
)

// StatusKind classifies the storefront status line.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusInfo    StatusKind = "info"
)

// Status is the single human-readable status line shown in the UI.
// All error handling reduces to one of these; errors never propagate
// past the handler that produced them.
type Status struct {
	Kind StatusKind `json:"kind,omitempty"`
	Text string     `json:"text,omitempty"`
}

// Errorf builds an error status.
func Errorf(text string) Status { return Status{Kind: StatusError, Text: text} }

// Successf builds a success status.
func Successf(text string) Status { return Status{Kind: StatusSuccess, Text: text} }

// Session is the state for one shopper. All exported methods are safe for
// concurrent use; the browser event loop of the original design becomes a
// per-session mutex here.
type Session struct {
	mu               sync.Mutex
	token            string
	cart             cart.Cart
	products         []model.Product
	query            string
	category         string
	status           Status
	loaded           bool
	checkoutInFlight bool
	lastSeen         time.Time
}

// View is an immutable snapshot of session state for rendering.
type View struct {
	Token            string           `json:"session_token"`
	Products         []model.Product  `json:"products"`
	Query            string           `json:"query,omitempty"`
	Category         string           `json:"category,omitempty"`
	Lines            []model.CartLine `json:"lines"`
	Subtotal         int64            `json:"subtotal"`
	Units            int              `json:"units"`
	Status           Status           `json:"status"`
	CheckoutInFlight bool             `json:"checkout_in_flight,omitempty"`
}

// Token returns the session's opaque identifier.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// View returns a snapshot of the session for rendering.
// The cart subtotal is recomputed here on every call.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	products := make([]model.Product, len(s.products))
	copy(products, s.products)

	return View{
		Token:            s.token,
		Products:         products,
		Query:            s.query,
		Category:         s.category,
		Lines:            s.cart.Lines(),
		Subtotal:         s.cart.Subtotal(),
		Units:            s.cart.Units(),
		Status:           s.status,
		CheckoutInFlight: s.checkoutInFlight,
	}
}

// SetCatalog replaces the displayed product list after a successful fetch
// and clears any stale status line.
func (s *Session) SetCatalog(products []model.Product, query, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.products = products
	s.query = query
	s.category = category
	s.loaded = true
	s.status = Status{}
}

// CatalogLoaded reports whether at least one catalog fetch has succeeded.
func (s *Session) CatalogLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// CatalogFailed records a failed fetch: the previously displayed list is
// kept, the attempted filters are remembered for the search form, and the
// status line is set.
func (s *Session) CatalogFailed(query, category string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.query = query
	s.category = category
	s.status = status
}

// FindProduct looks up a product by id in the displayed catalog.
// Cart lines are derived from catalog products, so only a currently
// displayed product can be added.
func (s *Session) FindProduct(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// AddToCart merges the product into the cart and sets an info status.
func (s *Session) AddToCart(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.cart.Add(p)
	s.status = Status{Kind: StatusInfo, Text: p.Title + " added to cart"}
}

// SetStatus replaces the status line.
func (s *Session) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// BeginCheckout marks the session as having a checkout in flight and
// returns a snapshot of the cart for order construction. Returns an error
// if the cart is empty or another checkout is already in flight — a double
// click must not submit two orders.
func (s *Session) BeginCheckout() ([]model.CartLine, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.checkoutInFlight {
		return nil, 0, model.NewCheckoutBusyError()
	}
	if s.cart.Empty() {
		return nil, 0, model.NewValidationError("cart", "cart is empty")
	}

	s.checkoutInFlight = true
	return s.cart.Lines(), s.cart.Subtotal(), nil
}

// FinishCheckout clears the in-flight flag and applies the outcome: on
// success the cart is emptied, on failure it is left intact for retry.
func (s *Session) FinishCheckout(success bool, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.checkoutInFlight = false
	if success {
		s.cart.Clear()
	}
	s.status = status
}

// === Store ===

// Store maps session tokens to sessions. Idle sessions are swept lazily
// on access once they exceed the TTL.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	lastSweep time.Time
}

// DefaultTTL is how long an idle session survives between requests.
const DefaultTTL = 2 * time.Hour

// NewStore creates a session store. ttl <= 0 uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// NewToken creates a random session token.
// Tokens are opaque; there is nothing to guess or decode in them.
func NewToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Get returns the session for token, if it exists.
func (st *Store) Get(token string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	return s, ok
}

// GetOrCreate returns the session for token, creating a fresh session with
// a new token when token is empty or unknown.
func (st *Store) GetOrCreate(token string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepLocked()

	if token != "" {
		if s, ok := st.sessions[token]; ok {
			return s
		}
	}

	s := &Session{token: NewToken(), lastSeen: time.Now()}
	st.sessions[s.token] = s
	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweepLocked evicts idle sessions. Runs at most every ttl/4 so hot paths
// don't pay the scan on every request. Caller must hold st.mu.
func (st *Store) sweepLocked() {
	now := time.Now()
	if now.Sub(st.lastSweep) < st.ttl/4 {
		return
	}
	st.lastSweep = now

	for token, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		inFlight := s.checkoutInFlight
		s.mu.Unlock()
		if idle > st.ttl && !inFlight {
			delete(st.sessions, token)
		}
	}
}

// === Context plumbing ===

type ctxKey struct{}

// NewContext returns ctx carrying the session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session placed by the middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

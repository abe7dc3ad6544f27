package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"
)

var catalog = []model.Product{
	{ID: 1, Title: "Mug", Price: 999, Category: "kitchen"},
	{ID: 2, Title: "Plate", Price: 500, Category: "kitchen"},
}

func newTestSession() *Session {
	return &Session{token: NewToken(), lastSeen: time.Now()}
}

func TestSetCatalogReplacesListAndClearsStatus(t *testing.T) {
	s := newTestSession()
	s.SetStatus(Errorf("old failure"))

	s.SetCatalog(catalog, "mug", "kitchen")

	v := s.View()
	if len(v.Products) != 2 {
		t.Fatalf("len(Products) = %d, want 2", len(v.Products))
	}
	if v.Query != "mug" || v.Category != "kitchen" {
		t.Errorf("filters = (%q, %q), want (mug, kitchen)", v.Query, v.Category)
	}
	if v.Status.Kind != StatusNone {
		t.Errorf("Status = %+v, want cleared", v.Status)
	}
}

func TestCatalogFailedKeepsPreviousList(t *testing.T) {
	s := newTestSession()
	s.SetCatalog(catalog, "", "")

	s.CatalogFailed("gadgets", "", Errorf("could not load products"))

	v := s.View()
	if len(v.Products) != 2 {
		t.Errorf("len(Products) = %d after failed fetch, want 2", len(v.Products))
	}
	if v.Query != "gadgets" {
		t.Errorf("Query = %q, want gadgets", v.Query)
	}
	if v.Status.Kind != StatusError {
		t.Errorf("Status.Kind = %q, want error", v.Status.Kind)
	}
}

func TestFindProduct(t *testing.T) {
	s := newTestSession()
	s.SetCatalog(catalog, "", "")

	p, ok := s.FindProduct(2)
	if !ok || p.Title != "Plate" {
		t.Errorf("FindProduct(2) = (%+v, %v), want Plate", p, ok)
	}
	if _, ok := s.FindProduct(99); ok {
		t.Error("FindProduct(99) found a product, want miss")
	}
}

func TestAddToCart(t *testing.T) {
	s := newTestSession()
	s.SetCatalog(catalog, "", "")
	s.AddToCart(catalog[0])
	s.AddToCart(catalog[0])

	v := s.View()
	if len(v.Lines) != 1 || v.Lines[0].Quantity != 2 {
		t.Errorf("Lines = %+v, want one line with quantity 2", v.Lines)
	}
	if v.Subtotal != 1998 {
		t.Errorf("Subtotal = %d, want 1998", v.Subtotal)
	}
	if v.Status.Kind != StatusInfo {
		t.Errorf("Status.Kind = %q, want info", v.Status.Kind)
	}
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	s := newTestSession()

	_, _, err := s.BeginCheckout()
	if err == nil {
		t.Fatal("BeginCheckout() on empty cart succeeded, want error")
	}
	if !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("errors.Is(%v, ErrInvalidRequest) = false", err)
	}
}

func TestBeginCheckoutGuardsDoubleSubmit(t *testing.T) {
	s := newTestSession()
	s.AddToCart(catalog[0])

	lines, subtotal, err := s.BeginCheckout()
	if err != nil {
		t.Fatalf("BeginCheckout() error: %v", err)
	}
	if len(lines) != 1 || subtotal != 999 {
		t.Errorf("snapshot = (%+v, %d), want one line, 999", lines, subtotal)
	}

	// Second click while the first submit is still running
	if _, _, err := s.BeginCheckout(); !errors.Is(err, model.ErrCheckoutBusy) {
		t.Errorf("second BeginCheckout() error = %v, want ErrCheckoutBusy", err)
	}

	// After the first attempt resolves, checkout is available again
	s.FinishCheckout(false, Errorf("backend down"))
	if _, _, err := s.BeginCheckout(); err != nil {
		t.Errorf("BeginCheckout() after FinishCheckout error: %v", err)
	}
}

func TestFinishCheckoutSuccessClearsCart(t *testing.T) {
	s := newTestSession()
	s.AddToCart(catalog[0])
	if _, _, err := s.BeginCheckout(); err != nil {
		t.Fatalf("BeginCheckout() error: %v", err)
	}

	s.FinishCheckout(true, Successf("Order placed!"))

	v := s.View()
	if len(v.Lines) != 0 || v.Subtotal != 0 {
		t.Errorf("cart = %+v subtotal %d after success, want empty", v.Lines, v.Subtotal)
	}
	if v.Status.Kind != StatusSuccess {
		t.Errorf("Status.Kind = %q, want success", v.Status.Kind)
	}
}

func TestFinishCheckoutFailureKeepsCart(t *testing.T) {
	s := newTestSession()
	s.AddToCart(catalog[0])
	s.AddToCart(catalog[1])
	if _, _, err := s.BeginCheckout(); err != nil {
		t.Fatalf("BeginCheckout() error: %v", err)
	}

	s.FinishCheckout(false, Errorf("order submission failed"))

	v := s.View()
	if len(v.Lines) != 2 {
		t.Errorf("len(Lines) = %d after failure, want 2", len(v.Lines))
	}
	if v.Status.Kind != StatusError {
		t.Errorf("Status.Kind = %q, want error", v.Status.Kind)
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	st := NewStore(time.Hour)

	s1 := st.GetOrCreate("")
	if s1.Token() == "" {
		t.Fatal("new session has empty token")
	}

	s2 := st.GetOrCreate(s1.Token())
	if s1 != s2 {
		t.Error("GetOrCreate with known token returned a different session")
	}

	s3 := st.GetOrCreate("deadbeef")
	if s3 == s1 {
		t.Error("unknown token resolved to an existing session")
	}
	if s3.Token() == "deadbeef" {
		t.Error("unknown token was adopted instead of replaced")
	}

	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestStoreGet(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.GetOrCreate("")

	if got, ok := st.Get(s.Token()); !ok || got != s {
		t.Errorf("Get(%s) = (%v, %v), want session", s.Token(), got, ok)
	}
	if _, ok := st.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}

func TestStoreSweepsIdleSessions(t *testing.T) {
	st := NewStore(10 * time.Millisecond)
	stale := st.GetOrCreate("")

	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Minute)
	stale.mu.Unlock()

	st.mu.Lock()
	st.lastSweep = time.Now().Add(-time.Minute)
	st.mu.Unlock()

	st.GetOrCreate("")

	if _, ok := st.Get(stale.Token()); ok {
		t.Error("idle session survived the sweep")
	}
}

func TestStoreSweepSparesInFlightCheckout(t *testing.T) {
	st := NewStore(10 * time.Millisecond)
	busy := st.GetOrCreate("")
	busy.AddToCart(catalog[0])
	if _, _, err := busy.BeginCheckout(); err != nil {
		t.Fatalf("BeginCheckout() error: %v", err)
	}

	busy.mu.Lock()
	busy.lastSeen = time.Now().Add(-time.Minute)
	busy.mu.Unlock()

	st.mu.Lock()
	st.lastSweep = time.Now().Add(-time.Minute)
	st.mu.Unlock()

	st.GetOrCreate("")

	if _, ok := st.Get(busy.Token()); !ok {
		t.Error("session with in-flight checkout was swept")
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		tok := NewToken()
		if len(tok) != 32 {
			t.Fatalf("len(token) = %d, want 32", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate token generated")
		}
		seen[tok] = true
	}
}

func TestContextRoundTrip(t *testing.T) {
	s := newTestSession()
	ctx := NewContext(context.Background(), s)

	got, ok := FromContext(ctx)
	if !ok || got != s {
		t.Errorf("FromContext = (%v, %v), want the stored session", got, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext on empty context = true, want false")
	}
}

package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/session"
)

var testCustomer = config.Customer{
	Name:    "Guest Shopper",
	Email:   "guest@example.com",
	Address: "123 Placeholder Lane",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sessionWithCart(t *testing.T) *session.Session {
	t.Helper()
	st := session.NewStore(time.Hour)
	s := st.GetOrCreate("")
	s.AddToCart(model.Product{ID: 1, Title: "Mug", Price: 1000})
	s.AddToCart(model.Product{ID: 1, Title: "Mug", Price: 1000})
	s.AddToCart(model.Product{ID: 2, Title: "Plate", Price: 500})
	return s
}

func TestSubmitSuccess(t *testing.T) {
	var gotOrder *model.Order
	mock := &backend.Mock{
		SubmitOrderFunc: func(ctx context.Context, o *model.Order) (*backend.OrderReceipt, error) {
			gotOrder = o
			return &backend.OrderReceipt{OrderID: "ord_42", Status: "accepted"}, nil
		},
	}
	sub := New(mock, testCustomer, "from the storefront", discardLogger())
	s := sessionWithCart(t)

	res := sub.Submit(context.Background(), s)

	if res.Err != nil {
		t.Fatalf("Submit() error: %v", res.Err)
	}
	if res.OrderID != "ord_42" {
		t.Errorf("OrderID = %s, want ord_42", res.OrderID)
	}
	if res.Status.Kind != session.StatusSuccess {
		t.Errorf("Status.Kind = %q, want success", res.Status.Kind)
	}

	// Order carries the placeholder identity and the cart snapshot
	if gotOrder.CustomerName != "Guest Shopper" || gotOrder.CustomerEmail != "guest@example.com" {
		t.Errorf("customer = %s <%s>", gotOrder.CustomerName, gotOrder.CustomerEmail)
	}
	if len(gotOrder.Items) != 2 || gotOrder.Subtotal != 2500 {
		t.Errorf("order items = %d subtotal = %d, want 2 / 2500", len(gotOrder.Items), gotOrder.Subtotal)
	}
	if gotOrder.Notes != "from the storefront" {
		t.Errorf("Notes = %q", gotOrder.Notes)
	}

	// Cart cleared only on success
	v := s.View()
	if len(v.Lines) != 0 {
		t.Errorf("cart has %d lines after success, want 0", len(v.Lines))
	}
	if v.CheckoutInFlight {
		t.Error("checkout still marked in flight")
	}
}

func TestSubmitBackendFailureKeepsCart(t *testing.T) {
	mock := &backend.Mock{
		SubmitOrderFunc: func(ctx context.Context, o *model.Order) (*backend.OrderReceipt, error) {
			return nil, model.NewUpstreamError("shop backend", errors.New("boom"))
		},
	}
	sub := New(mock, testCustomer, "", discardLogger())
	s := sessionWithCart(t)

	res := sub.Submit(context.Background(), s)

	if res.Err == nil {
		t.Fatal("Submit() succeeded, want error")
	}
	if res.Status.Kind != session.StatusError {
		t.Errorf("Status.Kind = %q, want error", res.Status.Kind)
	}

	v := s.View()
	if len(v.Lines) != 2 || v.Subtotal != 2500 {
		t.Errorf("cart = %d lines / %d cents after failure, want intact", len(v.Lines), v.Subtotal)
	}
	if v.CheckoutInFlight {
		t.Error("checkout still marked in flight after failure")
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	mock := &backend.Mock{
		SubmitOrderFunc: func(ctx context.Context, o *model.Order) (*backend.OrderReceipt, error) {
			t.Error("backend called for an empty cart")
			return nil, nil
		},
	}
	sub := New(mock, testCustomer, "", discardLogger())
	st := session.NewStore(time.Hour)
	s := st.GetOrCreate("")

	res := sub.Submit(context.Background(), s)

	if !errors.Is(res.Err, model.ErrInvalidRequest) {
		t.Errorf("Err = %v, want ErrInvalidRequest", res.Err)
	}
	if res.Status.Kind != session.StatusError {
		t.Errorf("Status.Kind = %q, want error", res.Status.Kind)
	}
}

func TestSubmitConcurrentOnlyOneOrder(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	mock := &backend.Mock{
		SubmitOrderFunc: func(ctx context.Context, o *model.Order) (*backend.OrderReceipt, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			<-release
			return &backend.OrderReceipt{OrderID: "ord_1"}, nil
		},
	}
	sub := New(mock, testCustomer, "", discardLogger())
	s := sessionWithCart(t)

	done := make(chan Result, 1)
	go func() { done <- sub.Submit(context.Background(), s) }()

	// Wait for the first submit to reach the backend
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Second click while the first is in flight
	res := sub.Submit(context.Background(), s)
	if !errors.Is(res.Err, model.ErrCheckoutBusy) {
		t.Errorf("second Submit() err = %v, want ErrCheckoutBusy", res.Err)
	}

	close(release)
	first := <-done
	if first.Err != nil {
		t.Fatalf("first Submit() error: %v", first.Err)
	}

	mu.Lock()
	if calls != 1 {
		t.Errorf("backend called %d times, want 1", calls)
	}
	mu.Unlock()
}

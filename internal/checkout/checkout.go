// Package checkout drives order submission.
//
// The submitter takes a cart snapshot from the session, attaches the
// configured placeholder customer identity, and posts the order to the
// backend. The session's in-flight guard makes sure a double click cannot
// produce two orders; the submitter's job is to translate the outcome
// into cart state and a status line.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/session"
)

// Submitter builds and submits orders for a session's cart.
type Submitter struct {
	backend  backend.Backend
	customer config.Customer
	notes    string
	logger   *slog.Logger
}

// Result reports the outcome of a checkout attempt.
type Result struct {
	OrderID string         `json:"order_id,omitempty"`
	Status  session.Status `json:"status"`
	Err     error          `json:"-"`
}

// New creates a Submitter. The customer identity is attached verbatim to
// every order; there is no per-shopper identity.
func New(be backend.Backend, customer config.Customer, notes string, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		backend:  be,
		customer: customer,
		notes:    notes,
		logger:   logger,
	}
}

// Submit runs one checkout attempt for the session. On success the cart is
// cleared; on any failure the cart is left intact so the shopper can retry.
// The returned Result always carries the status line that was applied to
// the session.
func (s *Submitter) Submit(ctx context.Context, sess *session.Session) Result {
	lines, subtotal, err := sess.BeginCheckout()
	if err != nil {
		status := statusForBeginError(err)
		sess.SetStatus(status)
		return Result{Status: status, Err: err}
	}

	order := &model.Order{
		CustomerName:    s.customer.Name,
		CustomerEmail:   s.customer.Email,
		CustomerAddress: s.customer.Address,
		Items:           lines,
		Subtotal:        subtotal,
		Notes:           s.notes,
	}

	receipt, err := s.backend.SubmitOrder(ctx, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "order submission failed",
			"session", sess.Token(),
			"subtotal", model.FormatCents(subtotal),
			"error", err)
		status := session.Errorf("Order submission failed. Please try again.")
		sess.FinishCheckout(false, status)
		return Result{Status: status, Err: err}
	}

	s.logger.InfoContext(ctx, "order placed",
		"session", sess.Token(),
		"order_id", receipt.OrderID,
		"items", len(lines),
		"subtotal", model.FormatCents(subtotal))

	status := session.Successf(successText(receipt.OrderID))
	sess.FinishCheckout(true, status)
	return Result{OrderID: receipt.OrderID, Status: status}
}

// statusForBeginError maps the guard errors to shopper-facing text.
func statusForBeginError(err error) session.Status {
	switch {
	case errors.Is(err, model.ErrCheckoutBusy):
		return session.Status{Kind: session.StatusInfo, Text: "Your order is already being placed."}
	case errors.Is(err, model.ErrInvalidRequest):
		return session.Errorf("Your cart is empty.")
	default:
		return session.Errorf("Order submission failed. Please try again.")
	}
}

func successText(orderID string) string {
	if orderID == "" {
		return "Order placed! Thank you for shopping with us."
	}
	return fmt.Sprintf("Order %s placed! Thank you for shopping with us.", orderID)
}

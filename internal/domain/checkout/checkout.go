// Package checkout finalizes or discards carts.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
)

// Status enumerates checkout outcomes.
type Status string

const (
	// StatusEmptyCart means there was nothing to check out; no side effect.
	StatusEmptyCart Status = "empty_cart"
	// StatusCancelled means the user declined confirmation; no mutation.
	StatusCancelled Status = "cancelled"
	// StatusConfirmed means the cart was priced and cleared.
	StatusConfirmed Status = "confirmed"
)

// Confirmer is asked to approve a priced cart before it is finalized.
// It is typically backed by an interactive yes/no prompt.
type Confirmer func(view *cart.View) bool

// Result reports the outcome of a checkout attempt. Reference identifies the
// receipt in the session transcript only; once the cart is cleared nothing
// about the order is persisted.
type Result struct {
	Status    Status
	Reference string
	Total     decimal.Decimal
	Lines     []cart.ViewLine
}

// Coordinator converts a cart into a finalized order or discards it.
// It may delete cart lines but never creates them.
type Coordinator struct {
	engine *cart.Engine
	store  cart.Store
}

// NewCoordinator creates a Coordinator over the given engine and store.
func NewCoordinator(engine *cart.Engine, store cart.Store) *Coordinator {
	return &Coordinator{
		engine: engine,
		store:  store,
	}
}

// Checkout prices the current cart and, when confirm approves it, clears
// every line for the user. The clear is a single store operation, so either
// the whole cart is removed or, on storage failure, nothing is and the error
// is returned with the cart intact. The reported total is the snapshot total
// taken before clearing.
func (c *Coordinator) Checkout(ctx context.Context, userID int64, confirm Confirmer) (*Result, error) {
	view, err := c.engine.ViewCart(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "view cart")
	}

	if view.Empty() {
		return &Result{Status: StatusEmptyCart, Total: decimal.Zero}, nil
	}

	if !confirm(view) {
		return &Result{Status: StatusCancelled, Total: view.Total}, nil
	}

	if err := c.store.Clear(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	return &Result{
		Status:    StatusConfirmed,
		Reference: uuid.New().String(),
		Total:     view.Total,
		Lines:     view.Lines,
	}, nil
}

// CancelAll discards the user's cart unconditionally. Cancelling an already
// empty cart is a no-op.
func (c *Coordinator) CancelAll(ctx context.Context, userID int64) error {
	if err := c.store.Clear(ctx, userID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

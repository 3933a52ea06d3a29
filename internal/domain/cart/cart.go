// Package cart implements the cart engine: staging menu items for purchase,
// producing priced views, and removing lines by display position.
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Line is one persisted cart row: a user staging a quantity of one menu item.
// The store keeps at most one Line per (user, item) pair.
type Line struct {
	UserID   int64
	ItemID   int64
	Quantity int
}

// Store defines persistence operations for cart lines. Every operation is
// keyed by user id, so concurrent callers acting on different users can
// never interfere.
type Store interface {
	// AddOrIncrement creates a line for (userID, itemID) or, when one
	// already exists, adds quantity to it. Implementations must reject
	// non-positive quantities.
	AddOrIncrement(ctx context.Context, userID, itemID int64, quantity int) error
	// ListLines returns the user's lines in insertion order of first add.
	ListLines(ctx context.Context, userID int64) ([]Line, error)
	// RemoveLine deletes the line for (userID, itemID). Removing an absent
	// line is a no-op, not an error.
	RemoveLine(ctx context.Context, userID, itemID int64) error
	// Clear deletes every line for the user in a single atomic operation.
	// Clearing an empty cart is a no-op.
	Clear(ctx context.Context, userID int64) error
}

// InvalidQuantityError indicates a non-positive quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0, got %d", e.Quantity)
}

// IndexOutOfRangeError indicates a display index outside the current view.
type IndexOutOfRangeError struct {
	Index int
	Lines int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("item number %d is out of range [1, %d]", e.Index, e.Lines)
}

// ViewLine is one display row of a priced cart view.
type ViewLine struct {
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// View is a priced snapshot of one user's cart. Display indices are 1-based
// positions into Lines and are only meaningful against the View they were
// read from: removals shift subsequent positions, so callers must fetch a
// fresh View before each removal.
type View struct {
	Lines []ViewLine
	Total decimal.Decimal
	// StaleItemIDs lists cart lines whose menu item no longer exists in the
	// catalog. Such lines are excluded from Lines and Total rather than
	// failing the whole view.
	StaleItemIDs []int64
}

// Empty reports whether the view contains no displayable lines.
func (v *View) Empty() bool {
	return len(v.Lines) == 0
}

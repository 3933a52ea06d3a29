package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mealdesk/mealdesk/internal/domain/catalog"
)

// Engine translates cart intents into store calls and produces priced,
// display-ready views by joining lines against the catalog.
type Engine struct {
	store   Store
	catalog catalog.Repository
}

// NewEngine creates an Engine with the required dependencies.
func NewEngine(store Store, cat catalog.Repository) *Engine {
	return &Engine{
		store:   store,
		catalog: cat,
	}
}

// AddItem validates that itemID resolves in the catalog and that quantity is
// positive, then delegates to the store. Re-adding an item the user already
// has aggregates into the existing line instead of creating a duplicate.
func (e *Engine) AddItem(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}

	if _, err := e.catalog.GetMenuItem(ctx, itemID); err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return catalog.ErrItemNotFound
		}
		return errors.Wrapf(err, "resolve menu item %d", itemID)
	}

	if err := e.store.AddOrIncrement(ctx, userID, itemID, quantity); err != nil {
		return errors.Wrap(err, "add cart line")
	}
	return nil
}

// ViewCart returns a priced snapshot of the user's cart. Lines whose menu
// item has disappeared from the catalog are excluded and reported via
// View.StaleItemIDs. The total is the exact decimal sum of all line totals;
// an empty cart has a total of zero.
func (e *Engine) ViewCart(ctx context.Context, userID int64) (*View, error) {
	lines, err := e.store.ListLines(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}

	view := &View{Total: decimal.Zero}
	if len(lines) == 0 {
		return view, nil
	}

	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}

	items, err := e.catalog.GetMenuItems(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "fetch menu items")
	}

	byID := make(map[int64]catalog.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			view.StaleItemIDs = append(view.StaleItemIDs, l.ItemID)
			continue
		}

		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Lines = append(view.Lines, ViewLine{
			ItemID:    l.ItemID,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  l.Quantity,
			LineTotal: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}

// RemoveItem deletes the line at the given 1-based display index of view,
// which must be the view most recently shown to the caller. An index outside
// [1, len(view.Lines)] fails with IndexOutOfRangeError and mutates nothing.
func (e *Engine) RemoveItem(ctx context.Context, userID int64, view *View, displayIndex int) error {
	if displayIndex < 1 || displayIndex > len(view.Lines) {
		return &IndexOutOfRangeError{Index: displayIndex, Lines: len(view.Lines)}
	}

	line := view.Lines[displayIndex-1]
	if err := e.store.RemoveLine(ctx, userID, line.ItemID); err != nil {
		return errors.Wrapf(err, "remove cart line for item %d", line.ItemID)
	}
	return nil
}

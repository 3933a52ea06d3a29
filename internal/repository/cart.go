package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
)

const (
	// The ON CONFLICT upsert keeps the original row id, so insertion order
	// of the first add survives any number of re-adds.
	addOrIncrementSQL = `INSERT INTO orders (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = orders.quantity + EXCLUDED.quantity`

	listLinesSQL = `SELECT user_id, item_id, quantity
		FROM orders WHERE user_id = $1 ORDER BY id`

	removeLineSQL = `DELETE FROM orders WHERE user_id = $1 AND item_id = $2`

	clearSQL = `DELETE FROM orders WHERE user_id = $1`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by PostgreSQL. A UNIQUE constraint
// on (user_id, item_id) guarantees at most one line per pair, and both the
// upsert and the clear are single statements, so each mutation either fully
// applies or fully fails.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// AddOrIncrement creates the line for (userID, itemID) or adds quantity to
// the existing one.
func (s *CartStore) AddOrIncrement(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return &cart.InvalidQuantityError{Quantity: quantity}
	}

	if _, err := s.pool.Exec(ctx, addOrIncrementSQL, userID, itemID, quantity); err != nil {
		return errors.Wrapf(err, "upsert cart line (user %d, item %d)", userID, itemID)
	}
	return nil
}

// ListLines returns the user's cart lines in insertion order of first add.
func (s *CartStore) ListLines(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := s.pool.Query(ctx, listLinesSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "list cart lines for user %d", userID)
	}
	return pgx.CollectRows(rows, scanLine)
}

// RemoveLine deletes the line for (userID, itemID); absent lines are a no-op.
func (s *CartStore) RemoveLine(ctx context.Context, userID, itemID int64) error {
	if _, err := s.pool.Exec(ctx, removeLineSQL, userID, itemID); err != nil {
		return errors.Wrapf(err, "remove cart line (user %d, item %d)", userID, itemID)
	}
	return nil
}

// Clear deletes every line for the user in one statement.
func (s *CartStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.pool.Exec(ctx, clearSQL, userID); err != nil {
		return errors.Wrapf(err, "clear cart for user %d", userID)
	}
	return nil
}

func scanLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.UserID, &l.ItemID, &l.Quantity)
	return l, err
}

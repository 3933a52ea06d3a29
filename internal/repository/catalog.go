package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mealdesk/mealdesk/internal/domain/catalog"
)

const (
	listRestaurantsSQL = `SELECT id, name FROM restaurants ORDER BY id`

	listMenuItemsSQL = `SELECT id, name, price, restaurant_id
		FROM menu_items WHERE restaurant_id = $1 ORDER BY id`

	getMenuItemSQL = `SELECT id, name, price, restaurant_id
		FROM menu_items WHERE id = $1`

	getMenuItemsSQL = `SELECT id, name, price, restaurant_id
		FROM menu_items WHERE id = ANY($1)`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListRestaurants returns all restaurants ordered by id.
func (r *CatalogRepository) ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	rows, err := r.pool.Query(ctx, listRestaurantsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list restaurants")
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// ListMenuItems returns the menu of one restaurant ordered by id.
func (r *CatalogRepository) ListMenuItems(ctx context.Context, restaurantID int64) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, listMenuItemsSQL, restaurantID)
	if err != nil {
		return nil, errors.Wrapf(err, "list menu items for restaurant %d", restaurantID)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// GetMenuItem returns a single menu item by id, or catalog.ErrItemNotFound.
func (r *CatalogRepository) GetMenuItem(ctx context.Context, id int64) (*catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get menu item %d", id)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, errors.Wrapf(err, "get menu item %d", id)
	}
	return &it, nil
}

// GetMenuItems returns the menu items matching any of the given ids.
func (r *CatalogRepository) GetMenuItems(ctx context.Context, ids []int64) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, getMenuItemsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get menu items by ids")
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func scanRestaurant(row pgx.CollectableRow) (catalog.Restaurant, error) {
	var r catalog.Restaurant
	err := row.Scan(&r.ID, &r.Name)
	return r, err
}

func scanMenuItem(row pgx.CollectableRow) (catalog.MenuItem, error) {
	var (
		it    catalog.MenuItem
		price decimal.Decimal
	)
	err := row.Scan(&it.ID, &it.Name, &price, &it.RestaurantID)
	it.Price = price
	return it, err
}

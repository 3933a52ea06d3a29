// Package catalog holds the read-only restaurant and menu data the rest of
// the application prices carts against.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a menu item id does not resolve in the
// catalog.
var ErrItemNotFound = errors.New("menu item not found")

// Restaurant is one restaurant offering menu items.
type Restaurant struct {
	ID   int64
	Name string
}

// MenuItem is a single orderable item. Immutable after creation.
type MenuItem struct {
	ID           int64
	Name         string
	Price        decimal.Decimal
	RestaurantID int64
}

// Repository provides read-only access to restaurants and their menus.
type Repository interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	ListMenuItems(ctx context.Context, restaurantID int64) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*MenuItem, error)
	// GetMenuItems returns the items matching any of the given ids. Missing
	// ids are simply absent from the result, not an error.
	GetMenuItems(ctx context.Context, ids []int64) ([]MenuItem, error)
}

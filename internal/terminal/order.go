package terminal

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
	"github.com/mealdesk/mealdesk/internal/domain/catalog"
	"github.com/mealdesk/mealdesk/internal/domain/checkout"
)

// browseRestaurants shows the catalog and runs the add-to-cart prompts.
func (s *Session) browseRestaurants(ctx context.Context, userID int64) {
	restaurants, err := s.catalog.ListRestaurants(ctx)
	if err != nil {
		s.fail(ctx, "list restaurants", err)
		return
	}
	if len(restaurants) == 0 {
		s.printf("No restaurants available.\n")
		return
	}

	s.printf("Available Restaurants:\n")
	for _, r := range restaurants {
		s.printf("%d. %s\n", r.ID, r.Name)
	}

	input, ok := s.prompt("Please enter the number of the restaurant you'd like to browse: ")
	if !ok {
		return
	}
	restaurantID, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		s.printf("Invalid choice.\n")
		return
	}

	var restaurant *catalog.Restaurant
	for i := range restaurants {
		if restaurants[i].ID == restaurantID {
			restaurant = &restaurants[i]
			break
		}
	}
	if restaurant == nil {
		s.printf("Invalid choice.\n")
		return
	}

	items, err := s.catalog.ListMenuItems(ctx, restaurantID)
	if err != nil {
		s.fail(ctx, "list menu items", err)
		return
	}
	if len(items) == 0 {
		s.printf("No menu items available for this restaurant.\n")
		return
	}

	s.printf("\nMenu for %s:\n", restaurant.Name)
	for _, it := range items {
		s.printf("%d. %s - %s\n", it.ID, it.Name, money(it.Price))
	}

	s.addToCart(ctx, userID)
}

// addToCart prompts for an item id and quantity until the user backs out with
// 0 or an item lands in the cart. Validation errors re-prompt.
func (s *Session) addToCart(ctx context.Context, userID int64) {
	for {
		input, ok := s.prompt("\nPlease enter the number of the item you'd like to add to your cart (or 0 to go back): ")
		if !ok {
			return
		}
		if input == "0" {
			return
		}
		itemID, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			s.printf("That item is not on the menu.\n")
			continue
		}

		qtyInput, ok := s.prompt("Quantity: ")
		if !ok {
			return
		}
		quantity, err := strconv.Atoi(qtyInput)
		if err != nil || quantity <= 0 {
			s.printf("Quantity must be a positive whole number.\n")
			continue
		}

		err = s.cart.AddItem(ctx, userID, itemID, quantity)
		if err != nil {
			var iqErr *cart.InvalidQuantityError
			switch {
			case errors.Is(err, catalog.ErrItemNotFound):
				s.printf("That item is not on the menu.\n")
			case errors.As(err, &iqErr):
				s.printf("Quantity must be a positive whole number.\n")
			default:
				s.fail(ctx, "add item", err)
				return
			}
			continue
		}

		zctx.From(ctx).Info("item added to cart",
			zap.Int64("user_id", userID),
			zap.Int64("item_id", itemID),
			zap.Int("quantity", quantity),
		)
		s.printf("Item added to cart.\n")
		return
	}
}

// cartMenu shows the priced cart and offers checkout, removal, or going back.
// The view is re-fetched on every pass so display indices always refer to
// what is on screen.
func (s *Session) cartMenu(ctx context.Context, userID int64) {
	for {
		view, err := s.cart.ViewCart(ctx, userID)
		if err != nil {
			s.fail(ctx, "view cart", err)
			return
		}

		s.printView(view)
		if view.Empty() {
			return
		}

		s.printf("\n1. Checkout\n2. Remove Item\n3. Empty Cart\n4. Back to Menu\n")
		choice, ok := s.prompt("\nPlease enter your choice: ")
		if !ok {
			return
		}

		switch choice {
		case "1":
			if done := s.runCheckout(ctx, userID); done {
				return
			}
		case "2":
			s.removeItem(ctx, userID, view)
		case "3":
			if err := s.checkout.CancelAll(ctx, userID); err != nil {
				s.fail(ctx, "empty cart", err)
				return
			}
			zctx.From(ctx).Info("cart emptied", zap.Int64("user_id", userID))
			s.printf("Cart emptied.\n")
			return
		case "4":
			return
		default:
			s.printf("Invalid choice.\n")
		}
	}
}

// runCheckout finalizes the cart. It reports whether the cart menu should be
// left (after a completed checkout there is nothing left to show).
func (s *Session) runCheckout(ctx context.Context, userID int64) bool {
	result, err := s.checkout.Checkout(ctx, userID, s.confirmCheckout)
	if err != nil {
		s.fail(ctx, "checkout", err)
		return false
	}

	switch result.Status {
	case checkout.StatusEmptyCart:
		s.printf("Your cart is empty.\n")
		return true
	case checkout.StatusCancelled:
		s.printf("Checkout cancelled.\n")
		return false
	case checkout.StatusConfirmed:
		zctx.From(ctx).Info("checkout confirmed",
			zap.Int64("user_id", userID),
			zap.String("reference", result.Reference),
			zap.String("total", result.Total.String()),
		)
		s.printf("Order placed successfully! Your total is %s.\n", money(result.Total))
		s.printf("Receipt reference: %s\n", result.Reference)
		return true
	default:
		return false
	}
}

// confirmCheckout re-displays the priced cart and asks for the literal "yes".
// Anything else declines.
func (s *Session) confirmCheckout(view *cart.View) bool {
	s.printView(view)
	answer, ok := s.prompt("Confirm checkout (yes/no): ")
	if !ok {
		return false
	}
	return strings.EqualFold(answer, "yes")
}

// removeItem deletes one line by its display position in view.
func (s *Session) removeItem(ctx context.Context, userID int64, view *cart.View) {
	input, ok := s.prompt("Enter the number of the item you want to remove: ")
	if !ok {
		return
	}
	index, err := strconv.Atoi(input)
	if err != nil {
		s.printf("Invalid item number.\n")
		return
	}

	if err := s.cart.RemoveItem(ctx, userID, view, index); err != nil {
		var oorErr *cart.IndexOutOfRangeError
		if errors.As(err, &oorErr) {
			s.printf("Invalid item number.\n")
			return
		}
		s.fail(ctx, "remove item", err)
		return
	}

	zctx.From(ctx).Info("item removed from cart", zap.Int64("user_id", userID), zap.Int("index", index))
	s.printf("Item removed from cart.\n")
}

// printView renders a priced cart view with 1-based line numbers.
func (s *Session) printView(view *cart.View) {
	s.printf("\nYour Cart:\n")
	if view.Empty() {
		s.printf("Your cart is empty.\n")
		return
	}

	for i, line := range view.Lines {
		s.printf("%d. %s - %s x %d = %s\n",
			i+1, line.Name, money(line.UnitPrice), line.Quantity, money(line.LineTotal))
	}
	if len(view.StaleItemIDs) > 0 {
		s.printf("(%d item(s) are no longer on the menu and were left out.)\n", len(view.StaleItemIDs))
	}
	s.printf("\nTotal: %s\n", money(view.Total))
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

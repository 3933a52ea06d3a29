package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
	"github.com/mealdesk/mealdesk/internal/domain/catalog"
	"github.com/mealdesk/mealdesk/internal/domain/checkout"
	"github.com/mealdesk/mealdesk/internal/domain/user"
)

// --- In-memory fakes ---

type memUsers struct {
	nextID int64
	byName map[string]*user.User
}

func (m *memUsers) Create(_ context.Context, username, passwordHash string) (int64, error) {
	if _, ok := m.byName[username]; ok {
		return 0, user.ErrUsernameTaken
	}
	m.nextID++
	m.byName[username] = &user.User{ID: m.nextID, Username: username, PasswordHash: passwordHash}
	return m.nextID, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type memCatalog struct {
	restaurants []catalog.Restaurant
	items       []catalog.MenuItem
}

func (m *memCatalog) ListRestaurants(_ context.Context) ([]catalog.Restaurant, error) {
	return m.restaurants, nil
}

func (m *memCatalog) ListMenuItems(_ context.Context, restaurantID int64) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, it := range m.items {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCatalog) GetMenuItem(_ context.Context, id int64) (*catalog.MenuItem, error) {
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

func (m *memCatalog) GetMenuItems(_ context.Context, ids []int64) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, id := range ids {
		for _, it := range m.items {
			if it.ID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

type memStore struct {
	lines []cart.Line
}

func (m *memStore) AddOrIncrement(_ context.Context, userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return &cart.InvalidQuantityError{Quantity: quantity}
	}
	for i := range m.lines {
		if m.lines[i].UserID == userID && m.lines[i].ItemID == itemID {
			m.lines[i].Quantity += quantity
			return nil
		}
	}
	m.lines = append(m.lines, cart.Line{UserID: userID, ItemID: itemID, Quantity: quantity})
	return nil
}

func (m *memStore) ListLines(_ context.Context, userID int64) ([]cart.Line, error) {
	var out []cart.Line
	for _, l := range m.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) RemoveLine(_ context.Context, userID, itemID int64) error {
	for i, l := range m.lines {
		if l.UserID == userID && l.ItemID == itemID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) Clear(_ context.Context, userID int64) error {
	kept := m.lines[:0]
	for _, l := range m.lines {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	m.lines = kept
	return nil
}

// --- Helpers ---

// runScript feeds the given input lines to a fresh session over the default
// sample catalog and returns the produced output.
func runScript(t *testing.T, store *memStore, lines ...string) string {
	t.Helper()

	cat := &memCatalog{
		restaurants: []catalog.Restaurant{
			{ID: 1, Name: "Pizza Palace"},
			{ID: 2, Name: "Sushi Heaven"},
		},
		items: []catalog.MenuItem{
			{ID: 1, Name: "Margherita Pizza", Price: decimal.RequireFromString("10.99"), RestaurantID: 1},
			{ID: 2, Name: "Sushi Roll", Price: decimal.RequireFromString("8.99"), RestaurantID: 2},
		},
	}

	auth := user.NewService(&memUsers{byName: make(map[string]*user.User)}, []byte("pepper"))
	engine := cart.NewEngine(store, cat)
	coordinator := checkout.NewCoordinator(engine, store)

	var out bytes.Buffer
	session := NewSession(
		Config{In: strings.NewReader(strings.Join(lines, "\n") + "\n"), Out: &out},
		auth, cat, engine, coordinator,
	)

	require.NoError(t, session.Run(context.Background()))
	return out.String()
}

// --- Tests ---

func TestSession_RegisterLoginLogout(t *testing.T) {
	out := runScript(t, &memStore{},
		"2", "alice", "pw", // register
		"1", "alice", "pw", // login
		"3", // logout
		"3", // exit
	)

	assert.Contains(t, out, "Registration successful!")
	assert.Contains(t, out, "Login successful! Welcome, alice!")
	assert.Contains(t, out, "Logged out successfully. Goodbye!")
	assert.Contains(t, out, "Goodbye!")
}

func TestSession_InvalidLogin(t *testing.T) {
	out := runScript(t, &memStore{},
		"1", "ghost", "pw",
		"3",
	)

	assert.Contains(t, out, "Invalid username or password.")
}

func TestSession_DuplicateRegistration(t *testing.T) {
	out := runScript(t, &memStore{},
		"2", "alice", "pw",
		"2", "alice", "pw",
		"3",
	)

	assert.Contains(t, out, "That username is already taken.")
}

func TestSession_AddInvalidQuantityReprompts(t *testing.T) {
	store := &memStore{}
	out := runScript(t, store,
		"2", "alice", "pw",
		"1", "alice", "pw",
		"1", "1", // browse Pizza Palace
		"1", "zero", // item 1, non-numeric quantity
		"1", "-2", // item 1, negative quantity
		"1", "2", // item 1, valid quantity
		"3",
		"3",
	)

	assert.Contains(t, out, "Quantity must be a positive whole number.")
	assert.Contains(t, out, "Item added to cart.")
	require.Len(t, store.lines, 1)
	assert.Equal(t, 2, store.lines[0].Quantity)
}

func TestSession_EmptyCartView(t *testing.T) {
	out := runScript(t, &memStore{},
		"2", "alice", "pw",
		"1", "alice", "pw",
		"2", // view cart
		"3",
		"3",
	)

	assert.Contains(t, out, "Your cart is empty.")
}

// TestSession_FullOrderFlow drives the worked end-to-end scenario: aggregate
// re-adds, a second item, removal by display index, then confirmed checkout.
func TestSession_FullOrderFlow(t *testing.T) {
	store := &memStore{}
	out := runScript(t, store,
		"2", "alice", "pw",
		"1", "alice", "pw",
		"1", "1", "1", "2", // browse, Pizza Palace, Margherita x2
		"1", "1", "1", "1", // Margherita x1 more (aggregates)
		"1", "2", "2", "1", // browse, Sushi Heaven, Sushi Roll x1
		"2",        // view cart
		"2", "1",   // remove display index 1 (the pizza line)
		"1", "yes", // checkout, confirm
		"3",
		"3",
	)

	// Aggregated view before removal: one pizza line with quantity 3.
	assert.Contains(t, out, "1. Margherita Pizza - $10.99 x 3 = $32.97")
	assert.Contains(t, out, "2. Sushi Roll - $8.99 x 1 = $8.99")
	assert.Contains(t, out, "Total: $41.96")

	// After removal only the sushi line remains.
	assert.Contains(t, out, "Item removed from cart.")
	assert.Contains(t, out, "1. Sushi Roll - $8.99 x 1 = $8.99")
	assert.Contains(t, out, "Total: $8.99")

	// Confirmed checkout reports the pre-clear total and empties the cart.
	assert.Contains(t, out, "Order placed successfully! Your total is $8.99.")
	assert.Empty(t, store.lines)
}

func TestSession_CheckoutDeclined(t *testing.T) {
	store := &memStore{}
	out := runScript(t, store,
		"2", "alice", "pw",
		"1", "alice", "pw",
		"1", "1", "1", "2", // add Margherita x2
		"2",       // view cart
		"1", "no", // checkout, decline
		"4", // back to menu
		"3",
		"3",
	)

	assert.Contains(t, out, "Checkout cancelled.")
	require.Len(t, store.lines, 1)
	assert.Equal(t, 2, store.lines[0].Quantity)
}

func TestSession_RemoveInvalidIndex(t *testing.T) {
	store := &memStore{}
	out := runScript(t, store,
		"2", "alice", "pw",
		"1", "alice", "pw",
		"1", "1", "1", "1", // add Margherita x1
		"2",      // view cart
		"2", "5", // remove out-of-range index
		"4", // back to menu
		"3",
		"3",
	)

	assert.Contains(t, out, "Invalid item number.")
	assert.Len(t, store.lines, 1)
}

func TestSession_EmptyCartOption(t *testing.T) {
	store := &memStore{}
	out := runScript(t, store,
		"2", "alice", "pw",
		"1", "alice", "pw",
		"1", "1", "1", "2", // add Margherita x2
		"2", // view cart
		"3", // empty cart
		"3",
		"3",
	)

	assert.Contains(t, out, "Cart emptied.")
	assert.Empty(t, store.lines)
}

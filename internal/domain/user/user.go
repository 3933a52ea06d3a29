// Package user implements account registration and authentication.
package user

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for account operations.
var (
	// ErrNotFound is returned when no account exists for a username.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on any failed login. It deliberately
	// does not distinguish a missing account from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is a registered account. PasswordHash is the hex-encoded HMAC-SHA256
// of the password.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create stores a new account and returns its id. Returns
	// ErrUsernameTaken when the username is already registered.
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	// FindByUsername returns the account for the given username, or
	// ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)
}

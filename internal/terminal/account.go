package terminal

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mealdesk/mealdesk/internal/domain/user"
)

// register creates a new account from prompted credentials.
func (s *Session) register(ctx context.Context) {
	username, ok := s.prompt("Username: ")
	if !ok {
		return
	}
	password, ok := s.prompt("Password: ")
	if !ok {
		return
	}

	if _, err := s.auth.Register(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			s.printf("That username is already taken.\n")
		default:
			s.fail(ctx, "register", err)
		}
		return
	}

	zctx.From(ctx).Info("user registered", zap.String("username", username))
	s.printf("Registration successful!\n")
}

// login authenticates the user and, on success, enters the user menu loop.
func (s *Session) login(ctx context.Context) error {
	username, ok := s.prompt("Username: ")
	if !ok {
		return nil
	}
	password, ok := s.prompt("Password: ")
	if !ok {
		return nil
	}

	userID, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			s.printf("Invalid username or password.\n")
			return nil
		}
		s.fail(ctx, "login", err)
		return nil
	}

	zctx.From(ctx).Info("user logged in", zap.Int64("user_id", userID))
	s.printf("Login successful! Welcome, %s!\n", username)

	return s.userMenu(ctx, userID)
}

// userMenu is the menu shown to an authenticated user.
func (s *Session) userMenu(ctx context.Context, userID int64) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n1. Browse Restaurants\n2. View Cart\n3. Logout\n")
		choice, ok := s.prompt("\nPlease enter your choice: ")
		if !ok {
			return s.in.Err()
		}

		switch choice {
		case "1":
			s.browseRestaurants(ctx, userID)
		case "2":
			s.cartMenu(ctx, userID)
		case "3":
			s.printf("Logged out successfully. Goodbye!\n")
			return nil
		default:
			s.printf("Invalid choice.\n")
		}
	}
}

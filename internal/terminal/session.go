// Package terminal implements the line-oriented interactive surface: menus,
// prompts, and the mapping of domain errors to user-facing messages.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
	"github.com/mealdesk/mealdesk/internal/domain/catalog"
	"github.com/mealdesk/mealdesk/internal/domain/checkout"
	"github.com/mealdesk/mealdesk/internal/domain/user"
)

// Config holds the I/O streams the session reads from and writes to.
type Config struct {
	In  io.Reader
	Out io.Writer
}

// Session drives one interactive terminal session. It is strictly
// single-threaded: each operation runs to completion before the next prompt.
type Session struct {
	in  *bufio.Scanner
	out io.Writer

	auth     *user.Service
	catalog  catalog.Repository
	cart     *cart.Engine
	checkout *checkout.Coordinator
}

// NewSession creates a Session over the given streams and domain services.
func NewSession(
	cfg Config,
	auth *user.Service,
	cat catalog.Repository,
	engine *cart.Engine,
	coordinator *checkout.Coordinator,
) *Session {
	return &Session{
		in:       bufio.NewScanner(cfg.In),
		out:      cfg.Out,
		auth:     auth,
		catalog:  cat,
		cart:     engine,
		checkout: coordinator,
	}
}

// Run executes the top-level menu loop until the user exits, input ends, or
// the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.printf("Welcome to Mealdesk!\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n1. Login\n2. Register\n3. Exit\n")
		choice, ok := s.prompt("\nPlease enter your choice: ")
		if !ok {
			return s.in.Err()
		}

		switch choice {
		case "1":
			if err := s.login(ctx); err != nil {
				return err
			}
		case "2":
			s.register(ctx)
		case "3":
			s.printf("Goodbye!\n")
			return nil
		default:
			s.printf("Invalid choice.\n")
		}
	}
}

// prompt writes label and reads one trimmed line. ok is false when input is
// exhausted.
func (s *Session) prompt(label string) (line string, ok bool) {
	s.printf("%s", label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// fail reports a storage-level failure: the interrupted operation is logged
// and a generic message shown, then the surrounding menu re-prompts. There
// are no retries.
func (s *Session) fail(ctx context.Context, op string, err error) {
	zctx.From(ctx).Error("operation failed", zap.String("op", op), zap.Error(err))
	s.printf("Sorry, something went wrong. Please try again.\n")
}

package user

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/go-faster/errors"
)

// Service implements registration and login on top of a Repository.
// Passwords are hashed with HMAC-SHA256 under a process-wide pepper, so a
// leaked database alone is not enough to verify password guesses.
type Service struct {
	users  Repository
	pepper []byte
}

// NewService creates a Service backed by the given repository and HMAC pepper.
func NewService(users Repository, pepper []byte) *Service {
	return &Service{
		users:  users,
		pepper: pepper,
	}
}

// Register creates a new account and returns its id. Usernames are
// case-sensitive and must be non-empty; so must passwords.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, errors.New("username must not be empty")
	}
	if password == "" {
		return 0, errors.New("password must not be empty")
	}

	id, err := s.users.Create(ctx, username, s.hash(password))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return 0, ErrUsernameTaken
		}
		return 0, errors.Wrap(err, "create user")
	}
	return id, nil
}

// Authenticate verifies a username/password pair and returns the account id.
// A wrong password and an unknown username both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, errors.Wrap(err, "find user")
	}

	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(password))
	computed := mac.Sum(nil)

	stored, err := hex.DecodeString(u.PasswordHash)
	if err != nil {
		return 0, ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare(computed, stored) != 1 {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func (s *Service) hash(password string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdesk/mealdesk/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (username, password_hash)
		VALUES ($1, $2) RETURNING id`

	findUserByUsernameSQL = `SELECT id, username, password_hash
		FROM users WHERE username = $1`

	// unique_violation, see https://www.postgresql.org/docs/current/errcodes-appendix.html
	pgUniqueViolation = "23505"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new account and returns its id. A duplicate username maps
// to user.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createUserSQL, username, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, user.ErrUsernameTaken
		}
		return 0, errors.Wrapf(err, "create user %q", username)
	}
	return id, nil
}

// FindByUsername returns the account for username, or user.ErrNotFound.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, findUserByUsernameSQL, username)
	if err != nil {
		return nil, errors.Wrapf(err, "find user %q", username)
	}

	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.User, error) {
		var u user.User
		err := row.Scan(&u.ID, &u.Username, &u.PasswordHash)
		return u, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find user %q", username)
	}
	return &u, nil
}

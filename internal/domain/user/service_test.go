package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	nextID int64
	byName map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{byName: make(map[string]*User)}
}

func (m *memRepo) Create(_ context.Context, username, passwordHash string) (int64, error) {
	if _, ok := m.byName[username]; ok {
		return 0, ErrUsernameTaken
	}
	m.nextID++
	m.byName[username] = &User{ID: m.nextID, Username: username, PasswordHash: passwordHash}
	return m.nextID, nil
}

func (m *memRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemRepo(), []byte("pepper"))
	ctx := context.Background()

	id, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewService(newMemRepo(), []byte("pepper"))
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "two")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_EmptyInputs(t *testing.T) {
	svc := NewService(newMemRepo(), []byte("pepper"))
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "pw")
	require.Error(t, err)

	_, err = svc.Register(ctx, "alice", "")
	require.Error(t, err)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := NewService(newMemRepo(), []byte("pepper"))
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "right")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := NewService(newMemRepo(), []byte("pepper"))

	_, err := svc.Authenticate(context.Background(), "nobody", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPepperChangesHash(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()

	_, err := NewService(repo, []byte("pepper-a")).Register(ctx, "alice", "pw")
	require.NoError(t, err)

	// A service with a different pepper cannot verify the stored hash.
	_, err = NewService(repo, []byte("pepper-b")).Authenticate(ctx, "alice", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

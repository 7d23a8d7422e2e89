package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
)

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if _, ok := r.users[user.Username]; ok {
		return 0, fmt.Errorf("user already exists")
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.Username] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
	assert.Empty(t, user.PasswordHash, "password hash must never leave the service")

	authed, err := svc.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "different")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_AuthenticateFailures(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "pw123")
	require.NoError(t, err)

	// Wrong password and unknown user must be indistinguishable.
	_, err = svc.Authenticate(ctx, "carol", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "   ", "pw123")
	require.Error(t, err)

	_, err = svc.Register(ctx, "dave", "")
	require.Error(t, err)
}

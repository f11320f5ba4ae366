package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type memStore struct {
	mu     sync.Mutex
	users  map[string]domain.User
	nextID int64
	err    error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]domain.User{}}
}

func (m *memStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return domain.ErrAccountExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func newTestService(store Store) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), WithBcryptCost(bcrypt.MinCost))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active non-worker with hashed password", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(store)

		user, err := svc.Register(ctx, " A@X.com ", "secret", "secret")
		require.NoError(t, err)

		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsWorker)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "secret", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

		found, err := svc.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		store := newMemStore()
		_, err := newTestService(store).Register(ctx, "a@x.com", "one", "two")

		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
		assert.Empty(t, store.users)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.Register(ctx, "a@x.com", "pw", "pw")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "A@x.com", "other", "other")
		assert.ErrorIs(t, err, domain.ErrAccountExists)
	})

	t.Run("rejects malformed email and bad password length", func(t *testing.T) {
		svc := newTestService(newMemStore())

		_, err := svc.Register(ctx, "not-an-email", "pw", "pw")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)

		_, err = svc.Register(ctx, "a@x.com", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)

		long := strings.Repeat("x", 73)
		_, err = svc.Register(ctx, "a@x.com", long, long)
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	})

	t.Run("store failure surfaces as store error", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("conn reset")

		_, err := newTestService(store).Register(ctx, "a@x.com", "pw", "pw")
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.Register(ctx, "a@x.com", "secret", "secret")
	require.NoError(t, err)

	t.Run("accepts the right password", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "a@x.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsWorker)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "a@x.com", "guess")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@x.com", "secret")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("reports worker role", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("barista"), bcrypt.MinCost)
		require.NoError(t, err)
		store.users["w@x.com"] = domain.User{ID: 99, Email: "w@x.com", PasswordHash: string(hash), IsWorker: true, IsActive: true}

		user, err := svc.Authenticate(ctx, "w@x.com", "barista")
		require.NoError(t, err)
		assert.True(t, user.IsWorker)
	})

	t.Run("disabled account cannot sign in", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
		require.NoError(t, err)
		store.users["off@x.com"] = domain.User{ID: 100, Email: "off@x.com", PasswordHash: string(hash), IsActive: false}

		_, err = svc.Authenticate(ctx, "off@x.com", "pw")
		assert.ErrorIs(t, err, domain.ErrAccountDisabled)
	})
}

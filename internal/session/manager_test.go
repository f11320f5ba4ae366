package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	users    map[string]domain.User
	err      error
}

func newMemStore(users ...domain.User) *memStore {
	m := &memStore{sessions: map[string]*domain.Session{}, users: map[string]domain.User{}}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *memStore) Create(_ context.Context, tokenHash, email string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[tokenHash] = &domain.Session{TokenHash: tokenHash, User: domain.User{Email: email}, ExpiresAt: expiresAt}
	return nil
}

func (m *memStore) Get(_ context.Context, tokenHash string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	out := *s
	out.User = m.users[s.User.Email]
	return &out, nil
}

func (m *memStore) Delete(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenHash)
	return nil
}

func (m *memStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func newTestManager(store Store) *Manager {
	return NewManager(store, time.Hour, true, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var alice = domain.User{ID: 1, Email: "a@x.com", IsActive: true}

func TestManager_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice)
	m := newTestManager(store)

	token, expiresAt, err := m.Issue(ctx, alice.Email)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	_, stored := store.sessions[token]
	assert.False(t, stored, "raw token must not be a store key")
	assert.Contains(t, store.sessions, hashToken(token))

	user, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, user.Email)

	other, _, err := m.Issue(ctx, alice.Email)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestManager_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty and unknown tokens are unauthenticated", func(t *testing.T) {
		m := newTestManager(newMemStore(alice))

		_, err := m.Resolve(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)

		_, err = m.Resolve(ctx, "a@x.com")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired sessions are rejected and removed", func(t *testing.T) {
		store := newMemStore(alice)
		m := newTestManager(store)

		token, _, err := m.Issue(ctx, alice.Email)
		require.NoError(t, err)

		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = m.Resolve(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Empty(t, store.sessions)
	})

	t.Run("disabled users are rejected", func(t *testing.T) {
		disabled := domain.User{ID: 2, Email: "off@x.com", IsActive: false}
		m := newTestManager(newMemStore(disabled))

		token, _, err := m.Issue(ctx, disabled.Email)
		require.NoError(t, err)

		_, err = m.Resolve(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("store failure is a store error", func(t *testing.T) {
		store := newMemStore(alice)
		store.err = errors.New("timeout")

		_, err := newTestManager(store).Resolve(ctx, "token")
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestManager_RevokeAndSweep(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice)
	m := newTestManager(store)

	token, _, err := m.Issue(ctx, alice.Email)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, token))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, _, err = m.Issue(ctx, alice.Email)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, m.Sweep(ctx))
	assert.Empty(t, store.sessions)
}

func TestManager_Cookie(t *testing.T) {
	m := newTestManager(newMemStore())
	c := m.Cookie("tok", time.Now().Add(time.Hour))

	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Positive(t, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))
	req.AddCookie(c)
	assert.Equal(t, "tok", TokenFromRequest(req))

	assert.Negative(t, m.ClearCookie().MaxAge)
}

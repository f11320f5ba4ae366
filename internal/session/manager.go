package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

const CookieName = "session"

type Store interface {
	Create(ctx context.Context, tokenHash, email string, expiresAt time.Time) error
	Get(ctx context.Context, tokenHash string) (*domain.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Manager issues and verifies opaque session tokens. Clients hold 32 random
// bytes; the store only sees their SHA-256.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, secureCookies bool, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secureCookies,
		logger: logger,
		now:    time.Now,
	}
}

// Issue starts a session for email and returns the raw token.
func (m *Manager) Issue(ctx context.Context, email string) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	expiresAt := m.now().Add(m.ttl).UTC()

	if err := m.store.Create(ctx, hashToken(token), email, expiresAt); err != nil {
		return "", time.Time{}, domain.NewStoreError("create session", err)
	}

	return token, expiresAt, nil
}

// Resolve maps a raw token to its user. Unknown, expired and disabled
// sessions are domain.ErrUnauthenticated; expired rows are removed.
func (m *Manager) Resolve(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}

	hash := hashToken(token)
	s, err := m.store.Get(ctx, hash)
	if err != nil {
		return domain.User{}, domain.NewStoreError("get session", err)
	}
	if s == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}

	if !m.now().Before(s.ExpiresAt) {
		if err := m.store.Delete(ctx, hash); err != nil {
			m.logger.Error("failed to delete expired session", "error", err)
		}
		return domain.User{}, domain.ErrUnauthenticated
	}

	if !s.User.IsActive {
		return domain.User{}, domain.ErrUnauthenticated
	}

	return s.User, nil
}

func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, hashToken(token)); err != nil {
		return domain.NewStoreError("delete session", err)
	}
	return nil
}

// Sweep drops expired sessions.
func (m *Manager) Sweep(ctx context.Context) error {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return domain.NewStoreError("sweep sessions", err)
	}
	if n > 0 {
		m.logger.Info("expired sessions removed", "count", n)
	}
	return nil
}

func (m *Manager) Cookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the raw token from the session cookie, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, tokenHash, email string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, email, expires_at)
		VALUES ($1, $2, $3)
	`, tokenHash, email, expiresAt)
	return err
}

// Get returns the session joined with its user, or nil, nil when the hash is
// unknown. Expiry is checked by the caller.
func (r *SessionRepository) Get(ctx context.Context, tokenHash string) (*domain.Session, error) {
	s := &domain.Session{TokenHash: tokenHash}

	err := r.db.QueryRowContext(ctx, `
		SELECT s.expires_at, u.id, u.email, u.is_worker, u.is_active, u.created_at
		FROM sessions AS s
		JOIN users AS u ON u.email = s.email
		WHERE s.token_hash = $1
	`, tokenHash).Scan(&s.ExpiresAt, &s.User.ID, &s.User.Email, &s.User.IsWorker, &s.User.IsActive, &s.User.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and fills in ID and CreatedAt. A duplicate email
// yields domain.ErrAccountExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, is_worker, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Email, user.PasswordHash, user.IsWorker, user.IsActive).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAccountExists
		}
		return err
	}
	return nil
}

// GetByEmail returns nil, nil when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_worker, is_active, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsWorker, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

const foreignKeyViolation = "23503"

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Add appends one unit of itemID to the cart of email. A dangling item
// reference yields domain.ErrInvalidItem.
func (r *CartRepository) Add(ctx context.Context, email string, itemID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (email, item_id)
		VALUES ($1, $2)
		RETURNING id
	`, email, itemID).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			if pqErr.Constraint == "carts_email_fkey" {
				return 0, domain.ErrUnauthenticated
			}
			return 0, domain.ErrInvalidItem
		}
		return 0, err
	}
	return id, nil
}

// Remove deletes the entry when it belongs to email. Missing rows are not an
// error.
func (r *CartRepository) Remove(ctx context.Context, email string, entryID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE id = $1 AND email = $2
	`, entryID, email)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *CartRepository) ListByEmail(ctx context.Context, email string) ([]domain.CartEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, i.id, i.title, i.price, i.image_url
		FROM carts AS c
		JOIN items AS i ON c.item_id = i.id
		WHERE c.email = $1
		ORDER BY c.id
	`, email)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.CartEntry{}
	for rows.Next() {
		var e domain.CartEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Title, &e.Price, &e.ImageURL); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

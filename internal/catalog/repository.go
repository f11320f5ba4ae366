package catalog

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context, limit int) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, image_url, price
		FROM items
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.ImageURL, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// GetByID returns nil, nil when the item does not exist.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item := &domain.Item{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, image_url, price
		FROM items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Title, &item.Description, &item.ImageURL, &item.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}

// SeedIfEmpty inserts items only when the table holds no rows. The check and
// the inserts share one transaction guarded by a table lock, so concurrent
// starts seed once.
func (r *ItemRepository) SeedIfEmpty(ctx context.Context, items []domain.Item) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items)`).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (id, title, description, image_url, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.Title, item.Description, item.ImageURL, item.Price)
		if err != nil {
			return false, err
		}
	}

	// explicit ids leave the serial behind
	if _, err := tx.ExecContext(ctx, `
		SELECT setval(pg_get_serial_sequence('items', 'id'), (SELECT MAX(id) FROM items))
	`); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

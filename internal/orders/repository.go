package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type lockedEntry struct {
	id     int64
	itemID int64
	price  int64
}

// CreateFromCart turns the current cart of email into one order inside a
// single transaction. The user row is locked first so concurrent
// confirmations for the same email serialize; the second one sees an empty
// cart. Only the locked cart rows are deleted, so entries added while the
// transaction runs survive.
func (r *OrderRepository) CreateFromCart(ctx context.Context, email string) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var userID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM users WHERE email = $1 FOR UPDATE
	`, email).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	entries, err := lockCart(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCart
	}

	cartIDs := make([]int64, len(entries))
	itemIDs := make([]int64, len(entries))
	var total int64
	for i, e := range entries {
		cartIDs[i] = e.id
		itemIDs[i] = e.itemID
		total += e.price
	}

	order := &domain.Order{
		Email:        email,
		OrderedItems: domain.JoinItemIDs(itemIDs),
		TotalPrice:   total,
		Active:       true,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (email, ordered_items, total_price, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at
	`, order.Email, order.OrderedItems, order.TotalPrice).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM carts WHERE id = ANY($1)
	`, pq.Array(cartIDs))
	if err != nil {
		return nil, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if deleted != int64(len(cartIDs)) {
		return nil, fmt.Errorf("cleared %d of %d cart entries", deleted, len(cartIDs))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

func lockCart(ctx context.Context, tx *sql.Tx, email string) ([]lockedEntry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT c.id, c.item_id, i.price
		FROM carts AS c
		JOIN items AS i ON c.item_id = i.id
		WHERE c.email = $1
		ORDER BY c.id
		FOR UPDATE OF c
	`, email)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []lockedEntry
	for rows.Next() {
		var e lockedEntry
		if err := rows.Scan(&e.id, &e.itemID, &e.price); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, email, ordered_items, total_price, active, created_at, completed_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// Complete marks an order fulfilled. changed is false when the order was
// already inactive; a nil order means it does not exist.
func (r *OrderRepository) Complete(ctx context.Context, id int64) (order *domain.Order, changed bool, err error) {
	order, err = scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders SET active = FALSE, completed_at = NOW()
		WHERE id = $1 AND active
		RETURNING id, email, ordered_items, total_price, active, created_at, completed_at
	`, id))
	if err == nil {
		return order, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	order, err = r.GetByID(ctx, id)
	return order, false, err
}

// ListActive returns active orders oldest first, the queue a worker serves.
func (r *OrderRepository) ListActive(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, email, ordered_items, total_price, active, created_at, completed_at
		FROM orders
		WHERE active
		ORDER BY id
	`)
}

// ListByEmail returns the order history of one user, newest first.
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, email, ordered_items, total_price, active, created_at, completed_at
		FROM orders
		WHERE email = $1
		ORDER BY id DESC
	`, email)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		order       domain.Order
		completedAt sql.NullTime
	)
	err := s.Scan(&order.ID, &order.Email, &order.OrderedItems, &order.TotalPrice, &order.Active, &order.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		order.CompletedAt = &t
	}
	return &order, nil
}

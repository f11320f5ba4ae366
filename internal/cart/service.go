package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
	"github.com/joao-fontenele/coffeeshop/internal/telemetry"
)

type Store interface {
	Add(ctx context.Context, email string, itemID int64) (int64, error)
	Remove(ctx context.Context, email string, entryID int64) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]domain.CartEntry, error)
}

type ItemLookup interface {
	GetItem(ctx context.Context, id int64) (domain.Item, error)
}

type Service struct {
	store   Store
	items   ItemLookup
	metrics *telemetry.ShopMetrics
	logger  *slog.Logger
}

func NewService(store Store, items ItemLookup, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		items:   items,
		metrics: metrics,
		logger:  logger,
	}
}

// AddToCart appends one unit. Repeated calls add repeated units.
func (s *Service) AddToCart(ctx context.Context, email string, itemID int64) (int64, error) {
	if email == "" {
		return 0, domain.ErrUnauthenticated
	}

	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return 0, err
	}

	id, err := s.store.Add(ctx, email, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidItem) || errors.Is(err, domain.ErrUnauthenticated) {
			return 0, err
		}
		return 0, domain.NewStoreError("add to cart", err)
	}

	s.metrics.CartItemAdded(ctx)
	s.logger.Info("cart entry added", "email", email, "item_id", itemID, "entry_id", id)
	return id, nil
}

// RemoveFromCart deletes one entry of the caller's cart. An absent entry is a
// no-op.
func (s *Service) RemoveFromCart(ctx context.Context, email string, entryID int64) error {
	if email == "" {
		return domain.ErrUnauthenticated
	}

	removed, err := s.store.Remove(ctx, email, entryID)
	if err != nil {
		return domain.NewStoreError("remove from cart", err)
	}

	if removed {
		s.logger.Info("cart entry removed", "email", email, "entry_id", entryID)
	}
	return nil
}

func (s *Service) ViewCart(ctx context.Context, email string) (domain.Cart, error) {
	if email == "" {
		return domain.Cart{}, domain.ErrUnauthenticated
	}

	entries, err := s.store.ListByEmail(ctx, email)
	if err != nil {
		return domain.Cart{}, domain.NewStoreError("view cart", err)
	}

	return domain.NewCart(entries), nil
}

package catalog

import (
	"context"
	"log/slog"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type Store interface {
	List(ctx context.Context, limit int) ([]domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	SeedIfEmpty(ctx context.Context, items []domain.Item) (bool, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListItems returns up to limit items in primary key order.
func (s *Service) ListItems(ctx context.Context, limit int) ([]domain.Item, error) {
	if limit <= 0 {
		return []domain.Item{}, nil
	}
	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, domain.NewStoreError("list items", err)
	}
	return items, nil
}

// GetItem fails with domain.ErrInvalidItem for ids that do not reference an item.
func (s *Service) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	if id <= 0 {
		return domain.Item{}, domain.ErrInvalidItem
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Item{}, domain.NewStoreError("get item", err)
	}
	if item == nil {
		return domain.Item{}, domain.ErrInvalidItem
	}
	return *item, nil
}

func (s *Service) Seed(ctx context.Context, items []domain.Item) error {
	seeded, err := s.store.SeedIfEmpty(ctx, items)
	if err != nil {
		return domain.NewStoreError("seed catalog", err)
	}
	if seeded {
		s.logger.Info("catalog seeded", "count", len(items))
	}
	return nil
}

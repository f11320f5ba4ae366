package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type fakeStore struct {
	items   []domain.Item
	err     error
	seeded  bool
	lastLim int
}

func (f *fakeStore) List(_ context.Context, limit int) ([]domain.Item, error) {
	f.lastLim = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.items) {
		limit = len(f.items)
	}
	return append([]domain.Item{}, f.items[:limit]...), nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SeedIfEmpty(_ context.Context, items []domain.Item) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if len(f.items) > 0 {
		return false, nil
	}
	f.items = items
	f.seeded = true
	return true, nil
}

func newTestService(store Store) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_ListItems(t *testing.T) {
	ctx := context.Background()

	t.Run("returns up to limit items in order", func(t *testing.T) {
		svc := newTestService(&fakeStore{items: DefaultItems()})

		items, err := svc.ListItems(ctx, 4)
		require.NoError(t, err)
		require.Len(t, items, 4)
		for i, item := range items {
			assert.Equal(t, int64(i+1), item.ID)
		}
	})

	t.Run("non-positive limit yields nothing", func(t *testing.T) {
		store := &fakeStore{items: DefaultItems()}
		svc := newTestService(store)

		items, err := svc.ListItems(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, store.lastLim)
	})

	t.Run("store failure is a store error", func(t *testing.T) {
		svc := newTestService(&fakeStore{err: errors.New("connection refused")})

		_, err := svc.ListItems(ctx, 6)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestService_GetItem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeStore{items: DefaultItems()})

	item, err := svc.GetItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(150), item.Price)

	_, err = svc.GetItem(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = svc.GetItem(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidItem)
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty catalog", func(t *testing.T) {
		store := &fakeStore{}
		require.NoError(t, newTestService(store).Seed(ctx, DefaultItems()))
		assert.True(t, store.seeded)
		assert.Len(t, store.items, 6)
	})

	t.Run("leaves an existing catalog alone", func(t *testing.T) {
		store := &fakeStore{items: []domain.Item{{ID: 1, Title: "x", Price: 1}}}
		require.NoError(t, newTestService(store).Seed(ctx, DefaultItems()))
		assert.False(t, store.seeded)
		assert.Len(t, store.items, 1)
	})
}

func TestDefaultItems(t *testing.T) {
	seen := map[int64]bool{}
	for _, item := range DefaultItems() {
		assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
		assert.GreaterOrEqual(t, item.Price, int64(0))
		assert.NotEmpty(t, item.ImageURL)
	}
}

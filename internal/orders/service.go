package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
	"github.com/joao-fontenele/coffeeshop/internal/telemetry"
)

type Store interface {
	CreateFromCart(ctx context.Context, email string) (*domain.Order, error)
	Complete(ctx context.Context, id int64) (*domain.Order, bool, error)
	ListActive(ctx context.Context) ([]domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

// Publisher is satisfied by *messaging.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     Store
	publisher Publisher
	metrics   *telemetry.ShopMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService accepts a nil publisher; events are then not emitted.
func NewService(store Store, publisher Publisher, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ConfirmOrder converts the caller's cart into an order. Item list and total
// come from the cart rows read inside the confirming transaction.
func (s *Service) ConfirmOrder(ctx context.Context, email string) (domain.Order, error) {
	if email == "" {
		return domain.Order{}, domain.ErrUnauthenticated
	}

	order, err := s.store.CreateFromCart(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) || errors.Is(err, domain.ErrUnauthenticated) {
			return domain.Order{}, err
		}
		return domain.Order{}, domain.NewStoreError("confirm order", err)
	}

	s.metrics.OrderConfirmed(ctx, order.TotalPrice)
	s.logger.Info("order confirmed", "order_id", order.ID, "email", order.Email, "total_price", order.TotalPrice)
	s.publish(ctx, domain.OrderEventConfirmed, *order)

	return *order, nil
}

// CompleteOrder marks an active order fulfilled. Completing an already
// completed order is a no-op.
func (s *Service) CompleteOrder(ctx context.Context, id int64) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	order, changed, err := s.store.Complete(ctx, id)
	if err != nil {
		return domain.Order{}, domain.NewStoreError("complete order", err)
	}
	if order == nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	if changed {
		s.metrics.OrderCompleted(ctx)
		s.logger.Info("order completed", "order_id", order.ID, "email", order.Email)
		s.publish(ctx, domain.OrderEventCompleted, *order)
	}

	return *order, nil
}

func (s *Service) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, domain.NewStoreError("list active orders", err)
	}
	return orders, nil
}

func (s *Service) ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	if email == "" {
		return nil, domain.ErrUnauthenticated
	}
	orders, err := s.store.ListByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewStoreError("list orders", err)
	}
	return orders, nil
}

// publish runs after commit; a broker failure never undoes the order.
func (s *Service) publish(ctx context.Context, eventType domain.OrderEventType, order domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		Email:      order.Email,
		ItemIDs:    order.ItemIDs(),
		TotalPrice: order.TotalPrice,
		Timestamp:  s.now(),
	}

	if err := s.publisher.Publish(ctx, order.Email, event); err != nil {
		s.logger.Error("failed to publish order event", "error", err, "order_id", order.ID, "type", eventType)
	}
}

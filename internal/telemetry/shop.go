package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics records business counters. A nil *ShopMetrics is a no-op.
type ShopMetrics struct {
	cartAdds        metric.Int64Counter
	ordersConfirmed metric.Int64Counter
	ordersCompleted metric.Int64Counter
	orderValue      metric.Int64Histogram
}

func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	cartAdds, err := meter.Int64Counter("shop.cart.items_added",
		metric.WithDescription("Units added to carts"))
	if err != nil {
		return nil, err
	}

	ordersConfirmed, err := meter.Int64Counter("shop.orders.confirmed",
		metric.WithDescription("Orders created from a cart"))
	if err != nil {
		return nil, err
	}

	ordersCompleted, err := meter.Int64Counter("shop.orders.completed",
		metric.WithDescription("Orders marked fulfilled by a worker"))
	if err != nil {
		return nil, err
	}

	orderValue, err := meter.Int64Histogram("shop.orders.value",
		metric.WithDescription("Total price of confirmed orders in the smallest currency unit"))
	if err != nil {
		return nil, err
	}

	return &ShopMetrics{
		cartAdds:        cartAdds,
		ordersConfirmed: ordersConfirmed,
		ordersCompleted: ordersCompleted,
		orderValue:      orderValue,
	}, nil
}

func (m *ShopMetrics) CartItemAdded(ctx context.Context) {
	if m == nil {
		return
	}
	m.cartAdds.Add(ctx, 1)
}

func (m *ShopMetrics) OrderConfirmed(ctx context.Context, total int64) {
	if m == nil {
		return
	}
	m.ordersConfirmed.Add(ctx, 1)
	m.orderValue.Record(ctx, total)
}

func (m *ShopMetrics) OrderCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCompleted.Add(ctx, 1)
}

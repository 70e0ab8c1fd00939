package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"shopapi/internal/models"
)

// OrderMetrics records order workflow outcomes. A nil *OrderMetrics records nothing.
type OrderMetrics struct {
	created       metric.Int64Counter
	revenue       metric.Float64Counter
	stockRejected metric.Int64Counter
	statusChanged metric.Int64Counter
	deleted       metric.Int64Counter
}

// NewOrderMetrics creates the order instruments on meter.
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	m := &OrderMetrics{}
	var err error

	if m.created, err = meter.Int64Counter("shop.orders.created",
		metric.WithDescription("Orders successfully created"),
	); err != nil {
		return nil, err
	}
	if m.revenue, err = meter.Float64Counter("shop.orders.amount",
		metric.WithDescription("Sum of totalAmount over created orders"),
	); err != nil {
		return nil, err
	}
	if m.stockRejected, err = meter.Int64Counter("shop.orders.stock_rejected",
		metric.WithDescription("Order creations rejected for insufficient stock"),
	); err != nil {
		return nil, err
	}
	if m.statusChanged, err = meter.Int64Counter("shop.orders.status_changed",
		metric.WithDescription("Order status changes by target status"),
	); err != nil {
		return nil, err
	}
	if m.deleted, err = meter.Int64Counter("shop.orders.deleted",
		metric.WithDescription("Orders deleted"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *OrderMetrics) OrderCreated(ctx context.Context, order *models.Order) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
	m.revenue.Add(ctx, order.TotalAmount)
}

func (m *OrderMetrics) StockRejected(ctx context.Context) {
	if m == nil {
		return
	}
	m.stockRejected.Add(ctx, 1)
}

func (m *OrderMetrics) StatusChanged(ctx context.Context, status models.OrderStatus) {
	if m == nil {
		return
	}
	m.statusChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}

func (m *OrderMetrics) OrderDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1)
}

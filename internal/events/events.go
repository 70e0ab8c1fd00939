// Package events publishes order lifecycle notifications to a message broker.
package events

import (
	"context"
	"time"

	"shopapi/internal/models"
)

// Event types.
const (
	OrderCreated       = "order.created"
	OrderUpdated       = "order.updated"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
)

// Event is the JSON payload published for every order change.
type Event struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"orderId"`
	ProductID   string             `json:"productId"`
	Quantity    int                `json:"quantity"`
	TotalAmount float64            `json:"totalAmount"`
	Status      models.OrderStatus `json:"status"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// NewOrderEvent builds an event of the given type from the order's current state.
func NewOrderEvent(eventType string, order *models.Order) Event {
	return Event{
		Type:        eventType,
		OrderID:     order.ID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

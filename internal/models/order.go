package models

import "time"

// OrderStatus is the lifecycle label of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Party identifies the sender or receiver of an order. Fields left empty on
// a new order are filled from the configured defaults.
type Party struct {
	Name string `json:"name" bson:"name"`
	ID   string `json:"id" bson:"id"`
}

// Order represents a customer order for a single product.
//
// ProductID is a weak reference: it is checked when the order is created or
// re-pointed, never afterwards. Product is only filled on expanded reads and
// stays nil when the referenced product no longer exists.
type Order struct {
	ID           string          `json:"id" bson:"_id"`
	CustomerName string          `json:"customerName" bson:"customerName"`
	ProductID    string          `json:"productId" bson:"productId"`
	Product      *ProductSummary `json:"product,omitempty" bson:"product,omitempty"`
	Quantity     int             `json:"quantity" bson:"quantity"`
	TotalAmount  float64         `json:"totalAmount" bson:"totalAmount"` // price × quantity at the last write touching either
	Sender       Party           `json:"sender" bson:"sender"`
	Receiver     Party           `json:"receiver" bson:"receiver"`
	Status       OrderStatus     `json:"status" bson:"status"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// CreateOrderRequest is the body accepted when placing an order.
type CreateOrderRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	ProductID    string `json:"productId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	Sender       *Party `json:"sender"`
	Receiver     *Party `json:"receiver"`
}

// UpdateOrderRequest is the body accepted by the general order update.
// Status is deliberately absent; it only changes through the status route.
type UpdateOrderRequest struct {
	CustomerName *string `json:"customerName" validate:"omitempty,min=1"`
	ProductID    *string `json:"productId" validate:"omitempty,min=1"`
	Quantity     *int    `json:"quantity" validate:"omitempty,min=1"`
	Sender       *Party  `json:"sender"`
	Receiver     *Party  `json:"receiver"`
}

// OrderUpdate is the partial write handed to an order store. Nil fields are left untouched.
type OrderUpdate struct {
	CustomerName *string
	ProductID    *string
	Quantity     *int
	TotalAmount  *float64
	Sender       *Party
	Receiver     *Party
}

// Apply copies the set fields of u onto o.
func (u OrderUpdate) Apply(o *Order) {
	if u.CustomerName != nil {
		o.CustomerName = *u.CustomerName
	}
	if u.ProductID != nil {
		o.ProductID = *u.ProductID
	}
	if u.Quantity != nil {
		o.Quantity = *u.Quantity
	}
	if u.TotalAmount != nil {
		o.TotalAmount = *u.TotalAmount
	}
	if u.Sender != nil {
		o.Sender = *u.Sender
	}
	if u.Receiver != nil {
		o.Receiver = *u.Receiver
	}
}

// PartyDefaults holds the identities applied when an order omits its sender or receiver.
type PartyDefaults struct {
	Sender   Party
	Receiver Party
}

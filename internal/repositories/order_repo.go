package repositories

import (
	"context"

	"shopapi/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// Every read except Delete expands the referenced product into Order.Product.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id string) (*models.Order, error)
}

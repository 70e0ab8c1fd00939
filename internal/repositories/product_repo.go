package repositories

import (
	"context"

	"shopapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update applies the set fields of update and returns the stored result.
	Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	// Delete removes the product and returns its last stored state.
	Delete(ctx context.Context, id string) (*models.Product, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopapi/internal/models"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// Product expansion reads through the given ProductRepository.
type MemoryOrderRepository struct {
	orders   map[string]models.Order
	ids      []string
	products ProductRepository
	mu       sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository(products ProductRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// GetAll returns all orders in insertion order, products expanded.
func (r *MemoryOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	orderList := make([]models.Order, 0, len(r.ids))
	for _, id := range r.ids {
		orderList = append(orderList, r.orders[id])
	}
	r.mu.RUnlock()

	for i := range orderList {
		if err := r.expand(ctx, &orderList[i]); err != nil {
			return nil, err
		}
	}
	return orderList, nil
}

// GetByID returns an order by its ID, product expanded.
func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if err := r.expand(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Product = nil
	r.orders[order.ID] = *order
	r.ids = append(r.ids, order.ID)
	return nil
}

// Update applies a partial update and returns the expanded result.
func (r *MemoryOrderRepository) Update(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	return r.mutate(ctx, id, func(o *models.Order) { update.Apply(o) })
}

// UpdateStatus sets the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.mutate(ctx, id, func(o *models.Order) { o.Status = status })
}

// Delete removes an order and returns its last state.
func (r *MemoryOrderRepository) Delete(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	r.ids = removeID(r.ids, id)
	return &order, nil
}

func (r *MemoryOrderRepository) mutate(ctx context.Context, id string, fn func(*models.Order)) (*models.Order, error) {
	r.mu.Lock()
	order, ok := r.orders[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	fn(&order)
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	r.mu.Unlock()

	if err := r.expand(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MemoryOrderRepository) expand(ctx context.Context, order *models.Order) error {
	order.Product = nil
	if r.products == nil {
		return nil
	}
	product, err := r.products.GetByID(ctx, order.ProductID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to expand product for order %s: %w", order.ID, err)
	}
	order.Product = product.Summary()
	return nil
}

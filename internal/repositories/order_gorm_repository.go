package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopapi/internal/models"
)

// orderRecord is the relational row layout of an order: sender and receiver
// are flattened into their own columns.
type orderRecord struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	CustomerName string `gorm:"not null"`
	ProductID    string `gorm:"type:varchar(36);index;not null"`
	Quantity     int    `gorm:"not null"`
	TotalAmount  float64
	SenderName   string
	SenderID     string
	ReceiverName string
	ReceiverID   string
	Status       string `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (orderRecord) TableName() string { return "orders" }

func newOrderRecord(o *models.Order) *orderRecord {
	return &orderRecord{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		ProductID:    o.ProductID,
		Quantity:     o.Quantity,
		TotalAmount:  o.TotalAmount,
		SenderName:   o.Sender.Name,
		SenderID:     o.Sender.ID,
		ReceiverName: o.Receiver.Name,
		ReceiverID:   o.Receiver.ID,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (rec *orderRecord) toModel() models.Order {
	return models.Order{
		ID:           rec.ID,
		CustomerName: rec.CustomerName,
		ProductID:    rec.ProductID,
		Quantity:     rec.Quantity,
		TotalAmount:  rec.TotalAmount,
		Sender:       models.Party{Name: rec.SenderName, ID: rec.SenderID},
		Receiver:     models.Party{Name: rec.ReceiverName, ID: rec.ReceiverID},
		Status:       models.OrderStatus(rec.Status),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

// AutoMigrate creates or updates the product and order tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &orderRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves all orders with their products expanded.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}

	orders := make([]models.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toModel())
	}
	if err := r.expand(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByID retrieves a single order with its product expanded.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{*order}
	if err := r.expand(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	rec := newOrderRecord(order)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.CreatedAt = rec.CreatedAt
	order.UpdatedAt = rec.UpdatedAt
	order.Product = nil
	return nil
}

// Update writes only the fields set in update and returns the expanded order.
func (r *GORMOrderRepository) Update(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if update.CustomerName != nil {
		changes["customer_name"] = *update.CustomerName
	}
	if update.ProductID != nil {
		changes["product_id"] = *update.ProductID
	}
	if update.Quantity != nil {
		changes["quantity"] = *update.Quantity
	}
	if update.TotalAmount != nil {
		changes["total_amount"] = *update.TotalAmount
	}
	if update.Sender != nil {
		changes["sender_name"] = update.Sender.Name
		changes["sender_id"] = update.Sender.ID
	}
	if update.Receiver != nil {
		changes["receiver_name"] = update.Receiver.Name
		changes["receiver_id"] = update.Receiver.ID
	}
	return r.update(ctx, id, changes)
}

// UpdateStatus sets the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.update(ctx, id, map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
}

// Delete removes an order and returns its last state.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	order, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(&orderRecord{}, "id = ?", id)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return order, nil
}

func (r *GORMOrderRepository) update(ctx context.Context, id string, changes map[string]any) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *GORMOrderRepository) find(ctx context.Context, id string) (*models.Order, error) {
	var rec orderRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	order := rec.toModel()
	return &order, nil
}

// expand loads the summaries of every referenced product in one query.
func (r *GORMOrderRepository) expand(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if !seen[o.ProductID] {
			seen[o.ProductID] = true
			ids = append(ids, o.ProductID)
		}
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "name", "price", "category").
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return fmt.Errorf("failed to expand order products: %w", err)
	}

	byID := make(map[string]*models.ProductSummary, len(products))
	for _, p := range products {
		byID[p.ID] = p.Summary()
	}
	for i := range orders {
		orders[i].Product = byID[orders[i].ProductID]
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopapi/internal/events"
	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/telemetry"
)

const orderRequiredMsg = "Please provide all required fields: customerName, productId, quantity"

// publishTimeout bounds how long a request waits on the event broker.
const publishTimeout = 3 * time.Second

// OrderService handles business logic related to orders and keeps each order
// consistent with the product it references.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	parties     models.PartyDefaults
	publisher   events.Publisher
	metrics     *telemetry.OrderMetrics
	logger      *slog.Logger
}

// NewOrderService creates a new OrderService. parties supplies the sender and
// receiver used when a new order omits them. publisher and metrics may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	parties models.PartyDefaults,
	publisher events.Publisher,
	metrics *telemetry.OrderMetrics,
	logger *slog.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		parties:     parties,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// DefaultParties returns the sender and receiver applied to orders that omit them.
func (s *OrderService) DefaultParties() models.PartyDefaults {
	return s.parties
}

// GetAllOrders retrieves all orders with their products expanded.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order with its product expanded.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}
	return order, nil
}

// CreateOrder places an order for req.Quantity units of req.ProductID.
//
// The order insert and the stock decrement are two separate writes with no
// transaction or lock around them: concurrent creates for one product can
// both pass the stock check, and a failed decrement leaves the order stored.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.Sender = trimParty(req.Sender)
	req.Receiver = trimParty(req.Receiver)
	if err := validateStruct(req, orderRequiredMsg); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, productErr(err)
	}

	if product.Stock < req.Quantity {
		s.metrics.StockRejected(ctx)
		return nil, fmt.Errorf("%w (requested: %d, available: %d)", ErrInsufficientStock, req.Quantity, product.Stock)
	}

	order := &models.Order{
		CustomerName: req.CustomerName,
		ProductID:    product.ID,
		Quantity:     req.Quantity,
		TotalAmount:  orderTotal(product.Price, req.Quantity),
		Sender:       partyOrDefault(req.Sender, s.parties.Sender),
		Receiver:     partyOrDefault(req.Receiver, s.parties.Receiver),
		Status:       models.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	remaining := product.Stock - req.Quantity
	if _, err := s.productRepo.Update(ctx, product.ID, models.ProductUpdate{Stock: &remaining}); err != nil {
		s.logger.Error("order stored but stock decrement failed",
			"order_id", order.ID, "product_id", product.ID, "quantity", req.Quantity, "error", err)
		return nil, fmt.Errorf("failed to update stock for product %s: %w", product.ID, err)
	}

	s.metrics.OrderCreated(ctx, order)
	s.publish(ctx, events.OrderCreated, order)
	s.logger.Info("order created", "order_id", order.ID, "product_id", product.ID, "total_amount", order.TotalAmount)
	return order, nil
}

// UpdateOrder applies the fields present in req. When the product or the
// quantity changes, the total is recomputed from the product's current price.
// Stock is neither re-checked nor adjusted here. A sender or receiver with an
// empty name or id keeps the order's current value for it.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req models.UpdateOrderRequest) (*models.Order, error) {
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		req.CustomerName = &name
	}
	req.Sender = trimParty(req.Sender)
	req.Receiver = trimParty(req.Receiver)

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}
	if err := validateStruct(req, orderRequiredMsg); err != nil {
		return nil, err
	}

	update := models.OrderUpdate{
		CustomerName: req.CustomerName,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
	}
	if req.Sender != nil {
		sender := partyOrDefault(req.Sender, order.Sender)
		update.Sender = &sender
	}
	if req.Receiver != nil {
		receiver := partyOrDefault(req.Receiver, order.Receiver)
		update.Receiver = &receiver
	}

	if req.ProductID != nil || req.Quantity != nil {
		productID := order.ProductID
		if req.ProductID != nil {
			productID = *req.ProductID
		}
		quantity := order.Quantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, productErr(err)
		}
		total := orderTotal(product.Price, quantity)
		update.TotalAmount = &total
	}

	updated, err := s.orderRepo.Update(ctx, id, update)
	if err != nil {
		return nil, orderErr(err)
	}

	s.publish(ctx, events.OrderUpdated, updated)
	return updated, nil
}

// UpdateOrderStatus relabels an order. Every status may follow every other one.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, &ValidationError{
			Message: "Please provide status field",
			Fields:  map[string]string{"status": "is required"},
		}
	}

	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, &ValidationError{
			Message: "Status must be one of: " + joinStatuses(", "),
			Fields:  map[string]string{"status": fmt.Sprintf("%q is not a known status", status)},
		}
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, orderErr(err)
	}

	s.metrics.StatusChanged(ctx, next)
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// DeleteOrder removes an order permanently and returns its last state.
// The stock it consumed is not given back to the product.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}

	s.metrics.OrderDeleted(ctx)
	s.publish(ctx, events.OrderDeleted, order)
	return order, nil
}

// partyOrDefault fills the empty fields of p from def.
func partyOrDefault(p *models.Party, def models.Party) models.Party {
	if p == nil {
		return def
	}
	party := *p
	if party.Name == "" {
		party.Name = def.Name
	}
	if party.ID == "" {
		party.ID = def.ID
	}
	return party
}

// publish reports broker failures in the log only; the order change has already been stored.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn("failed to publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}

func trimParty(p *models.Party) *models.Party {
	if p == nil {
		return nil
	}
	return &models.Party{Name: strings.TrimSpace(p.Name), ID: strings.TrimSpace(p.ID)}
}

func joinStatuses(sep string) string {
	names := make([]string, len(models.OrderStatuses))
	for i, st := range models.OrderStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, sep)
}

func orderErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	}
	return err
}

package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopapi/internal/events"
	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/services"
)

var testParties = models.PartyDefaults{
	Sender:   models.Party{Name: "gulleid mohamed farah", ID: "4867444"},
	Receiver: models.Party{Name: "hooyo hinda hussein handulle", ID: "4115165"},
}

type orderFixture struct {
	service  *services.OrderService
	products *repositories.MemoryProductRepository
	orders   *repositories.MemoryOrderRepository
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	products := repositories.NewMemoryProductRepository()
	orders := repositories.NewMemoryOrderRepository(products)
	return &orderFixture{
		service:  services.NewOrderService(orders, products, testParties, nil, nil, nil),
		products: products,
		orders:   orders,
	}
}

func (f *orderFixture) addProduct(t *testing.T, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Widget", Price: price, Category: "tools", Stock: stock}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *orderFixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestOrderService_CreateOrderComputesTotalAndDecrementsStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 30.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 2, f.stockOf(t, product.ID))

	// A second order for the same quantity exceeds the remaining stock.
	_, err = f.service.CreateOrder(ctx, models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 3,
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, 2, f.stockOf(t, product.ID))
}

func TestOrderService_CreateOrderTotalsInDecimal(t *testing.T) {
	f := newOrderFixture(t)
	product := f.addProduct(t, 0.1, 10)

	order, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.3, order.TotalAmount)
}

func TestOrderService_CreateOrderExactStockSucceeds(t *testing.T) {
	f := newOrderFixture(t)
	product := f.addProduct(t, 4, 2)

	_, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, product.ID))
}

func TestOrderService_CreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: "missing", Quantity: 1,
	})
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderService_CreateOrderAppliesDefaultParties(t *testing.T) {
	f := newOrderFixture(t)
	product := f.addProduct(t, 1, 10)

	order, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "gulleid mohamed farah", order.Sender.Name)
	assert.Equal(t, "4867444", order.Sender.ID)
	assert.Equal(t, "hooyo hinda hussein handulle", order.Receiver.Name)
	assert.Equal(t, "4115165", order.Receiver.ID)
}

func TestOrderService_CreateOrderKeepsGivenParties(t *testing.T) {
	f := newOrderFixture(t)
	product := f.addProduct(t, 1, 10)

	order, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "  Amina  ",
		ProductID:    product.ID,
		Quantity:     1,
		Sender:       &models.Party{Name: " Depot ", ID: "S-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Amina", order.CustomerName)
	assert.Equal(t, models.Party{Name: "Depot", ID: "S-1"}, order.Sender)
	assert.Equal(t, testParties.Receiver, order.Receiver)
}

func TestOrderService_CreateOrderFillsPartialParties(t *testing.T) {
	f := newOrderFixture(t)
	product := f.addProduct(t, 1, 10)

	order, err := f.service.CreateOrder(context.Background(), models.CreateOrderRequest{
		CustomerName: "Amina",
		ProductID:    product.ID,
		Quantity:     1,
		Sender:       &models.Party{Name: "Custom"},
		Receiver:     &models.Party{ID: "  R-7 "},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Party{Name: "Custom", ID: "4867444"}, order.Sender)
	assert.Equal(t, models.Party{Name: "hooyo hinda hussein handulle", ID: "R-7"}, order.Receiver)
}

func TestOrderService_CreateOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateOrderRequest
		message string
		field   string
	}{
		{"missing customer", models.CreateOrderRequest{ProductID: "p", Quantity: 1},
			"Please provide all required fields: customerName, productId, quantity", "customerName"},
		{"missing product", models.CreateOrderRequest{CustomerName: "c", Quantity: 1},
			"Please provide all required fields: customerName, productId, quantity", "productId"},
		{"missing quantity", models.CreateOrderRequest{CustomerName: "c", ProductID: "p"},
			"Please provide all required fields: customerName, productId, quantity", "quantity"},
		{"negative quantity", models.CreateOrderRequest{CustomerName: "c", ProductID: "p", Quantity: -2},
			"Validation failed", "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			orders := new(MockOrderRepository)
			service := services.NewOrderService(orders, products, testParties, nil, nil, nil)

			_, err := service.CreateOrder(context.Background(), tt.req)

			var ve *services.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
			assert.Contains(t, ve.Fields, tt.field)
			products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CreateOrderStockWriteFailureKeepsOrder(t *testing.T) {
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	publisher := new(MockPublisher)
	service := services.NewOrderService(orders, products, testParties, publisher, nil, nil)
	ctx := context.Background()

	product := &models.Product{ID: "p1", Price: 2, Stock: 10}
	products.On("GetByID", ctx, "p1").Return(product, nil).Once()
	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	products.On("Update", ctx, "p1", models.ProductUpdate{Stock: ptr(7)}).Return(nil, errors.New("connection reset")).Once()

	_, err := service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: "p1", Quantity: 3})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, services.IsValidation(err))
	assert.NotErrorIs(t, err, services.ErrNotFound)
	// the order write is not rolled back
	orders.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*models.Order"))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	products.AssertExpectations(t)
}

func TestOrderService_CreateOrderPublishesEvent(t *testing.T) {
	products := repositories.NewMemoryProductRepository()
	orders := repositories.NewMemoryOrderRepository(products)
	publisher := new(MockPublisher)
	service := services.NewOrderService(orders, products, testParties, publisher, nil, nil)
	ctx := context.Background()

	product := &models.Product{Name: "Widget", Price: 5, Category: "tools", Stock: 3}
	require.NoError(t, products.Create(ctx, product))

	hasDeadline := mock.MatchedBy(func(c context.Context) bool {
		_, ok := c.Deadline()
		return ok
	})
	publisher.On("Publish", hasDeadline, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.OrderCreated && e.ProductID == product.ID && e.TotalAmount == 10
	})).Return(errors.New("broker down")).Once()

	// a publish failure does not fail the order
	order, err := service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	publisher.AssertExpectations(t)
}

func TestOrderService_GetOrderByIDExpandsProduct(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	created, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.service.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, order.Product)
	assert.Equal(t, &models.ProductSummary{ID: product.ID, Name: "Widget", Price: 10, Category: "tools"}, order.Product)

	all, err := f.service.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].Product)

	_, err = f.service.GetOrderByID(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_UpdateOrderRecomputesTotalWithoutStockCheck(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 2, f.stockOf(t, product.ID))

	updated, err := f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{Quantity: ptr(4)})
	require.NoError(t, err)

	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, 40.0, updated.TotalAmount)
	// 4 > remaining stock of 2, yet the update goes through and stock is untouched
	assert.Equal(t, 2, f.stockOf(t, product.ID))
	require.NotNil(t, updated.Product)
	assert.Equal(t, product.ID, updated.Product.ID)
}

func TestOrderService_UpdateOrderSwitchesProduct(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.addProduct(t, 10, 5)
	second := f.addProduct(t, 2.5, 1)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: first.ID, Quantity: 2})
	require.NoError(t, err)

	updated, err := f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{ProductID: ptr(second.ID)})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ProductID)
	assert.Equal(t, 5.0, updated.TotalAmount)
	assert.Equal(t, 1, f.stockOf(t, second.ID))
}

func TestOrderService_UpdateOrderLeavesAbsentFields(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "Amina", ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// a price change after the order was placed is not picked up without a product/quantity change
	_, err = f.products.Update(ctx, product.ID, models.ProductUpdate{Price: ptr(99.0)})
	require.NoError(t, err)

	receiver := models.Party{Name: "New Receiver", ID: "R-9"}
	updated, err := f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{
		CustomerName: ptr("Hodan"),
		Receiver:     &receiver,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hodan", updated.CustomerName)
	assert.Equal(t, receiver, updated.Receiver)
	assert.Equal(t, testParties.Sender, updated.Sender)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, 20.0, updated.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}

func TestOrderService_UpdateOrderPartialPartyKeepsCurrentValues(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{
		CustomerName: "Amina", ProductID: product.ID, Quantity: 1,
		Sender: &models.Party{Name: "Depot", ID: "S-1"},
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{
		Sender: &models.Party{Name: "Warehouse"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Party{Name: "Warehouse", ID: "S-1"}, updated.Sender)
	assert.Equal(t, testParties.Receiver, updated.Receiver)
}

func TestOrderService_UpdateMissingOrderReportsNotFoundFirst(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.UpdateOrder(context.Background(), "missing", models.UpdateOrderRequest{Quantity: ptr(0)})
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	assert.False(t, services.IsValidation(err))
}

func TestOrderService_UpdateOrderErrors(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.service.UpdateOrder(ctx, "missing", models.UpdateOrderRequest{Quantity: ptr(2)})
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{ProductID: ptr("missing")})
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, err = f.service.UpdateOrder(ctx, order.ID, models.UpdateOrderRequest{Quantity: ptr(0)})
	assert.True(t, services.IsValidation(err))

	unchanged, err := f.service.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, unchanged.ProductID)
	assert.Equal(t, 1, unchanged.Quantity)
}

func TestOrderService_UpdateOrderStatusAnyToAny(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 1, 10)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			_, err := f.service.UpdateOrderStatus(ctx, order.ID, string(from))
			require.NoError(t, err)

			updated, err := f.service.UpdateOrderStatus(ctx, order.ID, string(to))
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, updated.Status)
			assert.NotNil(t, updated.Product)
		}
	}
}

func TestOrderService_UpdateOrderStatusValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.service.UpdateOrderStatus(ctx, "any", "")
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please provide status field", ve.Message)

	_, err = f.service.UpdateOrderStatus(ctx, "any", "shipped")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Status must be one of: pending, processing, completed, cancelled", ve.Message)

	_, err = f.service.UpdateOrderStatus(ctx, "missing", "completed")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_DeleteOrderDoesNotRestoreStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	deleted, err := f.service.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)

	_, err = f.service.GetOrderByID(ctx, order.ID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	assert.Equal(t, 2, f.stockOf(t, product.ID))

	_, err = f.service.DeleteOrder(ctx, order.ID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_OrphanedOrderStillReadable(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, 10, 5)

	order, err := f.service.CreateOrder(ctx, models.CreateOrderRequest{CustomerName: "c", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.products.Delete(ctx, product.ID)
	require.NoError(t, err)

	orphan, err := f.service.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.Product)
	assert.Equal(t, product.ID, orphan.ProductID)
}

func TestOrderService_RepositoryFailurePassesThrough(t *testing.T) {
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	service := services.NewOrderService(orders, products, testParties, nil, nil, nil)
	ctx := context.Background()

	orders.On("GetAll", ctx).Return([]models.Order(nil), fmt.Errorf("failed to get all orders: %w", errors.New("timeout"))).Once()

	_, err := service.GetAllOrders(ctx)
	require.Error(t, err)
	assert.Equal(t, "failed to get all orders: timeout", err.Error())
	assert.NotErrorIs(t, err, services.ErrNotFound)
}

func TestOrderService_DefaultParties(t *testing.T) {
	f := newOrderFixture(t)
	assert.Equal(t, testParties, f.service.DefaultParties())
}

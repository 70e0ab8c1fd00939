package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/models"
	"shopapi/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/order")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/create", h.HandleCreateOrder)
	orderRoutes.Put("/update/:id", h.HandleUpdateOrder)
	orderRoutes.Put("/changestatus/:id", h.HandleUpdateOrderStatus)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetOrders lists every order with its product expanded.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err, "Error fetching orders")
	}
	return list(c, orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err, "Error fetching order")
	}
	return ok(c, fiber.StatusOK, "", order)
}

// HandleCreateOrder places a new order and takes its quantity out of stock.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.CreateOrder(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err, "Error creating order")
	}
	return ok(c, fiber.StatusCreated, "Order created successfully", order)
}

// HandleUpdateOrder applies a partial update. Status is not accepted here.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req models.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.UpdateOrder(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return fail(c, h.logger, err, "Error updating order")
	}
	return ok(c, fiber.StatusOK, "Order updated successfully", order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return fail(c, h.logger, err, "Error updating order status")
	}
	return ok(c, fiber.StatusOK, "Order status updated successfully", order)
}

// HandleDeleteOrder removes an order. The stock it consumed is not restored.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	order, err := h.service.DeleteOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err, "Error deleting order")
	}
	return ok(c, fiber.StatusOK, "Order deleted successfully", order)
}

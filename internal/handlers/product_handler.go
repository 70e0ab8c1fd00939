package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/models"
	"shopapi/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/create", h.HandleCreateProduct)
	productRoutes.Put("/update/:id", h.HandleUpdateProduct)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err, "Error fetching products")
	}
	return list(c, products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err, "Error fetching product")
	}
	return ok(c, fiber.StatusOK, "", product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err, "Error creating product")
	}
	return ok(c, fiber.StatusCreated, "Product created successfully", product)
}

// HandleUpdateProduct replaces the fields present in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var update models.ProductUpdate
	if err := c.BodyParser(&update); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return fail(c, h.logger, err, "Error updating product")
	}
	return ok(c, fiber.StatusOK, "Product updated successfully", product)
}

// HandleDeleteProduct deletes a product. Orders that reference it are kept.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err, "Error deleting product")
	}
	return ok(c, fiber.StatusOK, "Product deleted successfully", product)
}

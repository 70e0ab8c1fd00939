package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/services"
)

func ok(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func list[T any](c *fiber.Ctx, items []T) error {
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// fail writes the error envelope for err. Validation problems map to 400,
// missing records to 404, stock conflicts to 400; anything else is a 500
// carrying fallback as the message and the underlying error text.
// Validation failures also list the offending fields under "errors", keyed by
// JSON path, next to the usual "error" text.
func fail(c *fiber.Ctx, logger *slog.Logger, err error, fallback string) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		body := fiber.Map{"success": false, "message": ve.Message, "error": ve.Error()}
		if len(ve.Fields) > 0 {
			body["errors"] = ve.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)

	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Product not found"})

	case errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Order not found"})

	case errors.Is(err, services.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Insufficient stock available",
			"error":   err.Error(),
		})

	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	logger.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": fallback,
		"error":   err.Error(),
	})
}

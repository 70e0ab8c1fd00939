package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"shopapi/internal/handlers"
	"shopapi/internal/middleware"
	"shopapi/internal/models"
)

// Options wires the pieces the HTTP server is built from.
type Options struct {
	Logger         *slog.Logger
	StoreDriver    string
	Parties        models.PartyDefaults
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

var endpoints = fiber.Map{
	"products": fiber.Map{
		"getAll": "GET /product",
		"getOne": "GET /product/:id",
		"create": "POST /product/create",
		"update": "PUT /product/update/:id",
		"delete": "DELETE /product/:id",
	},
	"orders": fiber.Map{
		"getAll":       "GET /order",
		"getOne":       "GET /order/:id",
		"create":       "POST /order/create",
		"update":       "PUT /order/update/:id",
		"changeStatus": "PUT /order/changestatus/:id",
		"delete":       "DELETE /order/:id",
	},
}

// New builds the Fiber app with every route registered.
func New(opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      "shopapi",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Welcome to the shop API",
			"endpoints": endpoints,
			"defaults": fiber.Map{
				"sender":   opts.Parties.Sender,
				"receiver": opts.Parties.Receiver,
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"store":  opts.StoreDriver,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics))
	}

	if opts.ProductHandler != nil {
		opts.ProductHandler.RegisterRoutes(app)
	}
	if opts.OrderHandler != nil {
		opts.OrderHandler.RegisterRoutes(app)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})

	return app
}

// ErrorHandler answers errors no handler turned into a response, panics included.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong!",
			"error":   err.Error(),
		})
	}
}

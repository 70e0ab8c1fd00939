package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"shopapi/internal/config"
	"shopapi/internal/events"
	"shopapi/internal/handlers"
	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/server"
	"shopapi/internal/services"
	"shopapi/internal/telemetry"
	"shopapi/pkg/rabbitmq"
)

const (
	serviceName    = "shopapi"
	serviceVersion = "1.0.0"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	stores, err := repositories.Open(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if cfg.SeedProducts {
		seedProducts(ctx, stores.Products, logger)
	}

	// --- Events ---
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	// --- Metrics ---
	var (
		metricsHandler http.Handler
		orderMetrics   *telemetry.OrderMetrics
	)
	if cfg.MetricsEnabled {
		handler, shutdown, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer shutdown(context.Background())

		if orderMetrics, err = telemetry.NewOrderMetrics(otel.Meter(serviceName)); err != nil {
			return fmt.Errorf("failed to create order metrics: %w", err)
		}
		metricsHandler = handler
	}

	// --- Services and handlers ---
	productService := services.NewProductService(stores.Products)
	orderService := services.NewOrderService(stores.Orders, stores.Products, cfg.Parties, publisher, orderMetrics, logger)

	app := server.New(server.Options{
		Logger:         logger,
		StoreDriver:    stores.Driver,
		Parties:        orderService.DefaultParties(),
		ProductHandler: handlers.NewProductHandler(productService, logger),
		OrderHandler:   handlers.NewOrderHandler(orderService, logger),
		Metrics:        metricsHandler,
	})

	// --- HTTP server ---
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.AppPort, "store", stores.Driver, "events", cfg.EventsDriver)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

// newPublisher connects the event backend selected by cfg.EventsDriver.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsRabbitMQ:
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		if cfg.EventsConsume {
			if err := client.Consume(events.LogHandler(logger)); err != nil {
				client.Close()
				return nil, err
			}
		}
		return events.NewRabbitMQPublisher(client), nil

	case config.EventsKafka:
		logger.Info("publishing order events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil

	case config.EventsNone, "":
		return events.NopPublisher{}, nil

	default:
		return nil, errors.New("unsupported events driver " + cfg.EventsDriver)
	}
}

// seedProducts adds a few products to an empty store.
func seedProducts(ctx context.Context, repo repositories.ProductRepository, logger *slog.Logger) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		logger.Warn("skipping product seed", "error", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Laptop", Price: 1200.00, Category: "electronics", Stock: 10},
		{Name: "Keyboard", Price: 75.00, Category: "electronics", Stock: 25},
		{Name: "Mouse", Price: 25.00, Category: "electronics", Stock: 50},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			logger.Error("failed to seed product", "name", products[i].Name, "error", err)
			continue
		}
		logger.Info("seeded product", "name", products[i].Name, "id", products[i].ID)
	}
}

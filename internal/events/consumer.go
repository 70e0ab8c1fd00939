package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// LogHandler returns a RabbitMQ delivery handler that decodes order events and
// logs them. Undecodable bodies are reported as errors so the client nacks them.
func LogHandler(logger *slog.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event Event
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode order event: %w", err)
		}
		logger.Info("received order event",
			"type", event.Type,
			"order_id", event.OrderID,
			"product_id", event.ProductID,
			"status", event.Status,
			"routing_key", msg.RoutingKey,
		)
		return nil
	}
}

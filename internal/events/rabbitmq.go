package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// amqpPublisher is the part of rabbitmq.Client used for publishing.
type amqpPublisher interface {
	Publish(routingKey string, body []byte) error
	Close() error
}

// RabbitMQPublisher publishes events to a topic exchange with the event type as routing key.
type RabbitMQPublisher struct {
	client amqpPublisher
}

// NewRabbitMQPublisher wraps a connected RabbitMQ client.
func NewRabbitMQPublisher(client amqpPublisher) *RabbitMQPublisher {
	return &RabbitMQPublisher{client: client}
}

func (p *RabbitMQPublisher) Publish(_ context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return p.client.Publish(event.Type, body)
}

func (p *RabbitMQPublisher) Close() error {
	return p.client.Close()
}

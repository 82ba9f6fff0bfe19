package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"palantir/internal/errors"
)

// Publisher is the slice of *amqp.Channel the gateway needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQGateway publishes shipping-progress messages to a fanout exchange.
type RabbitMQGateway struct {
	publisher Publisher
	exchange  string
	now       func() time.Time
}

func NewRabbitMQGateway(publisher Publisher, exchange string) *RabbitMQGateway {
	return &RabbitMQGateway{
		publisher: publisher,
		exchange:  exchange,
		now:       time.Now,
	}
}

func (g *RabbitMQGateway) SendShippingProgress(ctx context.Context, msg ShippingProgress) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding shipping progress: %w", err)
	}

	err = g.publisher.PublishWithContext(
		ctx,
		g.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    g.now().UTC(),
			Type:         "shipping_progress",
			Body:         body,
		})
	if err != nil {
		return errors.NewTransientDependencyError("rabbitmq", err)
	}

	return nil
}

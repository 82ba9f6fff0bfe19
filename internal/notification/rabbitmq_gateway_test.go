package notification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"palantir/internal/domain"
	"palantir/internal/errors"
)

type mockPublisher struct {
	publishFunc func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.publishFunc(ctx, exchange, key, mandatory, immediate, msg)
}

func TestRabbitMQGateway_SendShippingProgress(t *testing.T) {
	var published amqp.Publishing
	var exchangeUsed string
	publisher := &mockPublisher{
		publishFunc: func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			exchangeUsed = exchange
			published = msg
			return nil
		},
	}

	gateway := NewRabbitMQGateway(publisher, "shipping_progress_fanout")
	err := gateway.SendShippingProgress(context.Background(), ShippingProgress{
		BuyerID:               42,
		OrderID:               7,
		TrackedOrderID:        3,
		Status:                domain.OrderStatusShipped,
		EstimatedDeliveryDate: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "shipping_progress_fanout", exchangeUsed)
	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.NotEmpty(t, published.MessageId)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(published.Body, &body))
	assert.Equal(t, float64(42), body["buyerId"])
	assert.Equal(t, "SHIPPED", body["status"])
}

func TestRabbitMQGateway_PublishFailure(t *testing.T) {
	publisher := &mockPublisher{
		publishFunc: func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			return amqp.ErrClosed
		},
	}

	gateway := NewRabbitMQGateway(publisher, "x")
	err := gateway.SendShippingProgress(context.Background(), ShippingProgress{BuyerID: 1})

	tde, ok := errors.IsTransientDependencyError(err)
	require.True(t, ok)
	assert.Equal(t, "rabbitmq", tde.Dependency)
	assert.True(t, stderrors.Is(err, amqp.ErrClosed))
}

func TestLogGateway_SendShippingProgress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gateway := NewLogGateway(zap.New(core))

	err := gateway.SendShippingProgress(context.Background(), ShippingProgress{
		BuyerID: 42,
		Status:  domain.OrderStatusOutForDelivery,
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shipping progress notification", entry.Message)
	assert.Equal(t, "OUT_FOR_DELIVERY", entry.ContextMap()["status"])
}

// Package notification delivers shipping-progress messages to buyers outside
// the request path.
package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"palantir/internal/domain"
)

// ShippingProgress is the message a buyer receives when their order reaches
// an in-transit status.
type ShippingProgress struct {
	BuyerID               uint               `json:"buyerId"`
	OrderID               uint               `json:"orderId"`
	TrackedOrderID        uint               `json:"trackedOrderId"`
	Status                domain.OrderStatus `json:"status"`
	EstimatedDeliveryDate time.Time          `json:"estimatedDeliveryDate"`
}

type Gateway interface {
	SendShippingProgress(ctx context.Context, msg ShippingProgress) error
}

// LogGateway writes messages to the log instead of a broker. It is used when
// RabbitMQ is disabled.
type LogGateway struct {
	logger *zap.Logger
}

func NewLogGateway(logger *zap.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) SendShippingProgress(ctx context.Context, msg ShippingProgress) error {
	g.logger.Info("shipping progress notification",
		zap.Uint("buyerId", msg.BuyerID),
		zap.Uint("orderId", msg.OrderID),
		zap.Uint("trackedOrderId", msg.TrackedOrderID),
		zap.String("status", msg.Status.String()),
		zap.Time("estimatedDeliveryDate", msg.EstimatedDeliveryDate),
	)
	return nil
}

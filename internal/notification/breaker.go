package notification

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"palantir/internal/errors"
	"palantir/internal/infrastructure/metrics"
)

type BreakerSettings struct {
	Name             string
	Timeout          time.Duration
	FailureThreshold uint32
}

// CircuitBreakerGateway stops calling the wrapped gateway after repeated
// failures and fails fast until the breaker half-opens again.
type CircuitBreakerGateway struct {
	next   Gateway
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
}

func NewCircuitBreakerGateway(next Gateway, settings BreakerSettings, m *metrics.Metrics, logger *zap.Logger) *CircuitBreakerGateway {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	if m != nil {
		m.CircuitBreakerState.WithLabelValues(settings.Name).Set(float64(gobreaker.StateClosed))
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})

	return &CircuitBreakerGateway{
		next:   next,
		cb:     cb,
		name:   settings.Name,
		logger: logger,
	}
}

func (g *CircuitBreakerGateway) SendShippingProgress(ctx context.Context, msg ShippingProgress) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.SendShippingProgress(ctx, msg)
	})

	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.NewTransientDependencyError(g.name, err)
	}

	return err
}

func (g *CircuitBreakerGateway) State() gobreaker.State {
	return g.cb.State()
}

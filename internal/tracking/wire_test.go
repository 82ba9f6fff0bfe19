package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palantir/internal/config"
	"palantir/internal/dto"
	"palantir/internal/infrastructure/metrics"
	"palantir/internal/notification"
)

type noopDispatcher struct{}

func (noopDispatcher) Submit(job notification.Job) bool { return true }

func TestNewModule_MemoryDriver(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Driver: config.StorageDriverMemory,
			Orders: []config.SeedOrder{{ID: 7, BuyerID: 42}},
		},
	}

	module, err := NewModule(nil, cfg, notification.NewLogGateway(zap.NewNop()), noopDispatcher{}, metrics.New(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, module.Controller)

	id, err := module.Service.CreateTrackedOrder(context.Background(), dto.CreateTrackedOrderCommand{
		OrderID:               7,
		EstimatedDeliveryDate: time.Now().AddDate(0, 0, 5),
		DeliveryAddress:       "221B Baker Street",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestNewModule_MySQLDriverNeedsDatabase(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMySQL}}

	_, err := NewModule(nil, cfg, notification.NewLogGateway(zap.NewNop()), noopDispatcher{}, metrics.New(), zap.NewNop())
	assert.Error(t, err)
}

func TestNewModule_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "postgres"}}

	_, err := NewModule(nil, cfg, notification.NewLogGateway(zap.NewNop()), noopDispatcher{}, metrics.New(), zap.NewNop())
	assert.Error(t, err)
}

package tracking

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"palantir/internal/config"
	"palantir/internal/domain"
	"palantir/internal/infrastructure/metrics"
	"palantir/internal/notification"
	"palantir/internal/tracking/controller"
	"palantir/internal/tracking/memory"
	"palantir/internal/tracking/repository"
	"palantir/internal/tracking/service"
	"palantir/internal/tracking/store"
)

type Module struct {
	Service    *service.TrackingService
	Controller *controller.TrackingController
}

// NewModule wires the tracking engine onto the store named by
// cfg.Storage.Driver. db may be nil for the memory driver.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	gateway notification.Gateway,
	dispatcher service.Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Module, error) {
	var (
		txManager   store.TransactionManager
		orders      store.TrackedOrderReader
		checkpoints store.CheckpointReader
		lookup      store.OrderLookup
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMySQL, "":
		if db == nil {
			return nil, fmt.Errorf("storage driver %q needs a database connection", config.StorageDriverMySQL)
		}
		orderRepo := repository.NewMySQLTrackedOrderRepository(db)
		checkpointRepo := repository.NewMySQLCheckpointRepository(db)
		txManager = repository.NewMySQLTransactionManager(db, orderRepo, checkpointRepo)
		orders = orderRepo
		checkpoints = checkpointRepo
		lookup = repository.NewMySQLOrderRepository(db)
	case config.StorageDriverMemory:
		st := memory.NewStore()
		book := memory.NewOrderBook()
		for _, seed := range cfg.Storage.Orders {
			book.Put(domain.Order{ID: seed.ID, BuyerID: seed.BuyerID})
		}
		txManager = st
		orders = st.TrackedOrders()
		checkpoints = st.Checkpoints()
		lookup = book
		logger.Warn("tracking uses in-memory storage", zap.Int("seededOrders", len(cfg.Storage.Orders)))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	svc := service.NewTrackingService(
		txManager,
		orders,
		checkpoints,
		lookup,
		gateway,
		dispatcher,
		m,
		logger,
		service.Settings{
			TxTimeout:        cfg.Tracking.TxTimeout,
			MaxRetryAttempts: cfg.Tracking.MaxRetryAttempts,
		},
	)

	return &Module{
		Service:    svc,
		Controller: controller.NewTrackingController(svc, logger),
	}, nil
}

package waitlist

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"palantir/internal/config"
	"palantir/internal/infrastructure/metrics"
	"palantir/internal/waitlist/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*Controller, error) {
	var (
		waitlist      WaitlistRepository
		notifications NotificationRepository
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMySQL, "":
		if db == nil {
			return nil, fmt.Errorf("storage driver %q needs a database connection", config.StorageDriverMySQL)
		}
		waitlist = repository.NewMySQLWaitlistRepository(db)
		notifications = repository.NewMySQLNotificationRepository(db)
	case config.StorageDriverMemory:
		waitlist = NewMemoryWaitlist()
		notifications = NewMemoryNotifications()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	scheduler := NewScheduler(waitlist, notifications, m, logger)
	return NewController(scheduler, logger), nil
}

// Package store declares the persistence capabilities the tracking engine
// depends on. The MySQL repositories and the in-memory store both implement
// them; the implementation is chosen once when the module is wired.
package store

import (
	"context"
	"time"

	"palantir/internal/domain"
)

// TrackedOrderReader is the read side of the tracked order registry.
type TrackedOrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.TrackedOrder, error)
	FindByOrderID(ctx context.Context, orderID uint) (*domain.TrackedOrder, error)
}

// CheckpointReader is the read side of the checkpoint store. FindAllByTrackedOrderID
// returns checkpoints oldest first.
type CheckpointReader interface {
	FindByID(ctx context.Context, id uint) (*domain.OrderCheckpoint, error)
	FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error)
}

// TrackedOrderWriter is the registry as seen from inside a unit of work.
type TrackedOrderWriter interface {
	// LockByID loads the tracked order and holds it until the unit of work ends.
	LockByID(ctx context.Context, id uint) (*domain.TrackedOrder, error)
	Insert(ctx context.Context, order domain.TrackedOrder) (uint, error)
	UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error
	UpdateEstimatedDeliveryDate(ctx context.Context, id uint, date time.Time) error
	Delete(ctx context.Context, id uint) error
}

// CheckpointWriter is the checkpoint store as seen from inside a unit of work.
type CheckpointWriter interface {
	Insert(ctx context.Context, checkpoint domain.OrderCheckpoint) (uint, error)
	FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error)
	UpdateDetails(ctx context.Context, id uint, description string, location *string) error
	Delete(ctx context.Context, id uint) error
}

// UnitOfWork groups registry and checkpoint writes so they commit or roll
// back together. Rollback after Commit is a no-op.
type UnitOfWork interface {
	TrackedOrders() TrackedOrderWriter
	Checkpoints() CheckpointWriter
	Commit() error
	Rollback() error
}

type TransactionManager interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// OrderLookup resolves purchase orders owned by the wider marketplace.
type OrderLookup interface {
	GetOrderByID(ctx context.Context, orderID uint) (*domain.Order, error)
}

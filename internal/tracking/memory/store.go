// Package memory keeps tracked orders and checkpoints in process memory. It
// implements the same store capabilities as the MySQL repositories and is
// selected with storage.driver=memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"palantir/internal/domain"
	"palantir/internal/errors"
	"palantir/internal/tracking/store"
)

type state struct {
	orders         map[uint]domain.TrackedOrder
	checkpoints    map[uint]domain.OrderCheckpoint
	nextOrderID    uint
	nextCheckpoint uint
}

func (s *state) clone() *state {
	c := &state{
		orders:         make(map[uint]domain.TrackedOrder, len(s.orders)),
		checkpoints:    make(map[uint]domain.OrderCheckpoint, len(s.checkpoints)),
		nextOrderID:    s.nextOrderID,
		nextCheckpoint: s.nextCheckpoint,
	}
	for id, o := range s.orders {
		c.orders[id] = o
	}
	for id, cp := range s.checkpoints {
		c.checkpoints[id] = cp
	}
	return c
}

// Store is a single-writer store: Begin holds the write lock until the unit of
// work commits or rolls back, readers see only committed state.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: &state{
			orders:         make(map[uint]domain.TrackedOrder),
			checkpoints:    make(map[uint]domain.OrderCheckpoint),
			nextOrderID:    1,
			nextCheckpoint: 1,
		},
		now: time.Now,
	}
}

func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	return &unitOfWork{store: s, work: s.state.clone()}, nil
}

// TrackedOrders returns the committed-state reader for tracked orders.
func (s *Store) TrackedOrders() *TrackedOrderRepository {
	return &TrackedOrderRepository{store: s}
}

// Checkpoints returns the committed-state reader for checkpoints.
func (s *Store) Checkpoints() *CheckpointRepository {
	return &CheckpointRepository{store: s}
}

type TrackedOrderRepository struct {
	store *Store
}

func (r *TrackedOrderRepository) FindByID(ctx context.Context, id uint) (*domain.TrackedOrder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.state.orders[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id))
	}
	return &o, nil
}

func (r *TrackedOrderRepository) FindByOrderID(ctx context.Context, orderID uint) (*domain.TrackedOrder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if o, ok := findByOrderID(r.store.state, orderID); ok {
		return &o, nil
	}
	return nil, errors.NewNotFoundError(fmt.Sprintf("tracked order for order %d not found", orderID))
}

type CheckpointRepository struct {
	store *Store
}

func (r *CheckpointRepository) FindByID(ctx context.Context, id uint) (*domain.OrderCheckpoint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cp, ok := r.store.state.checkpoints[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id))
	}
	return copyCheckpoint(cp), nil
}

func (r *CheckpointRepository) FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return checkpointsOf(r.store.state, trackedOrderID), nil
}

func findByOrderID(s *state, orderID uint) (domain.TrackedOrder, bool) {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return domain.TrackedOrder{}, false
}

func checkpointsOf(s *state, trackedOrderID uint) []domain.OrderCheckpoint {
	out := []domain.OrderCheckpoint{}
	for _, cp := range s.checkpoints {
		if cp.TrackedOrderID == trackedOrderID {
			out = append(out, *copyCheckpoint(cp))
		}
	}
	domain.SortCheckpoints(out)
	return out
}

func copyCheckpoint(cp domain.OrderCheckpoint) *domain.OrderCheckpoint {
	if cp.Location != nil {
		loc := *cp.Location
		cp.Location = &loc
	}
	return &cp
}

package memory

import (
	"context"
	"fmt"
	"time"

	"palantir/internal/domain"
	"palantir/internal/errors"
	"palantir/internal/tracking/store"
)

// unitOfWork mutates a private copy of the store state. Commit publishes the
// copy; Rollback drops it. Either one releases the store's write lock.
type unitOfWork struct {
	store *Store
	work  *state
	done  bool
}

func (u *unitOfWork) TrackedOrders() store.TrackedOrderWriter { return (*uowTrackedOrders)(u) }
func (u *unitOfWork) Checkpoints() store.CheckpointWriter { return (*uowCheckpoints)(u) }

func (u *unitOfWork) Commit() error {
	if u.done {
		return fmt.Errorf("unit of work already finished")
	}
	u.done = true
	u.store.state = u.work
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) active() error {
	if u.done {
		return fmt.Errorf("unit of work already finished")
	}
	return nil
}

type uowTrackedOrders unitOfWork

func (w *uowTrackedOrders) LockByID(ctx context.Context, id uint) (*domain.TrackedOrder, error) {
	if err := (*unitOfWork)(w).active(); err != nil {
		return nil, err
	}
	o, ok := w.work.orders[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id))
	}
	return &o, nil
}

func (w *uowTrackedOrders) Insert(ctx context.Context, order domain.TrackedOrder) (uint, error) {
	if err := (*unitOfWork)(w).active(); err != nil {
		return 0, err
	}
	if _, exists := findByOrderID(w.work, order.OrderID); exists {
		return 0, errors.NewConflictError(fmt.Sprintf("order %d is already tracked", order.OrderID))
	}

	now := w.store.now().UTC()
	order.ID = w.work.nextOrderID
	order.CreatedAt = now
	order.UpdatedAt = now
	w.work.orders[order.ID] = order
	w.work.nextOrderID++

	return order.ID, nil
}

func (w *uowTrackedOrders) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	return w.update(id, func(o *domain.TrackedOrder) { o.CurrentStatus = status })
}

func (w *uowTrackedOrders) UpdateEstimatedDeliveryDate(ctx context.Context, id uint, date time.Time) error {
	return w.update(id, func(o *domain.TrackedOrder) { o.EstimatedDeliveryDate = date })
}

func (w *uowTrackedOrders) update(id uint, apply func(*domain.TrackedOrder)) error {
	if err := (*unitOfWork)(w).active(); err != nil {
		return err
	}
	o, ok := w.work.orders[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id))
	}
	apply(&o)
	o.UpdatedAt = w.store.now().UTC()
	w.work.orders[id] = o
	return nil
}

func (w *uowTrackedOrders) Delete(ctx context.Context, id uint) error {
	if err := (*unitOfWork)(w).active(); err != nil {
		return err
	}
	if _, ok := w.work.orders[id]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id))
	}
	delete(w.work.orders, id)
	for cpID, cp := range w.work.checkpoints {
		if cp.TrackedOrderID == id {
			delete(w.work.checkpoints, cpID)
		}
	}
	return nil
}

type uowCheckpoints unitOfWork

func (w *uowCheckpoints) Insert(ctx context.Context, cp domain.OrderCheckpoint) (uint, error) {
	if err := (*unitOfWork)(w).active(); err != nil {
		return 0, err
	}
	if _, ok := w.work.orders[cp.TrackedOrderID]; !ok {
		return 0, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", cp.TrackedOrderID))
	}

	cp.ID = w.work.nextCheckpoint
	w.work.checkpoints[cp.ID] = *copyCheckpoint(cp)
	w.work.nextCheckpoint++

	return cp.ID, nil
}

func (w *uowCheckpoints) FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	if err := (*unitOfWork)(w).active(); err != nil {
		return nil, err
	}
	return checkpointsOf(w.work, trackedOrderID), nil
}

func (w *uowCheckpoints) UpdateDetails(ctx context.Context, id uint, description string, location *string) error {
	if err := (*unitOfWork)(w).active(); err != nil {
		return err
	}
	cp, ok := w.work.checkpoints[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id))
	}
	cp.Description = description
	cp.Location = location
	w.work.checkpoints[id] = *copyCheckpoint(cp)
	return nil
}

func (w *uowCheckpoints) Delete(ctx context.Context, id uint) error {
	if err := (*unitOfWork)(w).active(); err != nil {
		return err
	}
	if _, ok := w.work.checkpoints[id]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id))
	}
	delete(w.work.checkpoints, id)
	return nil
}

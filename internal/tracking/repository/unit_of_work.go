package repository

import (
	"context"
	"database/sql"
	"time"

	"palantir/internal/domain"
	"palantir/internal/tracking/store"
)

// MySQLTransactionManager opens units of work backed by a single *sql.Tx.
type MySQLTransactionManager struct {
	db          *sql.DB
	orders      *MySQLTrackedOrderRepository
	checkpoints *MySQLCheckpointRepository
}

func NewMySQLTransactionManager(db *sql.DB, orders *MySQLTrackedOrderRepository, checkpoints *MySQLCheckpointRepository) *MySQLTransactionManager {
	return &MySQLTransactionManager{
		db:          db,
		orders:      orders,
		checkpoints: checkpoints,
	}
}

func (m *MySQLTransactionManager) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}

	return &unitOfWork{
		tx:          tx,
		orders:      &txTrackedOrders{repo: m.orders, tx: tx},
		checkpoints: &txCheckpoints{repo: m.checkpoints, tx: tx},
	}, nil
}

type unitOfWork struct {
	tx          *sql.Tx
	orders      *txTrackedOrders
	checkpoints *txCheckpoints
}

func (u *unitOfWork) TrackedOrders() store.TrackedOrderWriter { return u.orders }
func (u *unitOfWork) Checkpoints() store.CheckpointWriter { return u.checkpoints }
func (u *unitOfWork) Commit() error { return u.tx.Commit() }

func (u *unitOfWork) Rollback() error {
	err := u.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

type txTrackedOrders struct {
	repo *MySQLTrackedOrderRepository
	tx   *sql.Tx
}

func (t *txTrackedOrders) LockByID(ctx context.Context, id uint) (*domain.TrackedOrder, error) {
	return t.repo.FindByIDForUpdate(ctx, t.tx, id)
}

func (t *txTrackedOrders) Insert(ctx context.Context, order domain.TrackedOrder) (uint, error) {
	return t.repo.Insert(ctx, t.tx, order)
}

func (t *txTrackedOrders) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	return t.repo.UpdateStatus(ctx, t.tx, id, status)
}

func (t *txTrackedOrders) UpdateEstimatedDeliveryDate(ctx context.Context, id uint, date time.Time) error {
	return t.repo.UpdateEstimatedDeliveryDate(ctx, t.tx, id, date)
}

func (t *txTrackedOrders) Delete(ctx context.Context, id uint) error {
	return t.repo.Delete(ctx, t.tx, id)
}

type txCheckpoints struct {
	repo *MySQLCheckpointRepository
	tx   *sql.Tx
}

func (t *txCheckpoints) Insert(ctx context.Context, cp domain.OrderCheckpoint) (uint, error) {
	return t.repo.Insert(ctx, t.tx, cp)
}

func (t *txCheckpoints) FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	return t.repo.FindAllByTrackedOrderIDTx(ctx, t.tx, trackedOrderID)
}

func (t *txCheckpoints) UpdateDetails(ctx context.Context, id uint, description string, location *string) error {
	return t.repo.UpdateDetails(ctx, t.tx, id, description, location)
}

func (t *txCheckpoints) Delete(ctx context.Context, id uint) error {
	return t.repo.Delete(ctx, t.tx, id)
}

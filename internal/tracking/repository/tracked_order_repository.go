package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"palantir/internal/domain"
	"palantir/internal/errors"
)

const trackedOrderColumns = `id, orderId, currentStatus, estimatedDeliveryDate, deliveryAddress, createdAt, updatedAt`

type MySQLTrackedOrderRepository struct {
	db *sql.DB
}

func NewMySQLTrackedOrderRepository(db *sql.DB) *MySQLTrackedOrderRepository {
	return &MySQLTrackedOrderRepository{db: db}
}

func (r *MySQLTrackedOrderRepository) FindByID(ctx context.Context, id uint) (*domain.TrackedOrder, error) {
	query := `SELECT ` + trackedOrderColumns + ` FROM TrackedOrders WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), fmt.Sprintf("tracked order with id %d not found", id))
}

func (r *MySQLTrackedOrderRepository) FindByOrderID(ctx context.Context, orderID uint) (*domain.TrackedOrder, error) {
	query := `SELECT ` + trackedOrderColumns + ` FROM TrackedOrders WHERE orderId = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, orderID), fmt.Sprintf("tracked order for order %d not found", orderID))
}

// FindByIDForUpdate takes a row lock that serializes concurrent writers of the
// same tracked order until tx ends.
func (r *MySQLTrackedOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.TrackedOrder, error) {
	query := `SELECT ` + trackedOrderColumns + ` FROM TrackedOrders WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, query, id), fmt.Sprintf("tracked order with id %d not found", id))
}

func (r *MySQLTrackedOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.TrackedOrder) (uint, error) {
	query := `
		INSERT INTO TrackedOrders (orderId, currentStatus, estimatedDeliveryDate, deliveryAddress)
		VALUES (?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		order.OrderID, string(order.CurrentStatus), order.EstimatedDeliveryDate, order.DeliveryAddress,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, errors.NewConflictError(fmt.Sprintf("order %d is already tracked", order.OrderID))
		}
		return 0, fmt.Errorf("inserting tracked order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLTrackedOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error {
	query := `UPDATE TrackedOrders SET currentStatus = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("updating tracked order status: %w", err)
	}

	if err := expectOneRow(result, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id))); err != nil {
		return err
	}

	return nil
}

func (r *MySQLTrackedOrderRepository) UpdateEstimatedDeliveryDate(ctx context.Context, tx *sql.Tx, id uint, date time.Time) error {
	query := `UPDATE TrackedOrders SET estimatedDeliveryDate = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, date, id)
	if err != nil {
		return fmt.Errorf("updating estimated delivery date: %w", err)
	}

	return expectOneRow(result, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id)))
}

// Delete removes the tracked order; its checkpoints go with it through the
// foreign key cascade.
func (r *MySQLTrackedOrderRepository) Delete(ctx context.Context, tx *sql.Tx, id uint) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM TrackedOrders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tracked order: %w", err)
	}

	return expectOneRow(result, errors.NewNotFoundError(fmt.Sprintf("tracked order with id %d not found", id)))
}

func (r *MySQLTrackedOrderRepository) scanOne(row *sql.Row, notFoundMsg string) (*domain.TrackedOrder, error) {
	var order domain.TrackedOrder
	err := row.Scan(
		&order.ID, &order.OrderID, &order.CurrentStatus, &order.EstimatedDeliveryDate,
		&order.DeliveryAddress, &order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tracked order: %w", err)
	}

	return &order, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

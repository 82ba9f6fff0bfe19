package repository

import (
	"context"
	"database/sql"
	"fmt"

	"palantir/internal/domain"
	"palantir/internal/errors"
)

const checkpointColumns = `id, trackedOrderId, timestamp, location, description, status`

type MySQLCheckpointRepository struct {
	db *sql.DB
}

func NewMySQLCheckpointRepository(db *sql.DB) *MySQLCheckpointRepository {
	return &MySQLCheckpointRepository{db: db}
}

func (r *MySQLCheckpointRepository) FindByID(ctx context.Context, id uint) (*domain.OrderCheckpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM OrderCheckpoints WHERE id = ?`

	var cp domain.OrderCheckpoint
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cp.ID, &cp.TrackedOrderID, &cp.Timestamp, &cp.Location, &cp.Description, &cp.Status,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying checkpoint by id: %w", err)
	}

	return &cp, nil
}

func (r *MySQLCheckpointRepository) FindAllByTrackedOrderID(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	return r.findAll(ctx, r.db, trackedOrderID)
}

// FindAllByTrackedOrderIDTx reads the history inside tx so it observes the
// transaction's own writes.
func (r *MySQLCheckpointRepository) FindAllByTrackedOrderIDTx(ctx context.Context, tx *sql.Tx, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	return r.findAll(ctx, tx, trackedOrderID)
}

func (r *MySQLCheckpointRepository) Insert(ctx context.Context, tx *sql.Tx, cp domain.OrderCheckpoint) (uint, error) {
	query := `
		INSERT INTO OrderCheckpoints (trackedOrderId, timestamp, location, description, status)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		cp.TrackedOrderID, cp.Timestamp.UTC(), cp.Location, cp.Description, string(cp.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting checkpoint: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLCheckpointRepository) UpdateDetails(ctx context.Context, tx *sql.Tx, id uint, description string, location *string) error {
	query := `UPDATE OrderCheckpoints SET description = ?, location = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, description, location, id)
	if err != nil {
		return fmt.Errorf("updating checkpoint details: %w", err)
	}

	return expectOneRow(result, errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id)))
}

func (r *MySQLCheckpointRepository) Delete(ctx context.Context, tx *sql.Tx, id uint) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM OrderCheckpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting checkpoint: %w", err)
	}

	return expectOneRow(result, errors.NewNotFoundError(fmt.Sprintf("checkpoint with id %d not found", id)))
}

func (r *MySQLCheckpointRepository) findAll(ctx context.Context, q querier, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM OrderCheckpoints
		WHERE trackedOrderId = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, trackedOrderID)
	if err != nil {
		return nil, fmt.Errorf("querying checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []domain.OrderCheckpoint
	for rows.Next() {
		var cp domain.OrderCheckpoint
		err := rows.Scan(&cp.ID, &cp.TrackedOrderID, &cp.Timestamp, &cp.Location, &cp.Description, &cp.Status)
		if err != nil {
			return nil, fmt.Errorf("scanning checkpoint row: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checkpoint rows: %w", err)
	}

	return checkpoints, nil
}

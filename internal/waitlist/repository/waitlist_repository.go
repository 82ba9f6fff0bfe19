package repository

import (
	"context"
	"database/sql"
	"fmt"

	"palantir/internal/domain"
)

type MySQLWaitlistRepository struct {
	db *sql.DB
}

func NewMySQLWaitlistRepository(db *sql.DB) *MySQLWaitlistRepository {
	return &MySQLWaitlistRepository{db: db}
}

// GetUsersInWaitlist returns the queue for productID, front of the queue first.
func (r *MySQLWaitlistRepository) GetUsersInWaitlist(ctx context.Context, productID uint) ([]domain.WaitlistEntry, error) {
	query := `
		SELECT id, userId, productId, positionInQueue, joinedAt
		FROM UserWaitList
		WHERE productId = ?
		ORDER BY positionInQueue ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("querying waitlist: %w", err)
	}
	defer rows.Close()

	entries := []domain.WaitlistEntry{}
	for rows.Next() {
		var e domain.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.PositionInQueue, &e.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning waitlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waitlist: %w", err)
	}

	return entries, nil
}

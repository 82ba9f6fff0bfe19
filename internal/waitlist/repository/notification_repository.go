package repository

import (
	"context"
	"database/sql"
	"fmt"

	"palantir/internal/domain"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

func (r *MySQLNotificationRepository) AddNotification(ctx context.Context, n domain.Notification) (uint, error) {
	query := `
		INSERT INTO Notifications (recipientId, category, productId, orderId, content, timestamp, isRead)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		n.RecipientID, string(n.Category), n.ProductID, n.OrderID, n.Content, n.Timestamp, n.IsRead,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting notification: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// FindByRecipient lists a recipient's notifications, oldest first.
func (r *MySQLNotificationRepository) FindByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error) {
	query := `
		SELECT id, recipientId, category, productId, orderId, content, timestamp, isRead
		FROM Notifications
		WHERE recipientId = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var (
			n         domain.Notification
			category  string
			productID sql.NullInt64
			orderID   sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &category, &productID, &orderID, &n.Content, &n.Timestamp, &n.IsRead); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Category = domain.NotificationCategory(category)
		if productID.Valid {
			v := uint(productID.Int64)
			n.ProductID = &v
		}
		if orderID.Valid {
			v := uint(orderID.Int64)
			n.OrderID = &v
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}

	return notifications, nil
}

package waitlist

import (
	"context"

	"palantir/internal/domain"
)

type WaitlistRepository interface {
	GetUsersInWaitlist(ctx context.Context, productID uint) ([]domain.WaitlistEntry, error)
}

type NotificationRepository interface {
	AddNotification(ctx context.Context, notification domain.Notification) (uint, error)
}

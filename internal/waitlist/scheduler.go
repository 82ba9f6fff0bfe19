// Package waitlist schedules restock alerts for users queued on a product.
package waitlist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"palantir/internal/domain"
	"palantir/internal/errors"
	"palantir/internal/infrastructure/metrics"
)

// ComputeNotifyTime returns when the user at position (0-based) should hear
// about a restock. Earlier positions are told earlier.
func ComputeNotifyTime(restockDate time.Time, position int) time.Time {
	switch position {
	case 0:
		return restockDate.Add(-48 * time.Hour)
	case 1:
		return restockDate.Add(-24 * time.Hour)
	default:
		return restockDate.Add(-12 * time.Hour)
	}
}

// RestockMessage builds the alert text for a 1-based queue position.
func RestockMessage(position int, restockDate, now time.Time) string {
	until := restockDate.Sub(now)
	when := fmt.Sprintf("on %s", restockDate.Format("Jan 02"))
	if until.Hours() <= 24 {
		when = fmt.Sprintf("in %d hours", int(until.Hours()))
	}

	switch position {
	case 1:
		return fmt.Sprintf("You're FIRST in line! Product restocking %s.", when)
	case 2:
		return fmt.Sprintf("You're SECOND in line. Product restocking %s.", when)
	default:
		return fmt.Sprintf("You're #%d in queue. Product restocking %s.", position, when)
	}
}

type FailedAlert struct {
	UserID uint
	Err    error
}

type ScheduleResult struct {
	ProductID uint
	Scheduled []domain.Notification
	Failed    []FailedAlert
}

type Scheduler struct {
	waitlist      WaitlistRepository
	notifications NotificationRepository
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewScheduler(waitlist WaitlistRepository, notifications NotificationRepository, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		waitlist:      waitlist,
		notifications: notifications,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// ScheduleRestockAlerts creates one product-available notification per
// waitlisted user. A failed creation is recorded and the remaining users are
// still processed.
func (s *Scheduler) ScheduleRestockAlerts(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error) {
	if productID == 0 {
		return nil, errors.NewValidationError("invalid productId", errors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if restockDate.IsZero() {
		return nil, errors.NewValidationError("invalid restockDate", errors.ValidationDetail{
			Field:   "restockDate",
			Message: "restockDate is required",
		})
	}

	entries, err := s.waitlist.GetUsersInWaitlist(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetching waitlist for product %d: %w", productID, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PositionInQueue < entries[j].PositionInQueue
	})

	now := s.now()
	result := &ScheduleResult{ProductID: productID}

	for i, entry := range entries {
		pid := productID
		n := domain.Notification{
			RecipientID: entry.UserID,
			Category:    domain.NotificationCategoryProductAvailable,
			ProductID:   &pid,
			Content:     RestockMessage(i+1, restockDate, now),
			Timestamp:   ComputeNotifyTime(restockDate, i),
		}

		id, err := s.notifications.AddNotification(ctx, n)
		if err != nil {
			s.logger.Error("failed to schedule restock alert",
				zap.Uint("productId", productID),
				zap.Uint("userId", entry.UserID),
				zap.Int("position", i),
				zap.Error(err),
			)
			s.metrics.RestockAlertsScheduled.WithLabelValues("failed").Inc()
			result.Failed = append(result.Failed, FailedAlert{UserID: entry.UserID, Err: err})
			continue
		}

		n.ID = id
		s.metrics.RestockAlertsScheduled.WithLabelValues("scheduled").Inc()
		result.Scheduled = append(result.Scheduled, n)
	}

	s.logger.Info("restock alerts scheduled",
		zap.Uint("productId", productID),
		zap.Int("scheduled", len(result.Scheduled)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

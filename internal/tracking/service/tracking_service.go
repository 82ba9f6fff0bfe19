package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"palantir/internal/domain"
	"palantir/internal/dto"
	"palantir/internal/errors"
	"palantir/internal/infrastructure/metrics"
	"palantir/internal/notification"
	"palantir/internal/tracking/store"
)

const (
	defaultInitialDescription = "Order created and being tracked"
	defaultStatusDescription  = "Status updated"
	defaultTxTimeout          = 5 * time.Second
)

// Dispatcher hands notification work to the background pool.
type Dispatcher interface {
	Submit(job notification.Job) bool
}

type Settings struct {
	TxTimeout        time.Duration
	MaxRetryAttempts int
}

// TrackingService owns the checkpoint history of tracked orders and keeps
// each order's current status equal to the status of its latest checkpoint.
type TrackingService struct {
	txManager        store.TransactionManager
	orders           store.TrackedOrderReader
	checkpoints      store.CheckpointReader
	orderLookup      store.OrderLookup
	gateway          notification.Gateway
	dispatcher       Dispatcher
	locks            *KeyedMutex
	metrics          *metrics.Metrics
	logger           *zap.Logger
	now              func() time.Time
	txTimeout        time.Duration
	maxRetryAttempts int
}

func NewTrackingService(
	txManager store.TransactionManager,
	orders store.TrackedOrderReader,
	checkpoints store.CheckpointReader,
	orderLookup store.OrderLookup,
	gateway notification.Gateway,
	dispatcher Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
	settings Settings,
) *TrackingService {
	txTimeout := settings.TxTimeout
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}

	return &TrackingService{
		txManager:        txManager,
		orders:           orders,
		checkpoints:      checkpoints,
		orderLookup:      orderLookup,
		gateway:          gateway,
		dispatcher:       dispatcher,
		locks:            NewKeyedMutex(),
		metrics:          m,
		logger:           logger,
		now:              time.Now,
		txTimeout:        txTimeout,
		maxRetryAttempts: settings.MaxRetryAttempts,
	}
}

// CreateTrackedOrder starts tracking a purchase order. The tracked order and
// its initial checkpoint are written together.
func (s *TrackingService) CreateTrackedOrder(ctx context.Context, cmd dto.CreateTrackedOrderCommand) (uint, error) {
	if cmd.InitialStatus == "" {
		cmd.InitialStatus = domain.OrderStatusProcessing
	}
	cmd.InitialDescription = strings.TrimSpace(cmd.InitialDescription)
	if cmd.InitialDescription == "" {
		cmd.InitialDescription = defaultInitialDescription
	}

	if err := validateCreate(cmd); err != nil {
		return 0, err
	}

	if _, err := s.orderLookup.GetOrderByID(ctx, cmd.OrderID); err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return 0, errors.NewNotFoundError(fmt.Sprintf("order %d not found", cmd.OrderID))
		}
		return 0, fmt.Errorf("looking up order %d: %w", cmd.OrderID, err)
	}

	var trackedOrderID uint
	err := s.inTransaction(ctx, "create_tracked_order", func(ctx context.Context, uow store.UnitOfWork) error {
		id, err := uow.TrackedOrders().Insert(ctx, domain.TrackedOrder{
			OrderID:               cmd.OrderID,
			CurrentStatus:         cmd.InitialStatus,
			EstimatedDeliveryDate: cmd.EstimatedDeliveryDate,
			DeliveryAddress:       cmd.DeliveryAddress,
		})
		if err != nil {
			return err
		}

		location := cmd.DeliveryAddress
		_, err = uow.Checkpoints().Insert(ctx, domain.OrderCheckpoint{
			TrackedOrderID: id,
			Timestamp:      s.now().UTC(),
			Location:       &location,
			Description:    cmd.InitialDescription,
			Status:         cmd.InitialStatus,
		})
		if err != nil {
			return err
		}

		trackedOrderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.TrackedOrdersCreated.Inc()
	s.logger.Info("tracked order created",
		zap.Uint("trackedOrderId", trackedOrderID),
		zap.Uint("orderId", cmd.OrderID),
		zap.String("status", cmd.InitialStatus.String()),
	)

	return trackedOrderID, nil
}

// AppendCheckpoint records a new checkpoint and recomputes the current status.
// Buyers are notified after commit when the new status is in transit.
func (s *TrackingService) AppendCheckpoint(ctx context.Context, cmd dto.AppendCheckpointCommand) (uint, error) {
	cmd.Description = strings.TrimSpace(cmd.Description)
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = s.now()
	}
	cmd.Timestamp = cmd.Timestamp.UTC()

	if err := validateAppend(cmd); err != nil {
		return 0, err
	}

	var (
		checkpointID uint
		updated      domain.TrackedOrder
	)
	err := s.mutate(ctx, cmd.TrackedOrderID, "append_checkpoint", func(ctx context.Context, uow store.UnitOfWork) error {
		order, err := uow.TrackedOrders().LockByID(ctx, cmd.TrackedOrderID)
		if err != nil {
			return err
		}

		existing, err := uow.Checkpoints().FindAllByTrackedOrderID(ctx, cmd.TrackedOrderID)
		if err != nil {
			return err
		}

		if latest, ok := domain.LatestCheckpoint(existing); ok && !cmd.Timestamp.After(latest.Timestamp) {
			return errors.NewValidationError("checkpoint timestamp must be after the latest checkpoint", errors.ValidationDetail{
				Field:   "timestamp",
				Message: fmt.Sprintf("must be after %s", latest.Timestamp.Format(time.RFC3339Nano)),
			})
		}

		checkpoint := domain.OrderCheckpoint{
			TrackedOrderID: cmd.TrackedOrderID,
			Timestamp:      cmd.Timestamp,
			Location:       cmd.Location,
			Description:    cmd.Description,
			Status:         cmd.Status,
		}
		checkpoint.ID, err = uow.Checkpoints().Insert(ctx, checkpoint)
		if err != nil {
			return err
		}

		current, _ := domain.LatestCheckpoint(append(existing, checkpoint))
		if err := uow.TrackedOrders().UpdateStatus(ctx, cmd.TrackedOrderID, current.Status); err != nil {
			return err
		}

		order.CurrentStatus = current.Status
		updated = *order
		checkpointID = checkpoint.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.CheckpointsAppended.WithLabelValues(cmd.Status.String()).Inc()
	s.logger.Info("checkpoint appended",
		zap.Uint("trackedOrderId", cmd.TrackedOrderID),
		zap.Uint("checkpointId", checkpointID),
		zap.String("status", updated.CurrentStatus.String()),
	)

	s.notifyBuyer(updated)

	return checkpointID, nil
}

// UpdateOrderStatus appends a checkpoint stamped with the current time.
func (s *TrackingService) UpdateOrderStatus(ctx context.Context, trackedOrderID uint, status domain.OrderStatus, description string, location *string) (uint, error) {
	if strings.TrimSpace(description) == "" {
		description = defaultStatusDescription
	}

	return s.AppendCheckpoint(ctx, dto.AppendCheckpointCommand{
		TrackedOrderID: trackedOrderID,
		Timestamp:      s.now(),
		Location:       location,
		Description:    description,
		Status:         status,
	})
}

// RevertToPreviousCheckpoint removes the latest checkpoint and restores the
// status of the one before it. The initial checkpoint is never removed.
func (s *TrackingService) RevertToPreviousCheckpoint(ctx context.Context, trackedOrderID uint) error {
	if trackedOrderID == 0 {
		return errors.NewValidationError("invalid trackedOrderId", errors.ValidationDetail{
			Field:   "trackedOrderId",
			Message: "trackedOrderId must be a positive integer",
		})
	}

	var (
		removed  domain.OrderCheckpoint
		restored domain.TrackedOrder
	)
	err := s.mutate(ctx, trackedOrderID, "revert_checkpoint", func(ctx context.Context, uow store.UnitOfWork) error {
		order, err := uow.TrackedOrders().LockByID(ctx, trackedOrderID)
		if err != nil {
			return err
		}

		checkpoints, err := uow.Checkpoints().FindAllByTrackedOrderID(ctx, trackedOrderID)
		if err != nil {
			return err
		}
		if len(checkpoints) <= 1 {
			return errors.NewIllegalStateError("cannot revert further")
		}

		domain.SortCheckpoints(checkpoints)
		removed = checkpoints[len(checkpoints)-1]
		previous := checkpoints[len(checkpoints)-2]

		if err := uow.Checkpoints().Delete(ctx, removed.ID); err != nil {
			return err
		}
		if err := uow.TrackedOrders().UpdateStatus(ctx, trackedOrderID, previous.Status); err != nil {
			return err
		}

		order.CurrentStatus = previous.Status
		restored = *order
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.CheckpointsReverted.Inc()
	s.logger.Info("checkpoint reverted",
		zap.Uint("trackedOrderId", trackedOrderID),
		zap.Uint("removedCheckpointId", removed.ID),
		zap.String("restoredStatus", restored.CurrentStatus.String()),
	)

	s.notifyBuyer(restored)

	return nil
}

func (s *TrackingService) UpdateEstimatedDeliveryDate(ctx context.Context, trackedOrderID uint, date time.Time) error {
	if date.IsZero() {
		return errors.NewValidationError("invalid estimatedDeliveryDate", errors.ValidationDetail{
			Field:   "estimatedDeliveryDate",
			Message: "estimatedDeliveryDate is required",
		})
	}

	err := s.mutate(ctx, trackedOrderID, "update_estimated_delivery_date", func(ctx context.Context, uow store.UnitOfWork) error {
		if _, err := uow.TrackedOrders().LockByID(ctx, trackedOrderID); err != nil {
			return err
		}
		return uow.TrackedOrders().UpdateEstimatedDeliveryDate(ctx, trackedOrderID, date)
	})
	if err != nil {
		return err
	}

	s.logger.Info("estimated delivery date updated",
		zap.Uint("trackedOrderId", trackedOrderID),
		zap.String("estimatedDeliveryDate", date.Format(dto.DateLayout)),
	)
	return nil
}

// UpdateLastCheckpointDescription rewrites the description of the latest
// checkpoint. Status and timestamp are left untouched.
func (s *TrackingService) UpdateLastCheckpointDescription(ctx context.Context, trackedOrderID uint, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return errors.NewValidationError("invalid description", errors.ValidationDetail{
			Field:   "description",
			Message: "description is required",
		})
	}

	var checkpointID uint
	err := s.mutate(ctx, trackedOrderID, "update_last_checkpoint", func(ctx context.Context, uow store.UnitOfWork) error {
		if _, err := uow.TrackedOrders().LockByID(ctx, trackedOrderID); err != nil {
			return err
		}

		checkpoints, err := uow.Checkpoints().FindAllByTrackedOrderID(ctx, trackedOrderID)
		if err != nil {
			return err
		}
		latest, ok := domain.LatestCheckpoint(checkpoints)
		if !ok {
			return errors.NewNotFoundError(fmt.Sprintf("tracked order %d has no checkpoints", trackedOrderID))
		}

		checkpointID = latest.ID
		return uow.Checkpoints().UpdateDetails(ctx, latest.ID, description, latest.Location)
	})
	if err != nil {
		return err
	}

	s.logger.Info("last checkpoint updated",
		zap.Uint("trackedOrderId", trackedOrderID),
		zap.Uint("checkpointId", checkpointID),
	)
	return nil
}

func (s *TrackingService) GetTrackedOrder(ctx context.Context, trackedOrderID uint) (*domain.TrackedOrder, error) {
	return s.orders.FindByID(ctx, trackedOrderID)
}

func (s *TrackingService) GetTrackedOrderByOrderID(ctx context.Context, orderID uint) (*domain.TrackedOrder, error) {
	return s.orders.FindByOrderID(ctx, orderID)
}

// GetCheckpoints returns the history of a tracked order, oldest first.
func (s *TrackingService) GetCheckpoints(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error) {
	if _, err := s.orders.FindByID(ctx, trackedOrderID); err != nil {
		return nil, err
	}

	checkpoints, err := s.checkpoints.FindAllByTrackedOrderID(ctx, trackedOrderID)
	if err != nil {
		return nil, err
	}
	domain.SortCheckpoints(checkpoints)
	return checkpoints, nil
}

func (s *TrackingService) GetCheckpoint(ctx context.Context, checkpointID uint) (*domain.OrderCheckpoint, error) {
	return s.checkpoints.FindByID(ctx, checkpointID)
}

func (s *TrackingService) GetLastCheckpoint(ctx context.Context, trackedOrderID uint) (*domain.OrderCheckpoint, error) {
	checkpoints, err := s.GetCheckpoints(ctx, trackedOrderID)
	if err != nil {
		return nil, err
	}

	latest, ok := domain.LatestCheckpoint(checkpoints)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("tracked order %d has no checkpoints", trackedOrderID))
	}
	return &latest, nil
}

func (s *TrackingService) DeliveryProgress(ctx context.Context, trackedOrderID uint) (*dto.DeliveryProgress, error) {
	order, err := s.orders.FindByID(ctx, trackedOrderID)
	if err != nil {
		return nil, err
	}

	return &dto.DeliveryProgress{
		TrackedOrderID: order.ID,
		Status:         order.CurrentStatus,
		Percentage:     order.CurrentStatus.ProgressPercentage(),
	}, nil
}

// mutate serializes fn with every other mutation of the same tracked order.
// The key is released before the caller dispatches notifications.
func (s *TrackingService) mutate(ctx context.Context, trackedOrderID uint, op string, fn func(ctx context.Context, uow store.UnitOfWork) error) error {
	unlock, err := s.locks.Lock(ctx, trackedOrderID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.inTransaction(ctx, op, fn)
}

func (s *TrackingService) notifyBuyer(order domain.TrackedOrder) {
	if !order.CurrentStatus.NotifiesBuyer() {
		return
	}

	s.dispatcher.Submit(notification.Job{
		Name: "shipping_progress",
		Fields: []zap.Field{
			zap.Uint("trackedOrderId", order.ID),
			zap.Uint("orderId", order.OrderID),
			zap.String("status", order.CurrentStatus.String()),
		},
		Run: func(ctx context.Context) error {
			purchase, err := s.orderLookup.GetOrderByID(ctx, order.OrderID)
			if err != nil {
				return fmt.Errorf("resolving buyer of order %d: %w", order.OrderID, err)
			}

			return s.gateway.SendShippingProgress(ctx, notification.ShippingProgress{
				BuyerID:               purchase.BuyerID,
				OrderID:               order.OrderID,
				TrackedOrderID:        order.ID,
				Status:                order.CurrentStatus,
				EstimatedDeliveryDate: order.EstimatedDeliveryDate,
			})
		},
	})
}

func validateCreate(cmd dto.CreateTrackedOrderCommand) error {
	var details []errors.ValidationDetail

	if cmd.OrderID == 0 {
		details = append(details, errors.ValidationDetail{Field: "orderId", Message: "orderId must be a positive integer"})
	}
	if cmd.EstimatedDeliveryDate.IsZero() {
		details = append(details, errors.ValidationDetail{Field: "estimatedDeliveryDate", Message: "estimatedDeliveryDate is required"})
	}
	if strings.TrimSpace(cmd.DeliveryAddress) == "" {
		details = append(details, errors.ValidationDetail{Field: "deliveryAddress", Message: "deliveryAddress is required"})
	}
	if !cmd.InitialStatus.IsValid() {
		details = append(details, errors.ValidationDetail{Field: "initialStatus", Message: fmt.Sprintf("unknown status %q", cmd.InitialStatus)})
	}

	if len(details) > 0 {
		return errors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateAppend(cmd dto.AppendCheckpointCommand) error {
	var details []errors.ValidationDetail

	if cmd.TrackedOrderID == 0 {
		details = append(details, errors.ValidationDetail{Field: "trackedOrderId", Message: "trackedOrderId must be a positive integer"})
	}
	if cmd.Description == "" {
		details = append(details, errors.ValidationDetail{Field: "description", Message: "description is required"})
	}
	if !cmd.Status.IsValid() {
		details = append(details, errors.ValidationDetail{Field: "status", Message: fmt.Sprintf("unknown status %q", cmd.Status)})
	}

	if len(details) > 0 {
		return errors.NewValidationError("validation failed", details...)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	apperrors "palantir/internal/errors"
	"palantir/internal/tracking/store"
)

// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms), etc.
var retryBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// inTransaction runs fn inside a unit of work bounded by the configured
// timeout, committing when fn succeeds. Deadlocks are retried with backoff.
func (s *TrackingService) inTransaction(ctx context.Context, op string, fn func(ctx context.Context, uow store.UnitOfWork) error) error {
	maxAttempts := s.maxRetryAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !isDeadlockError(err) {
			return err
		}

		if attempt < maxAttempts {
			s.metrics.TxRetries.Inc()
			s.logger.Warn("deadlock detected, retrying", zap.String("op", op), zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts))
			if err := sleepContext(ctx, backoff(attempt+1)); err != nil {
				return err
			}
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func (s *TrackingService) runOnce(ctx context.Context, fn func(ctx context.Context, uow store.UnitOfWork) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	uow, err := s.txManager.Begin(txCtx)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer uow.Rollback()

	if err := fn(txCtx, uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// backoff is the wait before attempt, with ±20% jitter.
func backoff(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(retryBackoffs) {
		idx = len(retryBackoffs) - 1
	}
	base := retryBackoffs[idx]
	return time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

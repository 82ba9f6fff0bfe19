package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"palantir/internal/infrastructure/metrics"
)

// Job is one unit of best-effort work. Run receives a context bounded by the
// dispatcher's send timeout.
type Job struct {
	Name   string
	Fields []zap.Field
	Run    func(ctx context.Context) error
}

type DispatcherSettings struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher runs jobs on a fixed set of workers fed by a bounded queue.
// Submit never blocks; jobs that do not fit are dropped.
type Dispatcher struct {
	jobs    chan Job
	workers *pool.Pool
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(settings DispatcherSettings, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	workers := settings.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := settings.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	d := &Dispatcher{
		jobs:    make(chan Job, queueSize),
		workers: pool.New().WithMaxGoroutines(workers),
		timeout: settings.SendTimeout,
		metrics: m,
		logger:  logger,
	}

	for i := 0; i < workers; i++ {
		d.workers.Go(d.work)
	}

	return d
}

// Submit enqueues job and reports whether it was accepted.
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(job, "dispatcher closed")
		return false
	}

	select {
	case d.jobs <- job:
		return true
	default:
		d.drop(job, "queue full")
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) work() {
	for job := range d.jobs {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	fields := append([]zap.Field{zap.String("job", job.Name)}, job.Fields...)
	start := time.Now()

	err := safeRun(ctx, job.Run)

	if d.metrics != nil {
		d.metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		d.record("failed")
		d.logger.Error("notification job failed", append(fields, zap.Error(err))...)
		return
	}

	d.record("sent")
	d.logger.Debug("notification job finished", fields...)
}

func (d *Dispatcher) drop(job Job, reason string) {
	if d.metrics != nil {
		d.metrics.NotificationsDropped.Inc()
	}
	fields := append([]zap.Field{zap.String("job", job.Name), zap.String("reason", reason)}, job.Fields...)
	d.logger.Warn("notification job dropped", fields...)
}

func (d *Dispatcher) record(result string) {
	if d.metrics != nil {
		d.metrics.NotificationsDispatched.WithLabelValues(result).Inc()
	}
}

func safeRun(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(ctx)
}

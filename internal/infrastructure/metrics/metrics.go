package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_tracking"

// Metrics holds the tracking service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	TrackedOrdersCreated prometheus.Counter
	CheckpointsAppended  *prometheus.CounterVec
	CheckpointsReverted  prometheus.Counter
	TxRetries            prometheus.Counter

	NotificationsDispatched *prometheus.CounterVec
	NotificationsDropped    prometheus.Counter
	NotificationDuration    prometheus.Histogram
	CircuitBreakerState     *prometheus.GaugeVec

	RestockAlertsScheduled *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		TrackedOrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracked_orders_created_total",
			Help:      "Tracked orders created",
		}),
		CheckpointsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_appended_total",
			Help:      "Checkpoints appended, by status",
		}, []string{"status"}),
		CheckpointsReverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_reverted_total",
			Help:      "Checkpoints removed by revert",
		}),
		TxRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_retries_total",
			Help:      "Transactions retried after a deadlock or lock wait timeout",
		}),
		NotificationsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Shipping-progress notifications attempted, by result",
		}, []string{"result"}),
		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped because the dispatch queue was full or closed",
		}),
		NotificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_send_duration_seconds",
			Help:      "Time spent delivering one notification",
			Buckets:   prometheus.DefBuckets,
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		RestockAlertsScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restock_alerts_scheduled_total",
			Help:      "Restock alerts created for waitlisted users, by result",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.TrackedOrdersCreated,
		m.CheckpointsAppended,
		m.CheckpointsReverted,
		m.TxRetries,
		m.NotificationsDispatched,
		m.NotificationsDropped,
		m.NotificationDuration,
		m.CircuitBreakerState,
		m.RestockAlertsScheduled,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

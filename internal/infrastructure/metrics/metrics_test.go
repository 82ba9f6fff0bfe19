package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.CheckpointsAppended.WithLabelValues("SHIPPED").Inc()
	m.NotificationsDropped.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckpointsAppended.WithLabelValues("SHIPPED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDropped))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.TrackedOrdersCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_tracking_tracked_orders_created_total 1")
}

package waitlist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palantir/internal/domain"
	"palantir/internal/dto"
)

type mockRestockScheduler struct {
	scheduleFunc func(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error)
}

func (m *mockRestockScheduler) ScheduleRestockAlerts(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error) {
	return m.scheduleFunc(ctx, productID, restockDate)
}

func serve(scheduler RestockScheduler, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewController(scheduler, zap.NewNop()).Routes(r)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleScheduleRestockAlerts_Success(t *testing.T) {
	var gotDate time.Time
	scheduler := &mockRestockScheduler{
		scheduleFunc: func(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error) {
			gotDate = restockDate
			return &ScheduleResult{
				ProductID: productID,
				Scheduled: []domain.Notification{{RecipientID: 1}, {RecipientID: 2}},
				Failed:    []FailedAlert{{UserID: 3, Err: stderrors.New("x")}},
			}, nil
		},
	}

	rec := serve(scheduler, "/products/5/restock-alerts", `{"restockDate":"2024-01-10"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var resp dto.ScheduleRestockAlertsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.ProductID)
	assert.Equal(t, 2, resp.Scheduled)
	assert.Equal(t, 1, resp.Failed)
	assert.True(t, gotDate.Equal(restock))
}

func TestHandleScheduleRestockAlerts_InvalidInput(t *testing.T) {
	scheduler := &mockRestockScheduler{}

	tests := []struct {
		name string
		path string
		body string
	}{
		{"bad product id", "/products/abc/restock-alerts", `{"restockDate":"2024-01-10"}`},
		{"bad json", "/products/5/restock-alerts", `{`},
		{"bad date", "/products/5/restock-alerts", `{"restockDate":"tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(scheduler, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestHandleScheduleRestockAlerts_FetchFailure(t *testing.T) {
	scheduler := &mockRestockScheduler{
		scheduleFunc: func(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error) {
			return nil, stderrors.New("waitlist unavailable")
		},
	}

	rec := serve(scheduler, "/products/5/restock-alerts", `{"restockDate":"2024-01-10T00:00:00Z"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

package waitlist

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"palantir/internal/dto"
	apperrors "palantir/internal/errors"
)

type RestockScheduler interface {
	ScheduleRestockAlerts(ctx context.Context, productID uint, restockDate time.Time) (*ScheduleResult, error)
}

type Controller struct {
	scheduler RestockScheduler
	logger    *zap.Logger
}

func NewController(scheduler RestockScheduler, logger *zap.Logger) *Controller {
	return &Controller{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/products/{productId}/restock-alerts", c.HandleScheduleRestockAlerts)
}

func (c *Controller) HandleScheduleRestockAlerts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID == 0 {
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	var req dto.ScheduleRestockAlertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	restockDate, ok := parseRestockDate(req.RestockDate)
	if !ok {
		c.writeValidationError(w, "invalid restockDate", apperrors.ValidationDetail{
			Field:   "restockDate",
			Message: "restockDate must be RFC 3339 or YYYY-MM-DD",
		})
		return
	}

	result, err := c.scheduler.ScheduleRestockAlerts(r.Context(), uint(productID), restockDate)
	if err != nil {
		if ve, ok := apperrors.IsValidationError(err); ok {
			c.writeValidationError(w, ve.Message, ve.Details...)
			return
		}
		logger.Error("schedule restock alerts failed", zap.Uint64("productId", productID), zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			TraceID:   traceID,
			Status:    http.StatusInternalServerError,
			Code:      "INTERNAL_ERROR",
			Message:   "an unexpected error occurred",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.writeJSON(w, http.StatusAccepted, dto.ScheduleRestockAlertsResponse{
		TraceID:   traceID,
		ProductID: result.ProductID,
		Scheduled: len(result.Scheduled),
		Failed:    len(result.Failed),
	})
}

func parseRestockDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(dto.DateLayout, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"palantir/internal/domain"
	"palantir/internal/dto"
	apperrors "palantir/internal/errors"
)

type TrackingService interface {
	CreateTrackedOrder(ctx context.Context, cmd dto.CreateTrackedOrderCommand) (uint, error)
	AppendCheckpoint(ctx context.Context, cmd dto.AppendCheckpointCommand) (uint, error)
	UpdateOrderStatus(ctx context.Context, trackedOrderID uint, status domain.OrderStatus, description string, location *string) (uint, error)
	RevertToPreviousCheckpoint(ctx context.Context, trackedOrderID uint) error
	UpdateEstimatedDeliveryDate(ctx context.Context, trackedOrderID uint, date time.Time) error
	UpdateLastCheckpointDescription(ctx context.Context, trackedOrderID uint, description string) error
	GetTrackedOrder(ctx context.Context, trackedOrderID uint) (*domain.TrackedOrder, error)
	GetTrackedOrderByOrderID(ctx context.Context, orderID uint) (*domain.TrackedOrder, error)
	GetCheckpoints(ctx context.Context, trackedOrderID uint) ([]domain.OrderCheckpoint, error)
	DeliveryProgress(ctx context.Context, trackedOrderID uint) (*dto.DeliveryProgress, error)
}

type TrackingController struct {
	service TrackingService
	logger  *zap.Logger
}

func NewTrackingController(service TrackingService, logger *zap.Logger) *TrackingController {
	return &TrackingController{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the tracking endpoints on r.
func (c *TrackingController) Routes(r chi.Router) {
	r.Post("/tracked-orders", c.CreateTrackedOrder)
	r.Get("/orders/{orderId}/tracked-order", c.GetTrackedOrderByOrderID)
	r.Route("/tracked-orders/{trackedOrderId}", func(r chi.Router) {
		r.Get("/", c.GetTrackedOrder)
		r.Get("/checkpoints", c.ListCheckpoints)
		r.Post("/checkpoints", c.AppendCheckpoint)
		r.Patch("/checkpoints/last", c.UpdateLastCheckpoint)
		r.Post("/status", c.UpdateOrderStatus)
		r.Post("/revert", c.RevertToPreviousCheckpoint)
		r.Patch("/estimated-delivery-date", c.UpdateEstimatedDeliveryDate)
		r.Get("/progress", c.DeliveryProgress)
	})
}

func (c *TrackingController) CreateTrackedOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateTrackedOrderRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	cmd := dto.CreateTrackedOrderCommand{
		OrderID:            req.OrderID,
		DeliveryAddress:    strings.TrimSpace(req.DeliveryAddress),
		InitialDescription: req.InitialDescription,
	}

	var details []apperrors.ValidationDetail
	if req.EstimatedDeliveryDate != "" {
		date, err := time.Parse(dto.DateLayout, req.EstimatedDeliveryDate)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "estimatedDeliveryDate", Message: "estimatedDeliveryDate must use YYYY-MM-DD"})
		}
		cmd.EstimatedDeliveryDate = date
	}
	if req.InitialStatus != "" {
		status, ok := domain.ParseOrderStatus(req.InitialStatus)
		if !ok {
			details = append(details, apperrors.ValidationDetail{Field: "initialStatus", Message: "unknown status " + req.InitialStatus})
		}
		cmd.InitialStatus = status
	}
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "validation failed", details...)
		return
	}

	id, err := c.service.CreateTrackedOrder(r.Context(), cmd)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.CreatedResponse{TraceID: traceID, ID: id})
}

func (c *TrackingController) GetTrackedOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	order, err := c.service.GetTrackedOrder(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeTrackedOrder(w, r, traceID, *order, logger)
}

func (c *TrackingController) GetTrackedOrderByOrderID(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.pathID(w, r, traceID, "orderId")
	if !ok {
		return
	}

	order, err := c.service.GetTrackedOrderByOrderID(r.Context(), orderID)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeTrackedOrder(w, r, traceID, *order, logger)
}

func (c *TrackingController) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	checkpoints, err := c.service.GetCheckpoints(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	resp := make([]dto.CheckpointResponse, len(checkpoints))
	for i, cp := range checkpoints {
		resp[i] = dto.NewCheckpointResponse(cp)
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *TrackingController) AppendCheckpoint(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	var req dto.AppendCheckpointRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{Field: "status", Message: "unknown status " + req.Status})
		return
	}

	cmd := dto.AppendCheckpointCommand{
		TrackedOrderID: id,
		Location:       req.Location,
		Description:    req.Description,
		Status:         status,
	}
	if req.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339Nano, *req.Timestamp)
		if err != nil {
			c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{Field: "timestamp", Message: "timestamp must be RFC 3339"})
			return
		}
		cmd.Timestamp = ts
	}

	checkpointID, err := c.service.AppendCheckpoint(r.Context(), cmd)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.CreatedResponse{TraceID: traceID, ID: checkpointID})
}

func (c *TrackingController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{Field: "status", Message: "unknown status " + req.Status})
		return
	}

	checkpointID, err := c.service.UpdateOrderStatus(r.Context(), id, status, req.Description, req.Location)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.CreatedResponse{TraceID: traceID, ID: checkpointID})
}

func (c *TrackingController) RevertToPreviousCheckpoint(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	if err := c.service.RevertToPreviousCheckpoint(r.Context(), id); err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeTrackedOrderByID(w, r, traceID, id, logger)
}

func (c *TrackingController) UpdateEstimatedDeliveryDate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	var req dto.UpdateEstimatedDeliveryDateRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	date, err := time.Parse(dto.DateLayout, req.EstimatedDeliveryDate)
	if err != nil {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{Field: "estimatedDeliveryDate", Message: "estimatedDeliveryDate must use YYYY-MM-DD"})
		return
	}

	if err := c.service.UpdateEstimatedDeliveryDate(r.Context(), id, date); err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeTrackedOrderByID(w, r, traceID, id, logger)
}

func (c *TrackingController) UpdateLastCheckpoint(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	var req dto.UpdateLastCheckpointRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	if err := c.service.UpdateLastCheckpointDescription(r.Context(), id, req.Description); err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeTrackedOrderByID(w, r, traceID, id, logger)
}

func (c *TrackingController) DeliveryProgress(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, traceID, "trackedOrderId")
	if !ok {
		return
	}

	progress, err := c.service.DeliveryProgress(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.DeliveryProgressResponse{
		TrackedOrderID: progress.TrackedOrderID,
		Status:         string(progress.Status),
		Percentage:     progress.Percentage,
	})
}

func (c *TrackingController) writeTrackedOrderByID(w http.ResponseWriter, r *http.Request, traceID string, id uint, logger *zap.Logger) {
	order, err := c.service.GetTrackedOrder(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}
	c.writeTrackedOrder(w, r, traceID, *order, logger)
}

func (c *TrackingController) writeTrackedOrder(w http.ResponseWriter, r *http.Request, traceID string, order domain.TrackedOrder, logger *zap.Logger) {
	checkpoints, err := c.service.GetCheckpoints(r.Context(), order.ID)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	resp := dto.NewTrackedOrderResponse(order, checkpoints)
	resp.TraceID = traceID
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *TrackingController) pathID(w http.ResponseWriter, r *http.Request, traceID string, param string) (uint, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, traceID, "invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *TrackingController) decode(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (c *TrackingController) handleServiceError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsIllegalStateError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "ILLEGAL_STATE", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	if _, ok := apperrors.IsTransientDependencyError(err); ok {
		logger.Warn("dependency unavailable", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *TrackingController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *TrackingController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *TrackingController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

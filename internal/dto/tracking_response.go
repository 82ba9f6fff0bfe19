package dto

import (
	"time"

	"palantir/internal/domain"
)

type TrackedOrderResponse struct {
	TraceID               string               `json:"traceId,omitempty"`
	TrackedOrderID        uint                 `json:"trackedOrderId"`
	OrderID               uint                 `json:"orderId"`
	CurrentStatus         string               `json:"currentStatus"`
	EstimatedDeliveryDate string               `json:"estimatedDeliveryDate"`
	DeliveryAddress       string               `json:"deliveryAddress"`
	Checkpoints           []CheckpointResponse `json:"checkpoints,omitempty"`
}

type CheckpointResponse struct {
	CheckpointID uint      `json:"checkpointId"`
	Timestamp    time.Time `json:"timestamp"`
	Location     *string   `json:"location,omitempty"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
}

type CreatedResponse struct {
	TraceID string `json:"traceId"`
	ID      uint   `json:"id"`
}

type DeliveryProgressResponse struct {
	TrackedOrderID uint   `json:"trackedOrderId"`
	Status         string `json:"status"`
	Percentage     int    `json:"percentage"`
}

type ScheduleRestockAlertsResponse struct {
	TraceID   string `json:"traceId"`
	ProductID uint   `json:"productId"`
	Scheduled int    `json:"scheduled"`
	Failed    int    `json:"failed"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTrackedOrderResponse(order domain.TrackedOrder, checkpoints []domain.OrderCheckpoint) TrackedOrderResponse {
	resp := TrackedOrderResponse{
		TrackedOrderID:        order.ID,
		OrderID:               order.OrderID,
		CurrentStatus:         string(order.CurrentStatus),
		EstimatedDeliveryDate: order.EstimatedDeliveryDate.Format(DateLayout),
		DeliveryAddress:       order.DeliveryAddress,
	}
	for _, cp := range checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, NewCheckpointResponse(cp))
	}
	return resp
}

func NewCheckpointResponse(cp domain.OrderCheckpoint) CheckpointResponse {
	return CheckpointResponse{
		CheckpointID: cp.ID,
		Timestamp:    cp.Timestamp.UTC(),
		Location:     cp.Location,
		Description:  cp.Description,
		Status:       string(cp.Status),
	}
}

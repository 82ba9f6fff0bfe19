package dto

import (
	"time"

	"palantir/internal/domain"
)

// DateLayout is the wire layout for estimated delivery dates.
const DateLayout = "2006-01-02"

type CreateTrackedOrderCommand struct {
	OrderID               uint
	EstimatedDeliveryDate time.Time
	DeliveryAddress       string
	InitialStatus         domain.OrderStatus
	InitialDescription    string
}

type AppendCheckpointCommand struct {
	TrackedOrderID uint
	Timestamp      time.Time
	Location       *string
	Description    string
	Status         domain.OrderStatus
}

type DeliveryProgress struct {
	TrackedOrderID uint
	Status         domain.OrderStatus
	Percentage     int
}

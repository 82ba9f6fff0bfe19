package domain

import "time"

type TrackedOrder struct {
	ID                    uint
	OrderID               uint
	CurrentStatus         OrderStatus
	EstimatedDeliveryDate time.Time
	DeliveryAddress       string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

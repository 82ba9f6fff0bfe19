package domain

import "strings"

type OrderStatus string

const (
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusInWarehouse    OrderStatus = "IN_WAREHOUSE"
	OrderStatusInTransit      OrderStatus = "IN_TRANSIT"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
)

var orderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusInWarehouse,
	OrderStatusInTransit,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// OrderStatuses returns the closed set of statuses a checkpoint may carry.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

// ParseOrderStatus accepts the canonical names case-insensitively.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate.IsValid() {
		return candidate, true
	}
	return "", false
}

func (s OrderStatus) IsValid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// NotifiesBuyer reports whether reaching this status sends the buyer a
// shipping-progress message.
func (s OrderStatus) NotifiesBuyer() bool {
	return s == OrderStatusShipped || s == OrderStatusOutForDelivery
}

// ProgressPercentage is the delivery progress shown for a status.
func (s OrderStatus) ProgressPercentage() int {
	switch s {
	case OrderStatusProcessing:
		return 20
	case OrderStatusShipped:
		return 40
	case OrderStatusInWarehouse:
		return 60
	case OrderStatusInTransit:
		return 75
	case OrderStatusOutForDelivery:
		return 90
	case OrderStatusDelivered:
		return 100
	default:
		return 0
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

package dto

type CreateTrackedOrderRequest struct {
	OrderID               uint   `json:"orderId"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate"`
	DeliveryAddress       string `json:"deliveryAddress"`
	InitialStatus         string `json:"initialStatus"`
	InitialDescription    string `json:"initialDescription"`
}

type AppendCheckpointRequest struct {
	Timestamp   *string `json:"timestamp"`
	Location    *string `json:"location"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

type UpdateEstimatedDeliveryDateRequest struct {
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate"`
}

type UpdateLastCheckpointRequest struct {
	Description string `json:"description"`
}

type ScheduleRestockAlertsRequest struct {
	RestockDate string `json:"restockDate"`
}

type UpdateOrderStatusRequest struct {
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Location    *string `json:"location"`
}

package domain

import "time"

type NotificationCategory string

const (
	NotificationCategoryProductAvailable      NotificationCategory = "PRODUCT_AVAILABLE"
	NotificationCategoryOrderShippingProgress NotificationCategory = "ORDER_SHIPPING_PROGRESS"
)

type Notification struct {
	ID          uint
	RecipientID uint
	Category    NotificationCategory
	ProductID   *uint
	OrderID     *uint
	Content     string
	Timestamp   time.Time
	IsRead      bool
}

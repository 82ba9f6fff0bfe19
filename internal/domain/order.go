package domain

import "time"

// Order is the purchase order a tracked order belongs to. Only the fields the
// tracking subsystem reads are mapped.
type Order struct {
	ID        uint
	BuyerID   uint
	OrderDate time.Time
}

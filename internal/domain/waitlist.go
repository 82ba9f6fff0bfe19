package domain

import "time"

type WaitlistEntry struct {
	ID              uint
	UserID          uint
	ProductID       uint
	PositionInQueue int
	JoinedAt        time.Time
}

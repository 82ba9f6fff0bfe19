package domain

import (
	"sort"
	"time"
)

type OrderCheckpoint struct {
	ID             uint
	TrackedOrderID uint
	Timestamp      time.Time
	Location       *string
	Description    string
	Status         OrderStatus
}

// After orders checkpoints by timestamp, falling back to id for equal
// timestamps so the later insert wins.
func (c OrderCheckpoint) After(other OrderCheckpoint) bool {
	if c.Timestamp.Equal(other.Timestamp) {
		return c.ID > other.ID
	}
	return c.Timestamp.After(other.Timestamp)
}

// SortCheckpoints orders checkpoints oldest first, in place.
func SortCheckpoints(checkpoints []OrderCheckpoint) {
	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[j].After(checkpoints[i])
	})
}

// LatestCheckpoint returns the checkpoint that defines the current status.
func LatestCheckpoint(checkpoints []OrderCheckpoint) (OrderCheckpoint, bool) {
	if len(checkpoints) == 0 {
		return OrderCheckpoint{}, false
	}
	latest := checkpoints[0]
	for _, cp := range checkpoints[1:] {
		if cp.After(latest) {
			latest = cp
		}
	}
	return latest, true
}

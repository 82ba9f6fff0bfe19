package waitlist

import (
	"context"
	"sync"
	"time"

	"palantir/internal/domain"
)

// MemoryWaitlist keeps waitlists in process memory.
type MemoryWaitlist struct {
	mu      sync.RWMutex
	entries map[uint][]domain.WaitlistEntry
	nextID  uint
}

func NewMemoryWaitlist() *MemoryWaitlist {
	return &MemoryWaitlist{entries: make(map[uint][]domain.WaitlistEntry), nextID: 1}
}

// Join appends userID to the end of productID's queue.
func (w *MemoryWaitlist) Join(userID, productID uint) domain.WaitlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := domain.WaitlistEntry{
		ID:              w.nextID,
		UserID:          userID,
		ProductID:       productID,
		PositionInQueue: len(w.entries[productID]) + 1,
		JoinedAt:        time.Now().UTC(),
	}
	w.nextID++
	w.entries[productID] = append(w.entries[productID], entry)
	return entry
}

func (w *MemoryWaitlist) GetUsersInWaitlist(ctx context.Context, productID uint) ([]domain.WaitlistEntry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.WaitlistEntry, len(w.entries[productID]))
	copy(out, w.entries[productID])
	return out, nil
}

// MemoryNotifications records notifications in process memory.
type MemoryNotifications struct {
	mu            sync.RWMutex
	notifications []domain.Notification
}

func NewMemoryNotifications() *MemoryNotifications {
	return &MemoryNotifications{}
}

func (n *MemoryNotifications) AddNotification(ctx context.Context, notification domain.Notification) (uint, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	notification.ID = uint(len(n.notifications) + 1)
	n.notifications = append(n.notifications, notification)
	return notification.ID, nil
}

func (n *MemoryNotifications) All() []domain.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]domain.Notification, len(n.notifications))
	copy(out, n.notifications)
	return out
}

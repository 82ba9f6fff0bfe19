package memory

import (
	"context"
	"fmt"
	"sync"

	"palantir/internal/domain"
	"palantir/internal/errors"
)

// OrderBook is an in-memory OrderLookup, seeded by the caller.
type OrderBook struct {
	mu     sync.RWMutex
	orders map[uint]domain.Order
}

func NewOrderBook(orders ...domain.Order) *OrderBook {
	b := &OrderBook{orders: make(map[uint]domain.Order, len(orders))}
	for _, o := range orders {
		b.orders[o.ID] = o
	}
	return b
}

func (b *OrderBook) Put(order domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[order.ID] = order
}

func (b *OrderBook) GetOrderByID(ctx context.Context, orderID uint) (*domain.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.orders[orderID]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
	}
	return &o, nil
}

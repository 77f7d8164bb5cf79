package orders

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Order
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Order)}
}

func (r *memoryRepository) Create(_ context.Context, order Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[order.ID] = order
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.storage[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return order, nil
}

func (r *memoryRepository) Update(_ context.Context, order Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[order.ID]; !ok {
		return ErrNotFound
	}
	r.storage[order.ID] = order
	return nil
}

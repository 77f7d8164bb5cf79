package profile

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu           sync.RWMutex
	users        map[string]User
	byPhone      map[string]string
	destinations map[string]PayoutDestination
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users:        make(map[string]User),
		byPhone:      make(map[string]string),
		destinations: make(map[string]PayoutDestination),
	}
}

func (r *memoryRepository) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPhone[user.Phone]; exists {
		return ErrPhoneTaken
	}
	r.users[user.ID] = user
	r.byPhone[user.Phone] = user.ID
	return nil
}

func (r *memoryRepository) FindUserByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindUserByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPhone[phone]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *memoryRepository) AddDestination(_ context.Context, dest PayoutDestination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destinations[dest.ID] = dest
	return nil
}

func (r *memoryRepository) GetDestination(_ context.Context, id string) (PayoutDestination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dest, ok := r.destinations[id]
	if !ok {
		return PayoutDestination{}, ErrNotFound
	}
	return dest, nil
}

func (r *memoryRepository) ListDestinations(_ context.Context, userID string) ([]PayoutDestination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PayoutDestination
	for _, dest := range r.destinations {
		if dest.UserID == userID {
			out = append(out, dest)
		}
	}
	return out, nil
}

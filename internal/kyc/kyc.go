// Package kyc reads approval status from the platform's verification
// subsystems. Document workflows live elsewhere; this package only answers
// "is this user approved".
package kyc

import (
	"context"
	"sync"
)

// Checker answers whether a user has passed KYC.
type Checker interface {
	Approved(ctx context.Context, userID string) (bool, error)
}

// AnyOf combines independent checkers; a user is approved when any one of
// them says so. Errors surface only when every checker fails to answer.
func AnyOf(checkers ...Checker) Checker {
	return anyOf(checkers)
}

type anyOf []Checker

func (c anyOf) Approved(ctx context.Context, userID string) (bool, error) {
	var lastErr error
	for _, checker := range c {
		approved, err := checker.Approved(ctx, userID)
		if err != nil {
			lastErr = err
			continue
		}
		if approved {
			return true, nil
		}
		lastErr = nil
	}
	return false, lastErr
}

// MemoryStore is an in-memory approval record set for tests and dev mode.
type MemoryStore struct {
	mu       sync.RWMutex
	approved map[string]bool
}

// NewMemoryStore constructs an empty in-memory KYC store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{approved: make(map[string]bool)}
}

// SetApproved records the user's approval status.
func (s *MemoryStore) SetApproved(userID string, approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved[userID] = approved
}

// Approved reports the recorded status; unknown users are unapproved.
func (s *MemoryStore) Approved(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approved[userID], nil
}

package wallet

import "sync"

// userLocks serializes balance-affecting work per user. Cross-user work may
// proceed in parallel since it touches disjoint ledger slices.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for userID and returns its unlock function.
func (l *userLocks) acquire(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

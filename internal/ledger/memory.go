package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	byRef   map[string]string
}

// NewMemoryStore creates a concurrency-safe in-memory ledger store useful for
// unit tests and dev mode.
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]Entry),
		byRef:   make(map[string]string),
	}
}

func (s *memoryStore) Append(_ context.Context, entry Entry) (Entry, error) {
	if err := validateNew(entry); err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ExternalRef != "" {
		if _, exists := s.byRef[entry.ExternalRef]; exists {
			return Entry{}, ErrDuplicateReference
		}
	}

	now := time.Now().UTC()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	s.entries[entry.ID] = entry
	if entry.ExternalRef != "" {
		s.byRef[entry.ExternalRef] = entry.ID
	}
	return entry, nil
}

func (s *memoryStore) Transition(_ context.Context, id string, next Status, note string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if !entry.Status.CanTransitionTo(next) {
		return Entry{}, ErrInvalidTransition
	}

	entry.Status = next
	if note != "" {
		entry.Note = note
	}
	entry.UpdatedAt = time.Now().UTC()
	s.entries[id] = entry
	return entry, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *memoryStore) FindByExternalRef(_ context.Context, ref string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[ref]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return s.entries[id], nil
}

func (s *memoryStore) ListByKindAndRelated(_ context.Context, kind Kind, relatedEntryID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.Kind == kind && entry.RelatedEntryID == relatedEntryID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *memoryStore) ListByKind(_ context.Context, kind Kind) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.Kind == kind {
			out = append(out, entry)
		}
	}
	return out, nil
}

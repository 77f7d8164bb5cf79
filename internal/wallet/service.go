package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/qistline/qistline/internal/ledger"
)

// Service owns wallet projection and the investment write path.
type Service struct {
	store  ledger.Store
	cache  SnapshotCache
	rates  Rates
	locks  *userLocks
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(store ledger.Store, cache SnapshotCache, rates Rates, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		rates:  rates,
		locks:  newUserLocks(),
		logger: logger,
	}
}

// Rates exposes the configured settlement rates.
func (s *Service) Rates() Rates {
	return s.rates
}

// Project re-derives the user's snapshot from the full ledger and refreshes
// the cache. Safe to call at any time; a failed cache write degrades to a
// recompute on the next read.
func (s *Service) Project(ctx context.Context, userID string) (Snapshot, error) {
	unlock := s.locks.acquire(userID)
	defer unlock()
	return s.project(ctx, userID)
}

// Snapshot returns the cached projection, recomputing on a miss.
func (s *Service) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	if snapshot, ok, err := s.cache.Get(ctx, userID); err == nil && ok {
		return snapshot, nil
	} else if err != nil {
		s.logger.Warn("snapshot cache read failed", "user_id", userID, "error", err)
	}
	return s.Project(ctx, userID)
}

// PostInvestment appends a completed investment entry and re-projects. The
// next snapshot shows the investment requirement reduced by exactly amount,
// clamped at zero; any surplus raises InvestedAmount with no further effect.
func (s *Service) PostInvestment(ctx context.Context, userID string, amount int64, orderID string) (string, error) {
	if amount <= 0 {
		return "", ledger.ErrInvalidAmount
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	entry, err := s.store.Append(ctx, ledger.Entry{
		UserID:         userID,
		Kind:           ledger.KindInvestment,
		Amount:         amount,
		Status:         ledger.StatusCompleted,
		RelatedOrderID: orderID,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.project(ctx, userID); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// project recomputes and caches without taking the user lock; callers hold it.
func (s *Service) project(ctx context.Context, userID string) (Snapshot, error) {
	entries, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Project(userID, entries, s.rates, time.Now())
	if err := s.cache.Put(ctx, snapshot); err != nil {
		s.logger.Warn("snapshot cache write failed", "user_id", userID, "error", err)
	}
	return snapshot, nil
}

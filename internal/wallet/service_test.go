package wallet

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/logging"
)

func newTestService(t *testing.T) (*Service, ledger.Store) {
	t.Helper()
	store := ledger.NewMemoryStore()
	svc := NewService(store, NewMemoryCache(), DefaultRates(), logging.Discard())
	return svc, store
}

func TestPostInvestmentReducesRequirement(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	ledger.MustAppend(t, store, ledger.Entry{UserID: userID, Kind: ledger.KindReferralCommission, Amount: 1_000, Status: ledger.StatusCompleted})

	before, err := svc.Project(ctx, userID)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if before.RequiredInvestmentRemaining != 500 {
		t.Fatalf("expected requirement 500, got %d", before.RequiredInvestmentRemaining)
	}

	if _, err := svc.PostInvestment(ctx, userID, 500, ""); err != nil {
		t.Fatalf("post investment: %v", err)
	}

	after, err := svc.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if after.RequiredInvestmentRemaining != 0 {
		t.Fatalf("expected requirement cleared, got %d", after.RequiredInvestmentRemaining)
	}
	if after.InvestedAmount != 500 {
		t.Fatalf("expected invested 500, got %d", after.InvestedAmount)
	}
}

func TestPostInvestmentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	for _, amount := range []int64{0, -100} {
		if _, err := svc.PostInvestment(context.Background(), uuid.NewString(), amount, ""); !errors.Is(err, ledger.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %d, got %v", amount, err)
		}
	}
}

func TestSnapshotRecomputesOnCacheMiss(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	ledger.MustAppend(t, store, ledger.Entry{UserID: userID, Kind: ledger.KindDeposit, Amount: 2_500, Status: ledger.StatusCompleted})

	snapshot, err := svc.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.SpendableBalance != 2_500 {
		t.Fatalf("expected spendable 2500, got %d", snapshot.SpendableBalance)
	}
}

func TestRedisCacheRoundTripAndRebuild(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, 0)
	store := ledger.NewMemoryStore()
	svc := NewService(store, cache, DefaultRates(), logging.Discard())

	ctx := context.Background()
	userID := uuid.NewString()
	ledger.MustAppend(t, store, ledger.Entry{UserID: userID, Kind: ledger.KindDeposit, Amount: 4_200, Status: ledger.StatusCompleted})

	projected, err := svc.Project(ctx, userID)
	if err != nil {
		t.Fatalf("project: %v", err)
	}

	cached, ok, err := cache.Get(ctx, userID)
	if err != nil || !ok {
		t.Fatalf("expected cached snapshot, ok=%v err=%v", ok, err)
	}
	if cached != projected {
		t.Fatalf("cached snapshot differs from projection:\n%+v\n%+v", cached, projected)
	}

	// The cache is never authoritative: flush it and the next read rebuilds
	// the identical balances from the ledger.
	mr.FlushAll()

	rebuilt, err := svc.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot after flush: %v", err)
	}
	if rebuilt.SpendableBalance != projected.SpendableBalance || rebuilt.TotalBalance != projected.TotalBalance {
		t.Fatalf("rebuild diverged from original projection:\n%+v\n%+v", rebuilt, projected)
	}
}

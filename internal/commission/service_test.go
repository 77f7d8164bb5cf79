package commission

import (
	"context"
	"errors"
	"testing"

	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/logging"
	"github.com/qistline/qistline/internal/notification"
	"github.com/qistline/qistline/internal/orders"
	"github.com/qistline/qistline/internal/profile"
	"github.com/qistline/qistline/internal/wallet"
)

const platformAccount = "platform:system"

type fixture struct {
	store    ledger.Store
	wallets  *wallet.Service
	orders   *orders.Service
	profiles *profile.Service
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.Discard()
	store := ledger.NewMemoryStore()
	wallets := wallet.NewService(store, wallet.NewMemoryCache(), wallet.DefaultRates(), logger)
	orderSvc := orders.NewService(orders.NewMemoryRepository())
	profiles := profile.NewService(profile.NewMemoryRepository())
	svc := NewService(store, wallets, orderSvc, profiles, notification.NewLoggerNotifier(logger), platformAccount, logger)
	return &fixture{store: store, wallets: wallets, orders: orderSvc, profiles: profiles, svc: svc}
}

// registerPair creates a referrer and a referred payer, returning both ids.
func (f *fixture) registerPair(t *testing.T) (referrerID, payerID string) {
	t.Helper()
	ctx := context.Background()
	referrer, err := f.profiles.Register(ctx, profile.RegisterInput{Phone: "+911234500001", PIN: "1111"})
	if err != nil {
		t.Fatalf("register referrer: %v", err)
	}
	payer, err := f.profiles.Register(ctx, profile.RegisterInput{Phone: "+911234500002", PIN: "2222", ReferredBy: referrer.ID})
	if err != nil {
		t.Fatalf("register payer: %v", err)
	}
	return referrer.ID, payer.ID
}

func TestDistributeFansOutCommissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrerID, payerID := f.registerPair(t)

	order, err := f.orders.Create(ctx, orders.CreateInput{UserID: payerID, Amount: 5_000, TotalInstallments: 10})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	emi := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 500,
		Status: ledger.StatusCompleted, RelatedOrderID: order.ID,
	})

	result, err := f.svc.Distribute(ctx, emi.ID)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.ReferralAmount != 100 {
		t.Fatalf("expected referral commission 100 (20%%), got %d", result.ReferralAmount)
	}
	if result.PlatformAmount != 50 {
		t.Fatalf("expected platform commission 50 (10%%), got %d", result.PlatformAmount)
	}

	referral, err := f.store.Get(ctx, result.ReferralEntryID)
	if err != nil {
		t.Fatalf("get referral entry: %v", err)
	}
	if referral.UserID != referrerID || referral.RelatedUserID != payerID || referral.RelatedEntryID != emi.ID {
		t.Fatalf("referral entry links wrong: %+v", referral)
	}

	updated, err := f.orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if updated.TotalPaid != 500 || updated.InstallmentsPaid != 1 {
		t.Fatalf("expected order paid 500/1, got %d/%d", updated.TotalPaid, updated.InstallmentsPaid)
	}

	// Referrer wallet is re-projected: 100 earned, half locked.
	snapshot, err := f.wallets.Snapshot(ctx, referrerID)
	if err != nil {
		t.Fatalf("referrer snapshot: %v", err)
	}
	if snapshot.SpendableBalance != 50 || snapshot.HoldBalance != 50 {
		t.Fatalf("expected 50/50 split for referrer, got spendable=%d hold=%d", snapshot.SpendableBalance, snapshot.HoldBalance)
	}

	platformSnap, err := f.wallets.Snapshot(ctx, platformAccount)
	if err != nil {
		t.Fatalf("platform snapshot: %v", err)
	}
	if platformSnap.LifetimeEarnings == 0 {
		t.Fatalf("expected platform earnings recorded, got %+v", platformSnap)
	}
}

func TestDistributeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, payerID := f.registerPair(t)

	emi := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 500, Status: ledger.StatusCompleted,
	})

	if _, err := f.svc.Distribute(ctx, emi.ID); err != nil {
		t.Fatalf("first distribute: %v", err)
	}
	if _, err := f.svc.Distribute(ctx, emi.ID); !errors.Is(err, ErrDuplicateDistribution) {
		t.Fatalf("expected ErrDuplicateDistribution, got %v", err)
	}

	// Exactly one referral commission was posted.
	linked, err := f.store.ListByKindAndRelated(ctx, ledger.KindReferralCommission, emi.ID)
	if err != nil {
		t.Fatalf("list referral commissions: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected exactly one referral commission, got %d", len(linked))
	}
}

func TestDistributeReplayAfterPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrerID, payerID := f.registerPair(t)

	emi := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 500, Status: ledger.StatusCompleted,
	})

	// The referral leg landed but the platform leg did not, the state a crash
	// between the two posts leaves behind.
	referral := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: referrerID, Kind: ledger.KindReferralCommission, Amount: 100,
		Status: ledger.StatusCompleted, RelatedUserID: payerID, RelatedEntryID: emi.ID,
	})

	result, err := f.svc.Distribute(ctx, emi.ID)
	if err != nil {
		t.Fatalf("replay distribute: %v", err)
	}
	if result.ReferralEntryID != referral.ID || result.ReferralAmount != 100 {
		t.Fatalf("expected existing referral leg reused, got %+v", result)
	}
	if result.PlatformAmount != 50 {
		t.Fatalf("expected platform commission 50, got %d", result.PlatformAmount)
	}

	// The referrer was paid exactly once.
	linked, err := f.store.ListByKindAndRelated(ctx, ledger.KindReferralCommission, emi.ID)
	if err != nil {
		t.Fatalf("list referral commissions: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected exactly one referral commission, got %d", len(linked))
	}

	if _, err := f.svc.Distribute(ctx, emi.ID); !errors.Is(err, ErrDuplicateDistribution) {
		t.Fatalf("expected ErrDuplicateDistribution once both legs exist, got %v", err)
	}
}

func TestDistributeWithoutReferrerPostsPlatformOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	solo, err := f.profiles.Register(ctx, profile.RegisterInput{Phone: "+911234500003", PIN: "3333"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	emi := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: solo.ID, Kind: ledger.KindEmiPayment, Amount: 1_000, Status: ledger.StatusCompleted,
	})

	result, err := f.svc.Distribute(ctx, emi.ID)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.ReferralEntryID != "" || result.ReferralAmount != 0 {
		t.Fatalf("expected no referral commission, got %+v", result)
	}
	if result.PlatformAmount != 100 {
		t.Fatalf("expected platform commission 100, got %d", result.PlatformAmount)
	}
}

func TestDistributeRejectsNonEligibleEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, payerID := f.registerPair(t)

	pending := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 500, Status: ledger.StatusPending,
	})
	if _, err := f.svc.Distribute(ctx, pending.ID); !errors.Is(err, ErrNotDistributable) {
		t.Fatalf("expected ErrNotDistributable for pending emi, got %v", err)
	}

	deposit := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindDeposit, Amount: 500, Status: ledger.StatusCompleted,
	})
	if _, err := f.svc.Distribute(ctx, deposit.ID); !errors.Is(err, ErrNotDistributable) {
		t.Fatalf("expected ErrNotDistributable for deposit, got %v", err)
	}
}

func TestMissingDistributionsReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, payerID := f.registerPair(t)

	first := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 300, Status: ledger.StatusCompleted,
	})
	second := ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 400, Status: ledger.StatusCompleted,
	})
	ledger.MustAppend(t, f.store, ledger.Entry{
		UserID: payerID, Kind: ledger.KindEmiPayment, Amount: 999, Status: ledger.StatusPending,
	})

	if _, err := f.svc.Distribute(ctx, first.ID); err != nil {
		t.Fatalf("distribute first: %v", err)
	}

	missing, err := f.svc.MissingDistributions(ctx)
	if err != nil {
		t.Fatalf("missing distributions: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != second.ID {
		t.Fatalf("expected only second emi missing, got %+v", missing)
	}

	// Replaying the missing entry settles the backlog.
	if _, err := f.svc.Distribute(ctx, second.ID); err != nil {
		t.Fatalf("replay distribute: %v", err)
	}
	missing, err = f.svc.MissingDistributions(ctx)
	if err != nil {
		t.Fatalf("missing after replay: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing distributions, got %d", len(missing))
	}
}

func TestPostInstallmentCommission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, payerID := f.registerPair(t)

	if _, err := f.svc.PostInstallmentCommission(ctx, payerID, 0, ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := f.svc.PostInstallmentCommission(ctx, payerID, 1_000, ""); err != nil {
		t.Fatalf("post installment commission: %v", err)
	}

	snapshot, err := f.wallets.Snapshot(ctx, payerID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.SpendableBalance != 900 || snapshot.LockedInstallmentCommission != 100 {
		t.Fatalf("expected 90/10 split, got %+v", snapshot)
	}
}

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAppendRejectsBadEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := store.Append(ctx, Entry{UserID: userID, Kind: KindDeposit, Amount: 0, Status: StatusPending}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := store.Append(ctx, Entry{UserID: userID, Kind: KindDeposit, Amount: 100, Status: StatusFailed}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for failed birth status, got %v", err)
	}
}

func TestAppendRejectsDuplicateExternalRef(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ref := "gw-" + uuid.NewString()
	MustAppend(t, store, Entry{UserID: uuid.NewString(), Kind: KindDeposit, Amount: 500, Status: StatusPending, ExternalRef: ref})

	_, err := store.Append(ctx, Entry{UserID: uuid.NewString(), Kind: KindDeposit, Amount: 700, Status: StatusPending, ExternalRef: ref})
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.NewString()

	entry := MustAppend(t, store, Entry{UserID: userID, Kind: KindDeposit, Amount: 1_000, Status: StatusPending})

	updated, err := store.Transition(ctx, entry.ID, StatusCompleted, "")
	if err != nil {
		t.Fatalf("transition to completed: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}

	// Completed is terminal: every further transition must be rejected.
	for _, next := range []Status{StatusPending, StatusCompleted, StatusFailed, StatusCancelled} {
		if _, err := store.Transition(ctx, entry.ID, next, ""); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition moving completed -> %s, got %v", next, err)
		}
	}
}

func TestTransitionRecordsNote(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := MustAppend(t, store, Entry{UserID: uuid.NewString(), Kind: KindWithdrawal, Amount: 250, Status: StatusPending})

	updated, err := store.Transition(ctx, entry.ID, StatusCancelled, "destination closed")
	if err != nil {
		t.Fatalf("cancel withdrawal: %v", err)
	}
	if updated.Note != "destination closed" {
		t.Fatalf("expected cancellation note, got %q", updated.Note)
	}
}

func TestTransitionUnknownEntry(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Transition(context.Background(), uuid.NewString(), StatusCompleted, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByUserAndLookups(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.NewString()
	otherID := uuid.NewString()

	emi := MustAppend(t, store, Entry{UserID: userID, Kind: KindEmiPayment, Amount: 500, Status: StatusCompleted, ExternalRef: "gw-123"})
	MustAppend(t, store, Entry{UserID: userID, Kind: KindDeposit, Amount: 900, Status: StatusCompleted})
	MustAppend(t, store, Entry{UserID: otherID, Kind: KindReferralCommission, Amount: 100, Status: StatusCompleted, RelatedEntryID: emi.ID})

	mine, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 entries for user, got %d", len(mine))
	}

	found, err := store.FindByExternalRef(ctx, "gw-123")
	if err != nil || found.ID != emi.ID {
		t.Fatalf("expected to find emi entry by ref, got %v (%v)", found.ID, err)
	}

	linked, err := store.ListByKindAndRelated(ctx, KindReferralCommission, emi.ID)
	if err != nil {
		t.Fatalf("list by kind and related: %v", err)
	}
	if len(linked) != 1 || linked[0].UserID != otherID {
		t.Fatalf("expected one linked commission for referrer, got %+v", linked)
	}

	emis, err := store.ListByKind(ctx, KindEmiPayment)
	if err != nil || len(emis) != 1 {
		t.Fatalf("expected one emi entry, got %d (%v)", len(emis), err)
	}
}

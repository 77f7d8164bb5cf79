package ledger

import "context"

// Store defines the contract implemented by ledger backends (e.g. Postgres).
// The store is append-only: it persists entries and status transitions and
// never computes balances itself.
type Store interface {
	// Append persists a new entry and returns it with id and timestamps set.
	// The entry must be born pending or completed.
	Append(ctx context.Context, entry Entry) (Entry, error)

	// Transition moves a pending entry to a terminal status. The optional note
	// is recorded alongside (e.g. a cancellation reason).
	Transition(ctx context.Context, id string, next Status, note string) (Entry, error)

	// Get fetches a single entry by id.
	Get(ctx context.Context, id string) (Entry, error)

	// ListByUser returns every entry owned by the user. Callers must not rely
	// on any particular ordering.
	ListByUser(ctx context.Context, userID string) ([]Entry, error)

	// FindByExternalRef locates the entry carrying a payment-gateway reference.
	FindByExternalRef(ctx context.Context, ref string) (Entry, error)

	// ListByKindAndRelated returns entries of the given kind whose
	// RelatedEntryID matches, across all users.
	ListByKindAndRelated(ctx context.Context, kind Kind, relatedEntryID string) ([]Entry, error)

	// ListByKind returns all entries of the given kind across all users.
	ListByKind(ctx context.Context, kind Kind) ([]Entry, error)
}

func validateNew(entry Entry) error {
	if entry.Amount <= 0 {
		return ErrInvalidAmount
	}
	if entry.Status != StatusPending && entry.Status != StatusCompleted {
		return ErrInvalidTransition
	}
	return nil
}

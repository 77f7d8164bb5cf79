package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists ledger entries in PostgreSQL. The ledger_entries
// table is indexed on (user_id, created_at) for the per-user scans the
// projector performs.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, user_id, kind, amount, status, related_order_id,
        related_user_id, related_entry_id, external_ref, note, created_at, updated_at`

// Append inserts a new ledger entry row.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	if err := validateNew(entry); err != nil {
		return Entry{}, err
	}

	if entry.ExternalRef != "" {
		var existing string
		err := s.db.QueryRow(ctx, `SELECT id FROM ledger_entries WHERE external_ref = $1`, entry.ExternalRef).Scan(&existing)
		if err == nil {
			return Entry{}, ErrDuplicateReference
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, err
		}
	}

	now := time.Now().UTC()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.db.Exec(ctx, `INSERT INTO ledger_entries (`+entryColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.UserID, string(entry.Kind), entry.Amount, string(entry.Status),
		entry.RelatedOrderID, entry.RelatedUserID, entry.RelatedEntryID,
		entry.ExternalRef, entry.Note, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// Transition moves a pending entry to a terminal status under row lock.
func (s *PostgresStore) Transition(ctx context.Context, id string, next Status, note string) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1 FOR UPDATE`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}

	if !entry.Status.CanTransitionTo(next) {
		return Entry{}, ErrInvalidTransition
	}

	entry.Status = next
	if note != "" {
		entry.Note = note
	}
	entry.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(ctx, `UPDATE ledger_entries SET status = $2, note = $3, updated_at = $4 WHERE id = $1`,
		entry.ID, string(entry.Status), entry.Note, entry.UpdatedAt); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Get fetches one entry by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

// ListByUser scans the user's full ledger slice.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries
        WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// FindByExternalRef locates the entry for a payment-gateway reference.
func (s *PostgresStore) FindByExternalRef(ctx context.Context, ref string) (Entry, error) {
	row := s.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE external_ref = $1`, ref)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

// ListByKindAndRelated returns entries of a kind linked to a source entry.
func (s *PostgresStore) ListByKindAndRelated(ctx context.Context, kind Kind, relatedEntryID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries
        WHERE kind = $1 AND related_entry_id = $2`, string(kind), relatedEntryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListByKind returns all entries of a kind across users.
func (s *PostgresStore) ListByKind(ctx context.Context, kind Kind) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE kind = $1`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var kind, status string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&e.ID, &e.UserID, &kind, &e.Amount, &status,
		&e.RelatedOrderID, &e.RelatedUserID, &e.RelatedEntryID,
		&e.ExternalRef, &e.Note, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}
	e.Kind = Kind(kind)
	e.Status = Status(status)
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	return e, nil
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

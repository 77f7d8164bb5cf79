package kyc

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads approval flags from one KYC record table. The platform
// runs two independent verification pipelines, so two instances with
// different tables are typically combined via AnyOf.
type PostgresStore struct {
	db    *pgxpool.Pool
	table string
}

// NewPostgresStore builds a reader over the named KYC table.
func NewPostgresStore(db *pgxpool.Pool, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

// Approved reports whether the user has an approved record on file.
func (s *PostgresStore) Approved(ctx context.Context, userID string) (bool, error) {
	var approved bool
	err := s.db.QueryRow(ctx, `SELECT approved FROM `+s.table+` WHERE user_id = $1`, userID).Scan(&approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users and payout destinations.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByID(ctx context.Context, id string) (User, error)
	FindUserByPhone(ctx context.Context, phone string) (User, error)
	AddDestination(ctx context.Context, dest PayoutDestination) error
	GetDestination(ctx context.Context, id string) (PayoutDestination, error)
	ListDestinations(ctx context.Context, userID string) ([]PayoutDestination, error)
}

// PostgresRepository stores profiles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a user record.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, phone, pin_hash, referred_by, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		userID, user.Phone, user.PINHash, user.ReferredBy, user.CreatedAt.UTC())
	return err
}

// FindUserByID fetches a user by identifier.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id string) (User, error) {
	return r.findUser(ctx, `SELECT id, phone, pin_hash, referred_by, created_at FROM users WHERE id = $1`, id)
}

// FindUserByPhone fetches a user by phone number.
func (r *PostgresRepository) FindUserByPhone(ctx context.Context, phone string) (User, error) {
	return r.findUser(ctx, `SELECT id, phone, pin_hash, referred_by, created_at FROM users WHERE phone = $1`, phone)
}

func (r *PostgresRepository) findUser(ctx context.Context, query, arg string) (User, error) {
	var u User
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Phone, &u.PINHash, &u.ReferredBy, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = createdAt.UTC()
	return u, nil
}

// AddDestination inserts a payout destination row.
func (r *PostgresRepository) AddDestination(ctx context.Context, dest PayoutDestination) error {
	_, err := r.db.Exec(ctx, `INSERT INTO payout_destinations (id, user_id, method, bank_name,
        account_number, account_name, handle, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		dest.ID, dest.UserID, string(dest.Method), dest.BankName,
		dest.AccountNumber, dest.AccountName, dest.Handle, dest.CreatedAt.UTC())
	return err
}

// GetDestination fetches a destination by identifier.
func (r *PostgresRepository) GetDestination(ctx context.Context, id string) (PayoutDestination, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, method, bank_name, account_number,
        account_name, handle, created_at FROM payout_destinations WHERE id = $1`, id)
	dest, err := scanDestination(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PayoutDestination{}, ErrNotFound
		}
		return PayoutDestination{}, err
	}
	return dest, nil
}

// ListDestinations returns every destination on file for the user.
func (r *PostgresRepository) ListDestinations(ctx context.Context, userID string) ([]PayoutDestination, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, method, bank_name, account_number,
        account_name, handle, created_at FROM payout_destinations WHERE user_id = $1
        ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayoutDestination
	for rows.Next() {
		dest, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dest)
	}
	return out, rows.Err()
}

func scanDestination(row pgx.Row) (PayoutDestination, error) {
	var d PayoutDestination
	var method string
	var createdAt time.Time
	if err := row.Scan(&d.ID, &d.UserID, &method, &d.BankName,
		&d.AccountNumber, &d.AccountName, &d.Handle, &createdAt); err != nil {
		return PayoutDestination{}, err
	}
	d.Method = DestinationMethod(method)
	d.CreatedAt = createdAt.UTC()
	return d, nil
}

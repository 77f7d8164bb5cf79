package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists order aggregates.
type Repository interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id string) (Order, error)
	Update(ctx context.Context, order Order) error
}

// PostgresRepository stores orders in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an order row.
func (r *PostgresRepository) Create(ctx context.Context, order Order) error {
	orderID, err := uuid.Parse(order.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO orders (id, user_id, amount, total_installments,
        installments_paid, total_paid, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		orderID, order.UserID, order.Amount, order.TotalInstallments,
		order.InstallmentsPaid, order.TotalPaid, string(order.Status),
		order.CreatedAt.UTC(), order.UpdatedAt.UTC())
	return err
}

// Get fetches an order by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Order, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, amount, total_installments,
        installments_paid, total_paid, status, created_at, updated_at
        FROM orders WHERE id = $1`, id)

	var o Order
	var status string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&o.ID, &o.UserID, &o.Amount, &o.TotalInstallments,
		&o.InstallmentsPaid, &o.TotalPaid, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	o.Status = Status(status)
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()
	return o, nil
}

// Update rewrites the mutable schedule fields.
func (r *PostgresRepository) Update(ctx context.Context, order Order) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET installments_paid = $2, total_paid = $3,
        status = $4, updated_at = $5 WHERE id = $1`,
		order.ID, order.InstallmentsPaid, order.TotalPaid, string(order.Status), order.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes order lifecycle operations consumed by the settlement core.
type Service struct {
	repo Repository
}

// NewService builds an order service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to open an installment order.
type CreateInput struct {
	UserID            string
	Amount            int64
	TotalInstallments int
}

// Create opens a new installment order in confirmed state.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if input.Amount <= 0 || input.TotalInstallments <= 0 {
		return Order{}, ErrInvalidOrder
	}

	now := time.Now().UTC()
	order := Order{
		ID:                uuid.NewString(),
		UserID:            input.UserID,
		Amount:            input.Amount,
		TotalInstallments: input.TotalInstallments,
		Status:            StatusConfirmed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// Get retrieves an order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.Get(ctx, id)
}

// RecordInstallment books one paid installment against the order and
// completes it once the schedule or amount is exhausted.
func (s *Service) RecordInstallment(ctx context.Context, orderID string, amount int64) (Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.closed() {
		return Order{}, ErrOrderClosed
	}

	order.InstallmentsPaid++
	order.TotalPaid += amount
	if order.TotalPaid >= order.Amount || order.InstallmentsPaid >= order.TotalInstallments {
		order.Status = StatusCompleted
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, order); err != nil {
		return Order{}, err
	}
	return order, nil
}

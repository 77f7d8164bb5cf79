package orders

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrOrderClosed occurs when an installment is recorded against a
	// completed or cancelled order.
	ErrOrderClosed = errors.New("order is closed")

	// ErrInvalidOrder occurs when an order is created with bad amounts.
	ErrInvalidOrder = errors.New("invalid order")
)

// Status tracks an order through its installment schedule.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Order is the installment-purchase aggregate. The settlement core reads the
// schedule fields and writes InstallmentsPaid/TotalPaid/Status as payments
// land; everything else belongs to the commerce side of the platform.
type Order struct {
	ID                string
	UserID            string
	Amount            int64
	TotalInstallments int
	InstallmentsPaid  int
	TotalPaid         int64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o Order) closed() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

package ledger

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested ledger entry does not exist.
	ErrNotFound = errors.New("ledger entry not found")

	// ErrInvalidTransition occurs when a status change is requested that the
	// entry lifecycle does not allow (e.g. mutating a terminal entry).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidAmount occurs when an entry is appended with a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrDuplicateReference indicates the external payment reference is already
	// attached to another entry.
	ErrDuplicateReference = errors.New("duplicate external reference")
)

// Kind classifies the monetary event an entry records.
type Kind string

const (
	KindDeposit               Kind = "deposit"
	KindWithdrawal            Kind = "withdrawal"
	KindPurchase              Kind = "purchase"
	KindRefund                Kind = "refund"
	KindBonus                 Kind = "bonus"
	KindInvestment            Kind = "investment"
	KindReferralCommission    Kind = "referral_commission"
	KindPlatformCommission    Kind = "platform_commission"
	KindEmiPayment            Kind = "emi_payment"
	KindInstallmentCommission Kind = "installment_commission"
)

// Status tracks where an entry is in its lifecycle. Transitions are forward
// only: a pending entry may complete, fail or be cancelled; completed, failed
// and cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPending {
		return false
	}
	switch next {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Entry is an immutable record of a monetary event. Amounts are minor units
// (e.g. cents) and always positive; the kind carries the sign semantics.
// Once appended only the status, note and external reference may change;
// corrections are issued as new offsetting entries, never edits.
type Entry struct {
	ID             string
	UserID         string
	Kind           Kind
	Amount         int64
	Status         Status
	RelatedOrderID string
	RelatedUserID  string
	RelatedEntryID string
	ExternalRef    string
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

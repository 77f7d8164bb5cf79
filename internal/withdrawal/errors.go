package withdrawal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount occurs when the requested amount is not positive.
	ErrInvalidAmount = errors.New("withdrawal amount must be positive")

	// ErrInvalidDestination occurs when the named payout destination does not
	// exist, belongs to another user, or is malformed.
	ErrInvalidDestination = errors.New("invalid payout destination")

	// ErrKycRequired occurs when no KYC subsystem has approved the user.
	ErrKycRequired = errors.New("kyc approval required")

	// ErrDestinationRequired occurs when the user has no payout destination
	// on file.
	ErrDestinationRequired = errors.New("payout destination required")

	// ErrInsufficientBalance occurs when the amount exceeds the spendable
	// balance at request time.
	ErrInsufficientBalance = errors.New("insufficient spendable balance")

	// ErrReasonRequired occurs when a withdrawal is cancelled without a reason.
	ErrReasonRequired = errors.New("cancellation reason required")
)

// SpendRequirementError reports an unmet in-app spend gate. The shortfall is
// in the same minor units as balances so callers can show the user exactly
// what remains.
type SpendRequirementError struct {
	Required  int64 `json:"required"`
	Spent     int64 `json:"spent"`
	Remaining int64 `json:"remaining"`
}

func (e *SpendRequirementError) Error() string {
	return fmt.Sprintf("in-app spend requirement not met: %d of %d spent, %d remaining", e.Spent, e.Required, e.Remaining)
}

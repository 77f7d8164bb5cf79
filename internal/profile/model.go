package profile

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the user or destination does not exist.
	ErrNotFound = errors.New("profile record not found")

	// ErrPhoneTaken occurs when registering an already-registered phone.
	ErrPhoneTaken = errors.New("phone already registered")

	// ErrReferrerNotFound occurs when a registration names an unknown referrer.
	ErrReferrerNotFound = errors.New("referrer not found")

	// ErrInvalidDestination occurs when a payout destination is malformed.
	ErrInvalidDestination = errors.New("invalid payout destination")
)

// User is a platform account. ReferredBy links to the user whose referral
// code was used at signup; the settlement core reads it and never writes it.
type User struct {
	ID         string
	Phone      string
	PINHash    []byte
	ReferredBy string
	CreatedAt  time.Time
}

// DestinationMethod distinguishes payout destination shapes.
type DestinationMethod string

const (
	MethodBank   DestinationMethod = "bank"
	MethodHandle DestinationMethod = "handle"
)

// PayoutDestination is where approved withdrawals are paid out: either a bank
// account tuple or a payment-handle string.
type PayoutDestination struct {
	ID            string
	UserID        string
	Method        DestinationMethod
	BankName      string
	AccountNumber string
	AccountName   string
	Handle        string
	CreatedAt     time.Time
}

// Valid reports whether the destination carries the fields its method needs.
func (d PayoutDestination) Valid() bool {
	switch d.Method {
	case MethodBank:
		return d.BankName != "" && d.AccountNumber != "" && d.AccountName != ""
	case MethodHandle:
		return d.Handle != ""
	default:
		return false
	}
}

package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qistline/qistline/internal/kyc"
	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/notification"
	"github.com/qistline/qistline/internal/profile"
	"github.com/qistline/qistline/internal/wallet"
)

// Service gates withdrawal requests behind KYC, payout-destination and
// in-app-spend rules, then owns the pending withdrawal's approval lifecycle.
type Service struct {
	store    ledger.Store
	wallets  *wallet.Service
	kyc      kyc.Checker
	profiles *profile.Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a withdrawal service.
func NewService(store ledger.Store, wallets *wallet.Service, checker kyc.Checker,
	profiles *profile.Service, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		wallets:  wallets,
		kyc:      checker,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
	}
}

// Request validates the preconditions in order and, on success, posts a
// pending withdrawal entry. Nothing is deducted until an operator approves:
// the pending entry does not reduce the spendable balance.
func (s *Service) Request(ctx context.Context, userID string, amount int64, destinationID string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	dest, err := s.profiles.Destination(ctx, destinationID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return "", ErrInvalidDestination
		}
		return "", err
	}
	if dest.UserID != userID || !dest.Valid() {
		return "", ErrInvalidDestination
	}

	approved, err := s.kyc.Approved(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("kyc lookup: %w", err)
	}
	if !approved {
		return "", ErrKycRequired
	}

	onFile, err := s.profiles.Destinations(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(onFile) == 0 {
		return "", ErrDestinationRequired
	}

	// Always gate on a fresh projection, never the cached snapshot.
	snapshot, err := s.wallets.Project(ctx, userID)
	if err != nil {
		return "", err
	}
	if amount > snapshot.SpendableBalance {
		return "", ErrInsufficientBalance
	}

	if unmet := spendGate(snapshot, s.wallets.Rates()); unmet != nil {
		return "", unmet
	}

	entry, err := s.store.Append(ctx, ledger.Entry{
		UserID: userID,
		Kind:   ledger.KindWithdrawal,
		Amount: amount,
		Status: ledger.StatusPending,
		Note:   "payout:" + dest.ID,
	})
	if err != nil {
		return "", err
	}

	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindWithdrawalRequested,
		Destination: userID,
		Body:        fmt.Sprintf("withdrawal of %d awaiting approval", amount),
	})

	return entry.ID, nil
}

// Approve completes a pending withdrawal; funds are deducted by the
// projection once the entry is terminal.
func (s *Service) Approve(ctx context.Context, entryID string) error {
	entry, err := s.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Kind != ledger.KindWithdrawal {
		return ledger.ErrInvalidTransition
	}

	if _, err := s.store.Transition(ctx, entryID, ledger.StatusCompleted, ""); err != nil {
		return err
	}
	_, err = s.wallets.Project(ctx, entry.UserID)
	return err
}

// Cancel voids a pending withdrawal with a required reason. No deduction ever
// happened, so the snapshot is unchanged apart from the refreshed projection.
func (s *Service) Cancel(ctx context.Context, entryID, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}

	entry, err := s.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Kind != ledger.KindWithdrawal {
		return ledger.ErrInvalidTransition
	}

	if _, err := s.store.Transition(ctx, entryID, ledger.StatusCancelled, reason); err != nil {
		return err
	}
	_, err = s.wallets.Project(ctx, entry.UserID)
	return err
}

// Eligibility describes what stands between the user and a payout.
type Eligibility struct {
	CanWithdraw     bool  `json:"can_withdraw"`
	WithdrawableNow int64 `json:"withdrawable_now"`
	KycApproved     bool  `json:"kyc_approved"`
	HasDestination  bool  `json:"has_destination"`
	SpendRequired   int64 `json:"spend_required"`
	SpendSpent      int64 `json:"spend_spent"`
	SpendRemaining  int64 `json:"spend_remaining"`
}

// Eligibility reports the withdrawal gates for a user without posting anything.
func (s *Service) Eligibility(ctx context.Context, userID string) (Eligibility, error) {
	approved, err := s.kyc.Approved(ctx, userID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("kyc lookup: %w", err)
	}

	onFile, err := s.profiles.Destinations(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}

	snapshot, err := s.wallets.Project(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}

	out := Eligibility{
		WithdrawableNow: snapshot.SpendableBalance,
		KycApproved:     approved,
		HasDestination:  len(onFile) > 0,
		SpendSpent:      snapshot.CommissionSpentInApp,
	}
	if unmet := spendGate(snapshot, s.wallets.Rates()); unmet != nil {
		out.SpendRequired = unmet.Required
		out.SpendRemaining = unmet.Remaining
	} else if snapshot.CommissionEarned > 0 {
		out.SpendRequired = wallet.Share(snapshot.CommissionEarned, s.wallets.Rates().SpendBps)
	}

	out.CanWithdraw = out.KycApproved && out.HasDestination &&
		out.SpendRemaining == 0 && out.WithdrawableNow > 0
	return out, nil
}

// spendGate returns the unmet spend requirement, or nil when satisfied.
func spendGate(snapshot wallet.Snapshot, rates wallet.Rates) *SpendRequirementError {
	if snapshot.CommissionEarned <= 0 {
		return nil
	}
	required := wallet.Share(snapshot.CommissionEarned, rates.SpendBps)
	if snapshot.CommissionSpentInApp >= required {
		return nil
	}
	return &SpendRequirementError{
		Required:  required,
		Spent:     snapshot.CommissionSpentInApp,
		Remaining: required - snapshot.CommissionSpentInApp,
	}
}

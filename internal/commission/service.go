package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/notification"
	"github.com/qistline/qistline/internal/orders"
	"github.com/qistline/qistline/internal/profile"
	"github.com/qistline/qistline/internal/wallet"
)

var (
	// ErrNotDistributable occurs when the entry is not a completed EMI payment.
	ErrNotDistributable = errors.New("entry is not a completed emi payment")

	// ErrDuplicateDistribution indicates commission was already posted for
	// this EMI payment.
	ErrDuplicateDistribution = errors.New("commission already distributed")
)

// Service fans a completed EMI payment out into referral and platform
// commission entries.
type Service struct {
	store           ledger.Store
	wallets         *wallet.Service
	orders          *orders.Service
	profiles        *profile.Service
	notifier        notification.Notifier
	platformAccount string
	logger          *slog.Logger
}

// NewService constructs a commission service.
func NewService(store ledger.Store, wallets *wallet.Service, orderSvc *orders.Service,
	profiles *profile.Service, notifier notification.Notifier, platformAccount string, logger *slog.Logger) *Service {
	return &Service{
		store:           store,
		wallets:         wallets,
		orders:          orderSvc,
		profiles:        profiles,
		notifier:        notifier,
		platformAccount: platformAccount,
		logger:          logger,
	}
}

// Result describes the ledger entries one distribution produced.
type Result struct {
	EmiEntryID      string `json:"emi_entry_id"`
	ReferralEntryID string `json:"referral_entry_id,omitempty"`
	ReferralUserID  string `json:"referral_user_id,omitempty"`
	ReferralAmount  int64  `json:"referral_amount"`
	PlatformEntryID string `json:"platform_entry_id"`
	PlatformAmount  int64  `json:"platform_amount"`
}

// Distribute posts commission entries for a completed EMI payment and books
// the installment on the order. It is idempotent per EMI entry: each leg is
// keyed to the EMI via RelatedEntryID and skipped when already present, so a
// replay after a partial failure finishes the missing leg, and a replay of a
// fully distributed EMI reports ErrDuplicateDistribution.
func (s *Service) Distribute(ctx context.Context, emiEntryID string) (Result, error) {
	emi, err := s.store.Get(ctx, emiEntryID)
	if err != nil {
		return Result{}, err
	}
	if emi.Kind != ledger.KindEmiPayment || emi.Status != ledger.StatusCompleted {
		return Result{}, ErrNotDistributable
	}

	// Each leg is checked against the ledger independently. A replay after a
	// crash between the two posts must finish the missing leg without paying
	// the referrer a second time.
	existingReferral, err := s.store.ListByKindAndRelated(ctx, ledger.KindReferralCommission, emi.ID)
	if err != nil {
		return Result{}, err
	}
	existingPlatform, err := s.store.ListByKindAndRelated(ctx, ledger.KindPlatformCommission, emi.ID)
	if err != nil {
		return Result{}, err
	}

	rates := s.wallets.Rates()
	result := Result{EmiEntryID: emi.ID}

	referrerID, err := s.profiles.Referrer(ctx, emi.UserID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return Result{}, fmt.Errorf("resolve referrer: %w", err)
	}

	referralDone := referrerID == "" || len(existingReferral) > 0
	if referralDone && len(existingPlatform) > 0 {
		return Result{}, ErrDuplicateDistribution
	}

	switch {
	case referrerID != "" && len(existingReferral) == 0:
		referral, err := s.store.Append(ctx, ledger.Entry{
			UserID:         referrerID,
			Kind:           ledger.KindReferralCommission,
			Amount:         wallet.Share(emi.Amount, rates.ReferralBps),
			Status:         ledger.StatusCompleted,
			RelatedOrderID: emi.RelatedOrderID,
			RelatedUserID:  emi.UserID,
			RelatedEntryID: emi.ID,
		})
		if err != nil {
			return Result{}, fmt.Errorf("post referral commission: %w", err)
		}
		result.ReferralEntryID = referral.ID
		result.ReferralUserID = referrerID
		result.ReferralAmount = referral.Amount
	case len(existingReferral) > 0:
		result.ReferralEntryID = existingReferral[0].ID
		result.ReferralUserID = existingReferral[0].UserID
		result.ReferralAmount = existingReferral[0].Amount
	}

	platform, err := s.store.Append(ctx, ledger.Entry{
		UserID:         s.platformAccount,
		Kind:           ledger.KindPlatformCommission,
		Amount:         wallet.Share(emi.Amount, rates.PlatformBps),
		Status:         ledger.StatusCompleted,
		RelatedOrderID: emi.RelatedOrderID,
		RelatedUserID:  emi.UserID,
		RelatedEntryID: emi.ID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("post platform commission: %w", err)
	}
	result.PlatformEntryID = platform.ID
	result.PlatformAmount = platform.Amount

	if referrerID != "" {
		if _, err := s.wallets.Project(ctx, referrerID); err != nil {
			return Result{}, err
		}
	}
	if _, err := s.wallets.Project(ctx, s.platformAccount); err != nil {
		return Result{}, err
	}

	if emi.RelatedOrderID != "" {
		if _, err := s.orders.RecordInstallment(ctx, emi.RelatedOrderID, emi.Amount); err != nil {
			// A closed order means the installment was already booked; any
			// other failure must surface so the caller can retry.
			if !errors.Is(err, orders.ErrOrderClosed) {
				return Result{}, fmt.Errorf("record installment: %w", err)
			}
			s.logger.Warn("installment on closed order", "order_id", emi.RelatedOrderID, "entry_id", emi.ID)
		}
	}

	if referrerID != "" {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindCommissionCredited,
			Destination: referrerID,
			Body:        fmt.Sprintf("referral commission of %d credited", result.ReferralAmount),
		})
	}

	return result, nil
}

// PostInstallmentCommission credits an installment-wallet commission to the
// user. The projector applies the 90/10 credit/lock split.
func (s *Service) PostInstallmentCommission(ctx context.Context, userID string, amount int64, orderID string) (string, error) {
	if amount <= 0 {
		return "", ledger.ErrInvalidAmount
	}

	entry, err := s.store.Append(ctx, ledger.Entry{
		UserID:         userID,
		Kind:           ledger.KindInstallmentCommission,
		Amount:         amount,
		Status:         ledger.StatusCompleted,
		RelatedOrderID: orderID,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.wallets.Project(ctx, userID); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// MissingDistributions returns completed EMI payment entries that have no
// platform commission linked to them. A reconciliation job replays Distribute
// for each.
func (s *Service) MissingDistributions(ctx context.Context) ([]ledger.Entry, error) {
	emis, err := s.store.ListByKind(ctx, ledger.KindEmiPayment)
	if err != nil {
		return nil, err
	}

	var missing []ledger.Entry
	for _, emi := range emis {
		if emi.Status != ledger.StatusCompleted {
			continue
		}
		linked, err := s.store.ListByKindAndRelated(ctx, ledger.KindPlatformCommission, emi.ID)
		if err != nil {
			return nil, err
		}
		if len(linked) == 0 {
			missing = append(missing, emi)
		}
	}
	return missing, nil
}

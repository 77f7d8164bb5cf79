package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qistline/qistline/internal/commission"
	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/wallet"
)

// ErrAlreadySettled indicates the gateway reference was already confirmed or
// failed; the callback is a replay.
var ErrAlreadySettled = errors.New("payment already settled")

// Service records payment-gateway outcomes against pending ledger entries.
// The gateway's own verification is trusted; this core only transitions the
// entry and fans out the follow-up work.
type Service struct {
	store       ledger.Store
	wallets     *wallet.Service
	distributor *commission.Service
	logger      *slog.Logger
}

// NewService constructs a payments service.
func NewService(store ledger.Store, wallets *wallet.Service, distributor *commission.Service, logger *slog.Logger) *Service {
	return &Service{store: store, wallets: wallets, distributor: distributor, logger: logger}
}

// ConfirmResult describes the outcome of a gateway callback.
type ConfirmResult struct {
	EntryID     string `json:"entry_id"`
	Status      string `json:"status"`
	Distributed bool   `json:"distributed"`
}

// Confirm settles the entry carrying the gateway reference. A successful EMI
// payment triggers commission distribution; a distribution failure does not
// roll the payment back. The entry stays completed and the reconciliation
// query picks it up.
func (s *Service) Confirm(ctx context.Context, externalRef string, success bool) (ConfirmResult, error) {
	entry, err := s.store.FindByExternalRef(ctx, externalRef)
	if err != nil {
		return ConfirmResult{}, err
	}
	if entry.Status.Terminal() {
		return ConfirmResult{}, ErrAlreadySettled
	}

	next := ledger.StatusCompleted
	if !success {
		next = ledger.StatusFailed
	}
	entry, err = s.store.Transition(ctx, entry.ID, next, "")
	if err != nil {
		return ConfirmResult{}, err
	}

	// Both outcomes move the projection: a failed deposit leaves the
	// pending-deposit hold, a completed one lands in spendable.
	if _, err := s.wallets.Project(ctx, entry.UserID); err != nil {
		return ConfirmResult{}, fmt.Errorf("project payer wallet: %w", err)
	}

	result := ConfirmResult{EntryID: entry.ID, Status: string(entry.Status)}
	if !success {
		return result, nil
	}

	if entry.Kind == ledger.KindEmiPayment {
		if _, err := s.distributor.Distribute(ctx, entry.ID); err != nil {
			// Commission posting must not undo the settled payment.
			s.logger.Error("commission distribution failed", "entry_id", entry.ID, "error", err)
		} else {
			result.Distributed = true
		}
	}
	return result, nil
}

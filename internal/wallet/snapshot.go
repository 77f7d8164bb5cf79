package wallet

import (
	"time"

	"github.com/qistline/qistline/internal/ledger"
)

// Rates holds the settlement knobs in basis points so every derived amount
// stays an exact minor-unit integer.
type Rates struct {
	// LockBps is the fraction of referral bonus locked until matched by
	// investment entries.
	LockBps int64
	// ReferralBps is the referrer's share of a completed EMI payment.
	ReferralBps int64
	// PlatformBps is the platform's share of a completed EMI payment.
	PlatformBps int64
	// SpendBps is the fraction of earned commission that must be spent in-app
	// before withdrawal is allowed.
	SpendBps int64
	// InstallmentLockBps is the locked share of installment-wallet commissions
	// (the 90/10 product line).
	InstallmentLockBps int64
}

// DefaultRates returns the production defaults: 50% referral lock, 20%
// referral share, 10% platform share, 10% spend gate, 10% installment lock.
func DefaultRates() Rates {
	return Rates{
		LockBps:            5_000,
		ReferralBps:        2_000,
		PlatformBps:        1_000,
		SpendBps:           1_000,
		InstallmentLockBps: 1_000,
	}
}

// Share applies a basis-point rate to a minor-unit amount.
func Share(amount, bps int64) int64 {
	return amount * bps / 10_000
}

// Snapshot is the derived view of a user's wallet. It is a cache of
// Project over the full ledger and never an independent source of truth;
// it is safe to discard and rebuild at any time.
type Snapshot struct {
	UserID                      string    `json:"user_id"`
	SpendableBalance            int64     `json:"spendable_balance"`
	HoldBalance                 int64     `json:"hold_balance"`
	TotalBalance                int64     `json:"total_balance"`
	PendingDeposits             int64     `json:"pending_deposits"`
	LifetimeReferralBonus       int64     `json:"lifetime_referral_bonus"`
	InvestedAmount              int64     `json:"invested_amount"`
	RequiredInvestmentRemaining int64     `json:"required_investment_remaining"`
	LockedInstallmentCommission int64     `json:"locked_installment_commission"`
	CommissionEarned            int64     `json:"commission_earned"`
	CommissionSpentInApp        int64     `json:"commission_spent_in_app"`
	LifetimeEarnings            int64     `json:"lifetime_earnings"`
	ProjectedAt                 time.Time `json:"projected_at"`
}

// Project derives a wallet snapshot from a user's full ledger slice. It is a
// pure function: entry order is irrelevant, repeated calls over the same
// entries yield identical snapshots, and an empty ledger projects to zeros.
//
// Referral commissions count toward the lock accounting regardless of status,
// matching the platform's historical behavior for pending commissions.
func Project(userID string, entries []ledger.Entry, rates Rates, now time.Time) Snapshot {
	var (
		completedDeposits     int64
		pendingDeposits       int64
		withdrawals           int64
		referralBonusTotal    int64
		investedAmount        int64
		installmentCommission int64
		platformCommission    int64
		purchases             int64
		bonusTotal            int64
	)

	for _, e := range entries {
		switch e.Kind {
		case ledger.KindDeposit:
			switch e.Status {
			case ledger.StatusCompleted:
				completedDeposits += e.Amount
			case ledger.StatusPending:
				pendingDeposits += e.Amount
			}
		case ledger.KindRefund:
			if e.Status == ledger.StatusCompleted {
				completedDeposits += e.Amount
			}
		case ledger.KindBonus:
			if e.Status == ledger.StatusCompleted {
				completedDeposits += e.Amount
				bonusTotal += e.Amount
			}
		case ledger.KindWithdrawal:
			// Pending withdrawals are not deducted; funds leave the wallet only
			// on operator approval.
			if e.Status == ledger.StatusCompleted {
				withdrawals += e.Amount
			}
		case ledger.KindReferralCommission:
			if e.Status != ledger.StatusFailed && e.Status != ledger.StatusCancelled {
				referralBonusTotal += e.Amount
			}
		case ledger.KindInvestment:
			if e.Status == ledger.StatusCompleted {
				investedAmount += e.Amount
			}
		case ledger.KindInstallmentCommission:
			if e.Status == ledger.StatusCompleted {
				installmentCommission += e.Amount
			}
		case ledger.KindPlatformCommission:
			// Credited to whichever account owns the entry, normally the
			// platform system account. No lock applies.
			if e.Status == ledger.StatusCompleted {
				platformCommission += e.Amount
			}
		case ledger.KindPurchase:
			if e.Status == ledger.StatusCompleted {
				purchases += e.Amount
			}
		}
	}

	lockedPortion := Share(referralBonusTotal, rates.LockBps)
	requiredRemaining := max0(lockedPortion - investedAmount)
	withdrawableReferral := max0(referralBonusTotal - requiredRemaining)

	// The installment-wallet product credits 90% immediately and locks 10%;
	// this lock is independent of the referral lock above.
	lockedInstallment := Share(installmentCommission, rates.InstallmentLockBps)
	creditedInstallment := installmentCommission - lockedInstallment

	spendable := max0(completedDeposits + withdrawableReferral + creditedInstallment + platformCommission - withdrawals - investedAmount)
	hold := pendingDeposits + requiredRemaining + lockedInstallment

	return Snapshot{
		UserID:                      userID,
		SpendableBalance:            spendable,
		HoldBalance:                 hold,
		TotalBalance:                spendable + hold,
		PendingDeposits:             pendingDeposits,
		LifetimeReferralBonus:       referralBonusTotal,
		InvestedAmount:              investedAmount,
		RequiredInvestmentRemaining: requiredRemaining,
		LockedInstallmentCommission: lockedInstallment,
		CommissionEarned:            referralBonusTotal + installmentCommission + platformCommission,
		CommissionSpentInApp:        purchases,
		LifetimeEarnings:            referralBonusTotal + installmentCommission + platformCommission + bonusTotal,
		ProjectedAt:                 now.UTC(),
	}
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

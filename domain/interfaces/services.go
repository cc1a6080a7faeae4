package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
)

// LedgerService defines the interface for the deposit and withdrawal lifecycle
type LedgerService interface {
	// RequestDeposit records a pending deposit intent
	RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string) (*entities.Transaction, error)

	// RequestWithdrawal records a pending withdrawal intent against the
	// withdrawable yield balance
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency, walletAddress string) (*entities.Transaction, error)

	// Approve applies an admin approval: deposits credit the invest balance
	// (creating the account on first deposit), withdrawals debit the yield
	// balance
	Approve(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error)

	// Reject marks a pending entry rejected without touching balances
	Reject(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error)

	// Undo reverses a prior approval, compensating the balance move and
	// returning the entry to pending
	Undo(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error)

	// ListTransactions returns a user's journal entries, newest first
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error)

	// ListPending returns all pending journal entries for the admin queue
	ListPending(ctx context.Context, limit int) ([]*entities.Transaction, error)
}

// AccrualService defines the interface for yield and commission accrual.
// Each call is expected to run inside its own unit of work; the caller
// iterates accounts and commits per account.
type AccrualService interface {
	// AccrueAccount runs the daily accrual for one account: own yield,
	// upline commissions, and the monthly pool share when due. Re-running
	// for the same day is a no-op.
	AccrueAccount(ctx context.Context, userID uuid.UUID, day time.Time) (*entities.AccrualResult, error)
}

// CycleService defines the interface for cycle day advancement
type CycleService interface {
	// TickAccount advances one account's cycle day to match the calendar,
	// renewing or closing a completed cycle per the account's renewal flag
	TickAccount(ctx context.Context, userID uuid.UUID, today time.Time) (*entities.CycleOutcome, error)
}

// ReferralService defines the interface for the referral tree
type ReferralService interface {
	// RegisterEdge records the inviter of a newly registered user
	RegisterEdge(ctx context.Context, childUserID, parentUserID uuid.UUID) error

	// Counts returns the downline sizes for the first three levels
	Counts(ctx context.Context, userID uuid.UUID) (entities.ReferralCounts, error)

	// Earnings returns lifetime commission earned from the downline
	Earnings(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// Upline returns up to three ancestors, nearest first
	Upline(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// AccountService defines the interface for account reads and self-service moves
type AccountService interface {
	// Register creates the zero-balance account row for a newly signed-up
	// user. Calling it again for the same user returns the existing account.
	Register(ctx context.Context, userID uuid.UUID) (*entities.Account, error)

	// Snapshot assembles the dashboard read model for a user
	Snapshot(ctx context.Context, userID uuid.UUID) (*entities.AccountSnapshot, error)

	// SetFlags updates the auto-compound and auto-renew preferences
	SetFlags(ctx context.Context, userID uuid.UUID, flags entities.AccountFlags) (*entities.Account, error)

	// Reinvest moves amount from withdrawable yield into invested principal
	Reinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// PoolReinvest moves amount from the pool balance into invested principal.
	// Fails with entities.ErrPoolLocked before the second cycle.
	PoolReinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// PoolWithdraw moves amount from the pool balance into withdrawable yield.
	// Fails with entities.ErrPoolLocked before the second cycle.
	PoolWithdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// Adjust applies an admin correction to one balance bucket. A negative
	// amount debits; buckets are never taken below zero.
	Adjust(ctx context.Context, userID uuid.UUID, bucket entities.Bucket, amount decimal.Decimal) (*entities.Account, error)
}

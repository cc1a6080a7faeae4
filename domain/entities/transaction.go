package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes deposits from withdrawals
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
)

// TransactionStatus is the lifecycle state of a journal entry
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Currency values accepted for deposits and withdrawals
const (
	CurrencyBTC  = "BTC"
	CurrencyETH  = "ETH"
	CurrencyUSDT = "USDT"
)

// Transaction is an immutable intent record with a mutable status.
// Amounts are USD denominated; currency and wallet address describe the
// on-chain leg handled by the payout dispatcher.
type Transaction struct {
	ID            uuid.UUID         `db:"id"`
	UserID        uuid.UUID         `db:"user_id"`
	Kind          TransactionKind   `db:"kind"`
	Amount        decimal.Decimal   `db:"amount"`
	Currency      string            `db:"currency"`
	WalletAddress string            `db:"wallet_address"`
	Status        TransactionStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

// IsPending reports whether the transaction still awaits an admin decision.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// CanApprove reports whether an approve transition is permitted.
func (t *Transaction) CanApprove() bool {
	return t.Status == TransactionStatusPending
}

// CanReject reports whether a reject transition is permitted.
func (t *Transaction) CanReject() bool {
	return t.Status == TransactionStatusPending
}

// CanUndo reports whether an undo transition is permitted. Undo is defined
// only from approved and returns the entry to pending; nothing leaves rejected.
func (t *Transaction) CanUndo() bool {
	return t.Status == TransactionStatusApproved
}

// IsValidCurrency reports whether c is a supported deposit/withdrawal currency.
func IsValidCurrency(c string) bool {
	return c == CurrencyBTC || c == CurrencyETH || c == CurrencyUSDT
}

package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies the kind of domain event
type EventType string

const (
	EventTypeDepositConfirmed   EventType = "deposit_confirmed"
	EventTypeWithdrawalApproved EventType = "withdrawal_approved"
	EventTypeWithdrawalRejected EventType = "withdrawal_rejected"
	EventTypeApprovalUndone     EventType = "approval_undone"
	EventTypeYieldAccrued       EventType = "yield_accrued"
	EventTypePoolCredited       EventType = "pool_credited"
	EventTypeMilestoneReached   EventType = "milestone_reached"
	EventTypeCycleRenewed       EventType = "cycle_renewed"
	EventTypeAccountClosed      EventType = "account_closed"
	EventTypeReferralRegistered EventType = "referral_registered"
	EventTypeBalanceAdjusted    EventType = "balance_adjusted"
)

// Event is the interface all domain events implement
type Event interface {
	Type() EventType
}

// DepositConfirmedEvent is published when an admin approves a deposit and the
// amount is credited to the invest balance.
type DepositConfirmedEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

func (e DepositConfirmedEvent) Type() EventType {
	return EventTypeDepositConfirmed
}

// WithdrawalApprovedEvent is published when an admin approves a withdrawal
// and the amount is debited from the yield balance.
type WithdrawalApprovedEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	WalletAddress string          `json:"wallet_address"`
}

func (e WithdrawalApprovedEvent) Type() EventType {
	return EventTypeWithdrawalApproved
}

// WithdrawalRejectedEvent is published when an admin rejects a pending
// withdrawal request.
type WithdrawalRejectedEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
}

func (e WithdrawalRejectedEvent) Type() EventType {
	return EventTypeWithdrawalRejected
}

// ApprovalUndoneEvent is published when an admin reverses a prior approval,
// returning the transaction to pending and compensating the balance move.
type ApprovalUndoneEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
}

func (e ApprovalUndoneEvent) Type() EventType {
	return EventTypeApprovalUndone
}

// YieldAccruedEvent is published once per account per accrual day.
type YieldAccruedEvent struct {
	UserID     uuid.UUID       `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	RateBps    int64           `json:"rate_bps"`
	Compounded bool            `json:"compounded"`
	Day        time.Time       `json:"day"`
}

func (e YieldAccruedEvent) Type() EventType {
	return EventTypeYieldAccrued
}

// PoolCreditedEvent is published when the monthly pool share lands.
type PoolCreditedEvent struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Month  time.Time       `json:"month"`
}

func (e PoolCreditedEvent) Type() EventType {
	return EventTypePoolCredited
}

// MilestoneReachedEvent is published the first accrual day an account
// qualifies for a higher loyalty tier than before.
type MilestoneReachedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Milestone string    `json:"milestone"`
}

func (e MilestoneReachedEvent) Type() EventType {
	return EventTypeMilestoneReached
}

// CycleRenewedEvent is published when a completed 100 day cycle rolls over.
type CycleRenewedEvent struct {
	UserID          uuid.UUID `json:"user_id"`
	CyclesCompleted int       `json:"cycles_completed"`
}

func (e CycleRenewedEvent) Type() EventType {
	return EventTypeCycleRenewed
}

// AccountClosedEvent is published when a completed cycle ends without renewal
// and the principal is queued for payout.
type AccountClosedEvent struct {
	UserID    uuid.UUID       `json:"user_id"`
	Principal decimal.Decimal `json:"principal"`
}

func (e AccountClosedEvent) Type() EventType {
	return EventTypeAccountClosed
}

// BalanceAdjustedEvent is published when an admin manually corrects one
// balance bucket. It is the audit record of the adjustment.
type BalanceAdjustedEvent struct {
	UserID     uuid.UUID       `json:"user_id"`
	Bucket     string          `json:"bucket"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (e BalanceAdjustedEvent) Type() EventType {
	return EventTypeBalanceAdjusted
}

// ReferralRegisteredEvent is published when a new referral edge is recorded.
type ReferralRegisteredEvent struct {
	ChildUserID  uuid.UUID `json:"child_user_id"`
	ParentUserID uuid.UUID `json:"parent_user_id"`
}

func (e ReferralRegisteredEvent) Type() EventType {
	return EventTypeReferralRegistered
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CycleLength is the number of days in one earning cycle.
const CycleLength = 100

// Bucket identifies one of the three balance buckets of an account
type Bucket string

const (
	BucketInvest Bucket = "invest_balance"
	BucketYield  Bucket = "withdrawable_yield"
	BucketPool   Bucket = "pool_balance"
)

// Account holds one user's ledger state. It is mutated only through the
// defined service operations, always inside a unit of work holding the row lock.
type Account struct {
	UserID            uuid.UUID       `db:"user_id"`
	InvestBalance     decimal.Decimal `db:"invest_balance"`
	WithdrawableYield decimal.Decimal `db:"withdrawable_yield"`
	PoolBalance       decimal.Decimal `db:"pool_balance"`
	TotalEarned       decimal.Decimal `db:"total_earned"`
	CycleDay          int             `db:"cycle_day"`
	CycleStartedAt    time.Time       `db:"cycle_started_at"`
	CyclesCompleted   int             `db:"cycles_completed"`
	AutoCompoundOwn   bool            `db:"auto_compound_own"`
	AutoCompoundRef   bool            `db:"auto_compound_ref"`
	AutoCycleRenew    bool            `db:"auto_cycle_renew"`
	Closed            bool            `db:"closed"`
	LastAccrualOn     *time.Time      `db:"last_accrual_on"`
	LastPoolCreditOn  *time.Time      `db:"last_pool_credit_on"`
	LastWithdrawAt    *time.Time      `db:"last_withdraw_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// NewAccount creates an account with zero balances and a cycle starting today.
func NewAccount(userID uuid.UUID, today time.Time) *Account {
	return &Account{
		UserID:            userID,
		InvestBalance:     decimal.Zero,
		WithdrawableYield: decimal.Zero,
		PoolBalance:       decimal.Zero,
		TotalEarned:       decimal.Zero,
		CycleStartedAt:    today,
		AutoCycleRenew:    true,
	}
}

// Credit applies amount to the given bucket. A negative amount debits.
// The bucket is never allowed below zero.
func (a *Account) Credit(bucket Bucket, amount decimal.Decimal) error {
	target := a.bucketRef(bucket)
	next := target.Add(amount)
	if next.IsNegative() {
		return ErrInsufficientFunds
	}
	*target = next
	return nil
}

// Balance returns the current value of the given bucket.
func (a *Account) Balance(bucket Bucket) decimal.Decimal {
	return *a.bucketRef(bucket)
}

func (a *Account) bucketRef(bucket Bucket) *decimal.Decimal {
	switch bucket {
	case BucketInvest:
		return &a.InvestBalance
	case BucketYield:
		return &a.WithdrawableYield
	case BucketPool:
		return &a.PoolBalance
	default:
		panic("unknown balance bucket: " + string(bucket))
	}
}

// RecordEarnings increases the monotonic lifetime earnings counter.
func (a *Account) RecordEarnings(amount decimal.Decimal) {
	a.TotalEarned = a.TotalEarned.Add(amount)
}

// IsActive reports whether the account can still accrue yield.
func (a *Account) IsActive() bool {
	return !a.Closed
}

// PoolUnlocked reports whether the pool balance is usable. The pool opens
// with the second cycle.
func (a *Account) PoolUnlocked() bool {
	return a.CyclesCompleted >= 1
}

// AccruedOn reports whether yield was already credited for the given day,
// so a re-run of the accrual job cannot double-credit.
func (a *Account) AccruedOn(day time.Time) bool {
	return a.LastAccrualOn != nil && sameDate(*a.LastAccrualOn, day)
}

// PoolCreditedInMonth reports whether the monthly pool share was already
// credited in the month of the given day.
func (a *Account) PoolCreditedInMonth(day time.Time) bool {
	if a.LastPoolCreditOn == nil {
		return false
	}
	y1, m1, _ := a.LastPoolCreditOn.UTC().Date()
	y2, m2, _ := day.UTC().Date()
	return y1 == y2 && m1 == m2
}

// CycleDayFor computes the cycle day the account should be at on the given
// date, capped at CycleLength. Advancing to the computed value is idempotent.
func (a *Account) CycleDayFor(today time.Time) int {
	days := daysBetween(a.CycleStartedAt, today)
	if days < 0 {
		return a.CycleDay
	}
	if days > CycleLength {
		return CycleLength
	}
	return days
}

// RenewCycle resets the cycle for another run.
func (a *Account) RenewCycle(today time.Time) {
	a.CycleDay = 0
	a.CycleStartedAt = today
	a.CyclesCompleted++
}

// Close zeroes the invested principal and marks the account closed. This is
// the only operation permitted to zero invest_balance outright. Returns the
// principal to be paid out.
func (a *Account) Close() decimal.Decimal {
	principal := a.InvestBalance
	a.InvestBalance = decimal.Zero
	a.Closed = true
	return principal
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.UTC().Date()
	y2, m2, d2 := b.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func daysBetween(from, to time.Time) int {
	f := from.UTC().Truncate(24 * time.Hour)
	t := to.UTC().Truncate(24 * time.Hour)
	return int(t.Sub(f).Hours() / 24)
}

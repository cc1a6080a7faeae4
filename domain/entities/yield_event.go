package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// YieldSubkind classifies an earnings credit
type YieldSubkind string

const (
	// YieldSubkindInvest is daily yield on the user's own invested capital
	YieldSubkindInvest YieldSubkind = "invest"
	// YieldSubkindReferral is upline commission on a downline's invest yield
	YieldSubkindReferral YieldSubkind = "referral"
	// YieldSubkindPool is the monthly system-wide pool share
	YieldSubkindPool YieldSubkind = "pool"
)

// YieldEvent is an append-only earnings record. Events are never mutated or
// deleted; they feed the audit history and the referral earnings sum.
type YieldEvent struct {
	ID           int64           `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	Subkind      YieldSubkind    `db:"subkind"`
	Amount       decimal.Decimal `db:"amount"`
	SourceUserID *uuid.UUID      `db:"source_user_id"`
	OccurredAt   time.Time       `db:"occurred_at"`
}

// IsCommission reports whether the event was earned from a downline's yield.
func (e *YieldEvent) IsCommission() bool {
	return e.Subkind == YieldSubkindReferral
}

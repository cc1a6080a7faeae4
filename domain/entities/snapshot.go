package entities

import "github.com/shopspring/decimal"

// AccountSnapshot is the read model served to the dashboard: the account row
// enriched with referral tree sizes, earnings splits, and rate standing.
type AccountSnapshot struct {
	Account          *Account        `json:"account"`
	Referrals        ReferralCounts  `json:"referrals"`
	ReferralEarnings decimal.Decimal `json:"referral_earnings"`
	PoolEarnings     decimal.Decimal `json:"pool_earnings"`
	SystemPoolPaid   decimal.Decimal `json:"system_pool_paid"`
	DailyRateBps     int64           `json:"daily_rate_bps"`
	Milestone        *Milestone      `json:"milestone,omitempty"`
	NextMilestone    *Milestone      `json:"next_milestone,omitempty"`
	PendingDeposits  int             `json:"pending_deposits"`
	PendingWithdraws int             `json:"pending_withdrawals"`
}

package entities

import "github.com/shopspring/decimal"

// AccountFlags are the user-settable account preferences.
type AccountFlags struct {
	AutoCompoundOwn *bool `json:"auto_compound_own,omitempty"`
	AutoCompoundRef *bool `json:"auto_compound_ref,omitempty"`
	AutoCycleRenew  *bool `json:"auto_cycle_renew,omitempty"`
}

// AccrualResult describes what one account earned in a single accrual pass.
type AccrualResult struct {
	Accrued          bool
	RateBps          int64
	Yield            decimal.Decimal
	Commission       decimal.Decimal
	Pool             decimal.Decimal
	MilestoneReached string
}

// CycleOutcome describes the effect of a cycle tick on one account.
type CycleOutcome struct {
	CycleDay  int
	Renewed   bool
	Closed    bool
	Principal decimal.Decimal
}

// AccrualReport summarizes one run of the daily accrual job.
type AccrualReport struct {
	Day             string          `json:"day"`
	AccountsVisited int             `json:"accounts_visited"`
	AccountsAccrued int             `json:"accounts_accrued"`
	AccountsSkipped int             `json:"accounts_skipped"`
	TotalYield      decimal.Decimal `json:"total_yield"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalPool       decimal.Decimal `json:"total_pool"`
	Failures        int             `json:"failures"`
}

// CycleReport summarizes one run of the cycle tick job.
type CycleReport struct {
	Day             string `json:"day"`
	AccountsVisited int    `json:"accounts_visited"`
	CyclesRenewed   int    `json:"cycles_renewed"`
	AccountsClosed  int    `json:"accounts_closed"`
	Failures        int    `json:"failures"`
}

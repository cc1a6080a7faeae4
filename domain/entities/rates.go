package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Milestone is a loyalty tier reached by holding invested capital and
// recruiting direct referrals. Both thresholds must be met simultaneously.
type Milestone struct {
	Name           string
	MinInvested    decimal.Decimal
	MinReferrals   int
	DailyBonusBps  int64
	MonthlyRewards decimal.Decimal
}

// Milestones lists the loyalty tiers in ascending order. MilestoneFor walks
// it from the top, so the slice order is load-bearing.
var Milestones = []Milestone{
	{Name: "Bronze", MinInvested: decimal.NewFromInt(500), MinReferrals: 5, DailyBonusBps: 5, MonthlyRewards: decimal.NewFromInt(50)},
	{Name: "Silver", MinInvested: decimal.NewFromInt(2500), MinReferrals: 15, DailyBonusBps: 10, MonthlyRewards: decimal.NewFromInt(250)},
	{Name: "Gold", MinInvested: decimal.NewFromInt(7000), MinReferrals: 25, DailyBonusBps: 15, MonthlyRewards: decimal.NewFromInt(700)},
	{Name: "Platinum", MinInvested: decimal.NewFromInt(20000), MinReferrals: 50, DailyBonusBps: 20, MonthlyRewards: decimal.NewFromInt(2000)},
	{Name: "Diamond", MinInvested: decimal.NewFromInt(50000), MinReferrals: 80, DailyBonusBps: 25, MonthlyRewards: decimal.NewFromInt(5000)},
	{Name: "Elite", MinInvested: decimal.NewFromInt(100000), MinReferrals: 120, DailyBonusBps: 30, MonthlyRewards: decimal.NewFromInt(10000)},
}

// BaseRateBps returns the daily base yield rate in basis points for the given
// invested principal. Below $100 nothing accrues.
func BaseRateBps(invested decimal.Decimal) int64 {
	switch {
	case invested.GreaterThanOrEqual(decimal.NewFromInt(100000)):
		return 50
	case invested.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		return 40
	case invested.GreaterThanOrEqual(decimal.NewFromInt(5000)):
		return 35
	case invested.GreaterThanOrEqual(decimal.NewFromInt(2500)):
		return 30
	case invested.GreaterThanOrEqual(decimal.NewFromInt(500)):
		return 25
	case invested.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return 20
	default:
		return 0
	}
}

// MilestoneFor returns the highest milestone satisfied by the invested
// principal and direct (level 1) referral count, or nil when none is.
func MilestoneFor(invested decimal.Decimal, directReferrals int) *Milestone {
	for i := len(Milestones) - 1; i >= 0; i-- {
		m := Milestones[i]
		if invested.GreaterThanOrEqual(m.MinInvested) && directReferrals >= m.MinReferrals {
			return &m
		}
	}
	return nil
}

// NextMilestone returns the first milestone not yet reached, or nil when the
// top tier is held.
func NextMilestone(invested decimal.Decimal, directReferrals int) *Milestone {
	for _, m := range Milestones {
		if invested.LessThan(m.MinInvested) || directReferrals < m.MinReferrals {
			next := m
			return &next
		}
	}
	return nil
}

// DailyRateBps returns the combined daily rate (base plus milestone bonus)
// in basis points.
func DailyRateBps(invested decimal.Decimal, directReferrals int) int64 {
	base := BaseRateBps(invested)
	if base == 0 {
		return 0
	}
	if m := MilestoneFor(invested, directReferrals); m != nil {
		return base + m.DailyBonusBps
	}
	return base
}

// ApplyBps computes amount * bps expressed in basis points, rounded to cents.
func ApplyBps(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.New(bps, -4)).Round(2)
}

// IsAccrualDay reports whether yield accrues on the given date. Accrual runs
// Monday through Thursday.
func IsAccrualDay(day time.Time) bool {
	switch day.UTC().Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return true
	default:
		return false
	}
}

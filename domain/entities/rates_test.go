package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRateBps(t *testing.T) {
	tests := []struct {
		name     string
		invested int64
		want     int64
	}{
		{"below floor", 99, 0},
		{"at floor", 100, 20},
		{"mid tier", 499, 20},
		{"at 500", 500, 25},
		{"at 2500", 2500, 30},
		{"at 5000", 5000, 35},
		{"just below 50k", 49999, 35},
		{"at 50k", 50000, 40},
		{"at 100k", 100000, 50},
		{"above top", 250000, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseRateBps(decimal.NewFromInt(tt.invested))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMilestoneFor(t *testing.T) {
	t.Run("requires both thresholds", func(t *testing.T) {
		// Enough capital for Silver but only Bronze-level referrals
		m := MilestoneFor(decimal.NewFromInt(3000), 5)
		require.NotNil(t, m)
		assert.Equal(t, "Bronze", m.Name)
	})

	t.Run("none when referrals missing", func(t *testing.T) {
		m := MilestoneFor(decimal.NewFromInt(3000), 3)
		assert.Nil(t, m)
	})

	t.Run("top tier", func(t *testing.T) {
		m := MilestoneFor(decimal.NewFromInt(150000), 200)
		require.NotNil(t, m)
		assert.Equal(t, "Elite", m.Name)
	})
}

func TestNextMilestone(t *testing.T) {
	next := NextMilestone(decimal.NewFromInt(3000), 5)
	require.NotNil(t, next)
	assert.Equal(t, "Silver", next.Name)

	assert.Nil(t, NextMilestone(decimal.NewFromInt(150000), 200))
}

func TestDailyRateBps(t *testing.T) {
	// Same capital, different direct referral counts: the bonus only applies
	// once the referral threshold is met
	assert.Equal(t, int64(30), DailyRateBps(decimal.NewFromInt(3000), 3))
	assert.Equal(t, int64(35), DailyRateBps(decimal.NewFromInt(3000), 6))

	// No base rate means no bonus either
	assert.Equal(t, int64(0), DailyRateBps(decimal.NewFromInt(50), 10))
}

func TestApplyBps(t *testing.T) {
	// 3000 * 30bps = 9.00
	got := ApplyBps(decimal.NewFromInt(3000), 30)
	assert.True(t, got.Equal(decimal.RequireFromString("9.00")), "got %s", got)

	// 333.33 * 25bps = 0.8333... rounds to 0.83
	got = ApplyBps(decimal.RequireFromString("333.33"), 25)
	assert.True(t, got.Equal(decimal.RequireFromString("0.83")), "got %s", got)
}

func TestIsAccrualDay(t *testing.T) {
	// 2026-08-24 is a Monday
	monday := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsAccrualDay(monday))
	assert.True(t, IsAccrualDay(monday.AddDate(0, 0, 3)))  // Thursday
	assert.False(t, IsAccrualDay(monday.AddDate(0, 0, 4))) // Friday
	assert.False(t, IsAccrualDay(monday.AddDate(0, 0, 6))) // Sunday
}

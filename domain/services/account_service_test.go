package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/testhelpers"
)

type accountFixture struct {
	accountRepo *testhelpers.MockAccountRepository
	txnRepo     *testhelpers.MockTransactionRepository
	yieldRepo   *testhelpers.MockYieldEventRepository
	refRepo     *testhelpers.MockReferralRepository
	publisher   *testhelpers.MockEventPublisher
	service     *accountService
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	f := &accountFixture{
		accountRepo: new(testhelpers.MockAccountRepository),
		txnRepo:     new(testhelpers.MockTransactionRepository),
		yieldRepo:   new(testhelpers.MockYieldEventRepository),
		refRepo:     new(testhelpers.MockReferralRepository),
		publisher:   new(testhelpers.MockEventPublisher),
	}
	f.service = NewAccountService(f.accountRepo, f.txnRepo, f.yieldRepo, f.refRepo, f.publisher).(*accountService)
	f.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return f
}

func TestRegisterCreatesZeroBalanceAccount(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	f.accountRepo.On("GetByUserID", ctx, userID).Return(nil, entities.ErrAccountNotFound)
	f.accountRepo.On("Create", ctx, mock.MatchedBy(func(a *entities.Account) bool {
		return a.UserID == userID && a.InvestBalance.IsZero() && a.AutoCycleRenew
	})).Return(nil)

	account, err := f.service.Register(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, account.UserID)
	assert.True(t, account.WithdrawableYield.IsZero())
}

func TestRegisterReturnsExistingAccount(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	existing := entities.NewAccount(userID, time.Now().UTC())
	existing.InvestBalance = decimal.NewFromInt(500)
	f.accountRepo.On("GetByUserID", ctx, userID).Return(existing, nil)

	account, err := f.service.Register(ctx, userID)
	require.NoError(t, err)
	assert.Same(t, existing, account)
	f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdjustCreditsAndDebits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	account.InvestBalance = decimal.NewFromInt(100)
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
	f.accountRepo.On("Update", ctx, account).Return(nil)

	adjusted, err := f.service.Adjust(ctx, userID, entities.BucketInvest, decimal.NewFromInt(-40))
	require.NoError(t, err)
	assert.True(t, adjusted.InvestBalance.Equal(decimal.NewFromInt(60)))
	assert.True(t, f.publisher.HasEvent(events.EventTypeBalanceAdjusted))

	_, err = f.service.Adjust(ctx, userID, entities.BucketYield, decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.True(t, account.WithdrawableYield.Equal(decimal.NewFromInt(25)))
}

func TestAdjustNeverTakesBucketBelowZero(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	account.InvestBalance = decimal.NewFromInt(10)
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)

	_, err := f.service.Adjust(ctx, userID, entities.BucketInvest, decimal.NewFromInt(-40))
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	f.accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdjustRejectsUnknownBucket(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	_, err := f.service.Adjust(ctx, uuid.New(), entities.Bucket("total_earned"), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = f.service.Adjust(ctx, uuid.New(), entities.BucketInvest, decimal.Zero)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	account.InvestBalance = decimal.NewFromInt(3000)

	f.accountRepo.On("GetByUserID", ctx, userID).Return(account, nil)
	f.refRepo.On("CountDownline", ctx, userID).Return(entities.ReferralCounts{Level1: 6, Level2: 2}, nil)
	f.yieldRepo.On("SumByUserAndSubkind", ctx, userID, entities.YieldSubkindReferral).Return(decimal.NewFromInt(42), nil)
	f.yieldRepo.On("SumByUserAndSubkind", ctx, userID, entities.YieldSubkindPool).Return(decimal.NewFromInt(7), nil)
	f.yieldRepo.On("SumBySubkindSince", ctx, entities.YieldSubkindPool, account.CreatedAt).Return(decimal.NewFromInt(120), nil)
	f.txnRepo.On("CountPendingByUser", ctx, userID).Return(1, 2, nil)

	snapshot, err := f.service.Snapshot(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 6, snapshot.Referrals.Level1)
	assert.True(t, snapshot.ReferralEarnings.Equal(decimal.NewFromInt(42)))
	assert.True(t, snapshot.PoolEarnings.Equal(decimal.NewFromInt(7)))
	assert.True(t, snapshot.SystemPoolPaid.Equal(decimal.NewFromInt(120)))
	// 3000 invested with 6 direct referrals: 30 base + 5 Bronze bonus
	assert.Equal(t, int64(35), snapshot.DailyRateBps)
	require.NotNil(t, snapshot.Milestone)
	assert.Equal(t, "Bronze", snapshot.Milestone.Name)
	require.NotNil(t, snapshot.NextMilestone)
	assert.Equal(t, "Silver", snapshot.NextMilestone.Name)
	assert.Equal(t, 1, snapshot.PendingDeposits)
	assert.Equal(t, 2, snapshot.PendingWithdraws)
}

func TestSetFlags(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
	f.accountRepo.On("Update", ctx, account).Return(nil)

	on := true
	off := false
	updated, err := f.service.SetFlags(ctx, userID, entities.AccountFlags{
		AutoCompoundOwn: &on,
		AutoCycleRenew:  &off,
	})
	require.NoError(t, err)

	assert.True(t, updated.AutoCompoundOwn)
	assert.False(t, updated.AutoCycleRenew)
	// Unset fields are left alone
	assert.False(t, updated.AutoCompoundRef)
}

func TestReinvest(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(100)))
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
	f.accountRepo.On("Update", ctx, account).Return(nil)

	require.NoError(t, f.service.Reinvest(ctx, userID, decimal.NewFromInt(60)))

	assert.True(t, account.WithdrawableYield.Equal(decimal.NewFromInt(40)))
	assert.True(t, account.InvestBalance.Equal(decimal.NewFromInt(60)))
}

func TestReinvestInsufficient(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(10)))
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)

	err := f.service.Reinvest(ctx, userID, decimal.NewFromInt(60))
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	f.accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPoolMovesRequireUnlock(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	require.NoError(t, account.Credit(entities.BucketPool, decimal.NewFromInt(30)))
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)

	err := f.service.PoolWithdraw(ctx, userID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, entities.ErrPoolLocked)

	err = f.service.PoolReinvest(ctx, userID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, entities.ErrPoolLocked)
}

func TestPoolWithdrawAfterSecondCycle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newAccountFixture(t)

	account := entities.NewAccount(userID, time.Now().UTC())
	account.CyclesCompleted = 1
	require.NoError(t, account.Credit(entities.BucketPool, decimal.NewFromInt(30)))
	f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
	f.accountRepo.On("Update", ctx, account).Return(nil)

	require.NoError(t, f.service.PoolWithdraw(ctx, userID, decimal.NewFromInt(10)))
	assert.True(t, account.PoolBalance.Equal(decimal.NewFromInt(20)))
	assert.True(t, account.WithdrawableYield.Equal(decimal.NewFromInt(10)))
}

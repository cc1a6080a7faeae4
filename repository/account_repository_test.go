package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/repository/testutil"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, uuid.New())
		assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		userID := uuid.New()
		account := testutil.CreateTestAccountWithBalance(userID, decimal.RequireFromString("2500.50"))
		account.AutoCompoundOwn = true

		err := repo.Create(ctx, account)
		require.NoError(t, err)
		assert.False(t, account.CreatedAt.IsZero())

		loaded, err := repo.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, loaded.InvestBalance.Equal(decimal.RequireFromString("2500.50")))
		assert.True(t, loaded.AutoCompoundOwn)
		assert.True(t, loaded.AutoCycleRenew)
		assert.Equal(t, 0, loaded.CycleDay)
		assert.Nil(t, loaded.LastAccrualOn)
	})
}

func TestAccountRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	userID := uuid.New()

	account := testutil.CreateTestAccount(userID)
	require.NoError(t, repo.Create(ctx, account))

	accrualDay := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	account.CycleDay = 42
	account.LastAccrualOn = &accrualDay
	require.NoError(t, account.Credit(entities.BucketYield, decimal.RequireFromString("9.00")))
	account.RecordEarnings(decimal.RequireFromString("9.00"))

	require.NoError(t, repo.Update(ctx, account))

	loaded, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.CycleDay)
	assert.True(t, loaded.WithdrawableYield.Equal(decimal.RequireFromString("9.00")))
	assert.True(t, loaded.TotalEarned.Equal(decimal.RequireFromString("9.00")))
	require.NotNil(t, loaded.LastAccrualOn)
	assert.True(t, loaded.AccruedOn(accrualDay))

	t.Run("vanished row", func(t *testing.T) {
		ghost := testutil.CreateTestAccount(uuid.New())
		err := repo.Update(ctx, ghost)
		assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	})
}

func TestAccountRepository_GetActiveUserIDs(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	open1 := testutil.CreateTestAccount(uuid.New())
	open2 := testutil.CreateTestAccount(uuid.New())
	closed := testutil.CreateTestAccount(uuid.New())
	closed.Close()

	require.NoError(t, repo.Create(ctx, open1))
	require.NoError(t, repo.Create(ctx, open2))
	require.NoError(t, repo.Create(ctx, closed))

	ids, err := repo.GetActiveUserIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, open1.UserID)
	assert.Contains(t, ids, open2.UserID)
	assert.NotContains(t, ids, closed.UserID)
}

func TestAccountRepository_SumInvestBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty ledger sums to zero", func(t *testing.T) {
		total, err := repo.SumInvestBalance(ctx)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("closed principal is excluded", func(t *testing.T) {
		a := testutil.CreateTestAccountWithBalance(uuid.New(), decimal.NewFromInt(1000))
		b := testutil.CreateTestAccountWithBalance(uuid.New(), decimal.NewFromInt(2500))
		c := testutil.CreateTestAccountWithBalance(uuid.New(), decimal.NewFromInt(400))
		c.Closed = true
		c.InvestBalance = decimal.Zero

		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))
		require.NoError(t, repo.Create(ctx, c))

		total, err := repo.SumInvestBalance(ctx)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(3500)))
	})
}

func TestAccountRepository_RowLockSerializesWriters(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestAccount(userID)))

	// Two transactions credit the same account concurrently. The row lock
	// forces them to run one after the other, so neither credit is lost.
	credit := func() error {
		return testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			repo := newAccountRepository(tx)
			account, err := repo.GetByUserIDForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			if err := account.Credit(entities.BucketYield, decimal.NewFromInt(10)); err != nil {
				return err
			}
			return repo.Update(ctx, account)
		})
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- credit() }()
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}

	loaded, err := NewAccountRepository(testDB.DB).GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, loaded.WithdrawableYield.Equal(decimal.NewFromInt(20)))
}

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/repository/testutil"
)

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing entry", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, entities.ErrTransactionNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		txn := testutil.CreateTestWithdrawal(uuid.New(), decimal.RequireFromString("150.00"))
		require.NoError(t, repo.Create(ctx, txn))
		assert.NotEqual(t, uuid.Nil, txn.ID)

		loaded, err := repo.GetByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionKindWithdrawal, loaded.Kind)
		assert.True(t, loaded.Amount.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, "bc1qtestwallet", loaded.WalletAddress)
		assert.True(t, loaded.IsPending())
	})
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("pending to approved", func(t *testing.T) {
		txn := testutil.CreateTestDeposit(uuid.New(), decimal.NewFromInt(500))
		require.NoError(t, repo.Create(ctx, txn))

		err := repo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved)
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusApproved, loaded.Status)
	})

	t.Run("stale expected status", func(t *testing.T) {
		txn := testutil.CreateTestDeposit(uuid.New(), decimal.NewFromInt(500))
		require.NoError(t, repo.Create(ctx, txn))
		require.NoError(t, repo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusRejected))

		err := repo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved)
		assert.ErrorIs(t, err, entities.ErrAlreadyProcessed)

		loaded, err := repo.GetByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusRejected, loaded.Status)
	})
}

func TestTransactionRepository_ConcurrentApproval(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	txn := testutil.CreateTestWithdrawal(uuid.New(), decimal.NewFromInt(200))
	require.NoError(t, repo.Create(ctx, txn))

	// Two admins race to approve the same entry. Exactly one transition
	// succeeds; the loser observes ErrAlreadyProcessed.
	const racers = 2
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func() {
			errs <- repo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved)
		}()
	}

	var wins, losses int
	for i := 0; i < racers; i++ {
		switch err := <-errs; {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, entities.ErrAlreadyProcessed)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestTransactionRepository_Listing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()
	userID := uuid.New()

	first := testutil.CreateTestDeposit(userID, decimal.NewFromInt(100))
	second := testutil.CreateTestWithdrawal(userID, decimal.NewFromInt(40))
	other := testutil.CreateTestDeposit(uuid.New(), decimal.NewFromInt(75))

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.UpdateStatus(ctx, first.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved))

	t.Run("by user newest first", func(t *testing.T) {
		txns, err := repo.ListByUser(ctx, userID, 50)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, second.ID, txns[0].ID)
		assert.Equal(t, first.ID, txns[1].ID)
	})

	t.Run("pending queue oldest first", func(t *testing.T) {
		txns, err := repo.ListByStatus(ctx, entities.TransactionStatusPending, 50)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, second.ID, txns[0].ID)
		assert.Equal(t, other.ID, txns[1].ID)
	})

	t.Run("pending counts per kind", func(t *testing.T) {
		deposits, withdrawals, err := repo.CountPendingByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, deposits)
		assert.Equal(t, 1, withdrawals)
	})
}

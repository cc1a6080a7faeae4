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

	"fortune/ledger-service/config"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/testhelpers"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	m.Run()
}

type ledgerFixture struct {
	accountRepo *testhelpers.MockAccountRepository
	txnRepo     *testhelpers.MockTransactionRepository
	publisher   *testhelpers.MockEventPublisher
	service     *ledgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		accountRepo: new(testhelpers.MockAccountRepository),
		txnRepo:     new(testhelpers.MockTransactionRepository),
		publisher:   new(testhelpers.MockEventPublisher),
	}
	f.service = NewLedgerService(f.accountRepo, f.txnRepo, f.publisher).(*ledgerService)
	f.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return f
}

func TestRequestDeposit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.RequestDeposit(ctx, userID, decimal.Zero, entities.CurrencyBTC)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("rejects amount below minimum", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.RequestDeposit(ctx, userID, decimal.NewFromInt(30), entities.CurrencyBTC)
		assert.ErrorIs(t, err, entities.ErrBelowMinimum)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.RequestDeposit(ctx, userID, decimal.NewFromInt(100), "DOGE")
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("creates pending entry at the minimum", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.txnRepo.On("Create", ctx, mock.AnythingOfType("*entities.Transaction")).Return(nil)

		txn, err := f.service.RequestDeposit(ctx, userID, decimal.NewFromInt(50), entities.CurrencyUSDT)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusPending, txn.Status)
		assert.Equal(t, entities.TransactionKindDeposit, txn.Kind)
		f.txnRepo.AssertExpectations(t)
	})
}

func TestRequestWithdrawal(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("rejects request above withdrawable yield", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(100)))
		f.accountRepo.On("GetByUserID", ctx, userID).Return(account, nil)

		_, err := f.service.RequestWithdrawal(ctx, userID, decimal.NewFromInt(150), entities.CurrencyBTC, "bc1qaddr")
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	})

	t.Run("rejects missing wallet address", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.RequestWithdrawal(ctx, userID, decimal.NewFromInt(10), entities.CurrencyBTC, "")
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("creates pending entry", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(100)))
		f.accountRepo.On("GetByUserID", ctx, userID).Return(account, nil)
		f.txnRepo.On("Create", ctx, mock.AnythingOfType("*entities.Transaction")).Return(nil)

		txn, err := f.service.RequestWithdrawal(ctx, userID, decimal.NewFromInt(80), entities.CurrencyETH, "0xabc")
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionKindWithdrawal, txn.Kind)
		assert.Equal(t, entities.TransactionStatusPending, txn.Status)
	})
}

func TestApproveDeposit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates account on first approved deposit", func(t *testing.T) {
		f := newLedgerFixture(t)
		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindDeposit,
			Amount: decimal.NewFromInt(500),
			Status: entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(nil, entities.ErrAccountNotFound)
		f.accountRepo.On("Create", ctx, mock.AnythingOfType("*entities.Account")).Return(nil)
		f.accountRepo.On("Update", ctx, mock.MatchedBy(func(a *entities.Account) bool {
			return a.InvestBalance.Equal(decimal.NewFromInt(500))
		})).Return(nil)

		approved, err := f.service.Approve(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusApproved, approved.Status)
		assert.True(t, f.publisher.HasEvent(events.EventTypeDepositConfirmed))
		f.accountRepo.AssertExpectations(t)
	})

	t.Run("credits existing account", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketInvest, decimal.NewFromInt(200)))

		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindDeposit,
			Amount: decimal.NewFromInt(300),
			Status: entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
		f.accountRepo.On("Update", ctx, account).Return(nil)

		_, err := f.service.Approve(ctx, txn.ID)
		require.NoError(t, err)
		assert.True(t, account.InvestBalance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("refuses non-pending entry", func(t *testing.T) {
		f := newLedgerFixture(t)
		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindDeposit,
			Amount: decimal.NewFromInt(300),
			Status: entities.TransactionStatusApproved,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)

		_, err := f.service.Approve(ctx, txn.ID)
		assert.ErrorIs(t, err, entities.ErrAlreadyProcessed)
		f.txnRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestApproveWithdrawal(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("debits yield and stamps withdraw time", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(200)))

		txn := &entities.Transaction{
			ID:       uuid.New(),
			UserID:   userID,
			Kind:     entities.TransactionKindWithdrawal,
			Amount:   decimal.NewFromInt(150),
			Currency: entities.CurrencyBTC,
			Status:   entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
		f.accountRepo.On("Update", ctx, account).Return(nil)

		_, err := f.service.Approve(ctx, txn.ID)
		require.NoError(t, err)
		assert.True(t, account.WithdrawableYield.Equal(decimal.NewFromInt(50)))
		assert.NotNil(t, account.LastWithdrawAt)
		assert.True(t, f.publisher.HasEvent(events.EventTypeWithdrawalApproved))
	})

	t.Run("fails when funds are insufficient at approval", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(150)))

		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindWithdrawal,
			Amount: decimal.NewFromInt(200),
			Status: entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)

		_, err := f.service.Approve(ctx, txn.ID)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		f.accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("propagates losing the status race", func(t *testing.T) {
		f := newLedgerFixture(t)
		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindWithdrawal,
			Amount: decimal.NewFromInt(10),
			Status: entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved).
			Return(entities.ErrAlreadyProcessed)

		_, err := f.service.Approve(ctx, txn.ID)
		assert.ErrorIs(t, err, entities.ErrAlreadyProcessed)
	})
}

func TestRejectLeavesBalancesAlone(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	txn := &entities.Transaction{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   entities.TransactionKindWithdrawal,
		Amount: decimal.NewFromInt(75),
		Status: entities.TransactionStatusPending,
	}
	f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
	f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusRejected).Return(nil)

	rejected, err := f.service.Reject(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusRejected, rejected.Status)
	assert.True(t, f.publisher.HasEvent(events.EventTypeWithdrawalRejected))
	f.accountRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns withdrawal funds and reopens the entry", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketYield, decimal.NewFromInt(50)))

		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindWithdrawal,
			Amount: decimal.NewFromInt(150),
			Status: entities.TransactionStatusApproved,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusApproved, entities.TransactionStatusPending).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)
		f.accountRepo.On("Update", ctx, account).Return(nil)

		undone, err := f.service.Undo(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionStatusPending, undone.Status)
		assert.True(t, account.WithdrawableYield.Equal(decimal.NewFromInt(200)))
		assert.True(t, f.publisher.HasEvent(events.EventTypeApprovalUndone))
	})

	t.Run("fails deposit undo when principal was consumed", func(t *testing.T) {
		f := newLedgerFixture(t)
		account := entities.NewAccount(userID, time.Now().UTC())
		require.NoError(t, account.Credit(entities.BucketInvest, decimal.NewFromInt(100)))

		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindDeposit,
			Amount: decimal.NewFromInt(150),
			Status: entities.TransactionStatusApproved,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)
		f.txnRepo.On("UpdateStatus", ctx, txn.ID, entities.TransactionStatusApproved, entities.TransactionStatusPending).Return(nil)
		f.accountRepo.On("GetByUserIDForUpdate", ctx, userID).Return(account, nil)

		_, err := f.service.Undo(ctx, txn.ID)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	})

	t.Run("refuses undo of pending entry", func(t *testing.T) {
		f := newLedgerFixture(t)
		txn := &entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.TransactionKindDeposit,
			Amount: decimal.NewFromInt(150),
			Status: entities.TransactionStatusPending,
		}
		f.txnRepo.On("GetByID", ctx, txn.ID).Return(txn, nil)

		_, err := f.service.Undo(ctx, txn.ID)
		assert.ErrorIs(t, err, entities.ErrAlreadyProcessed)
	})
}

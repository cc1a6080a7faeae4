package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/services"
)

// Ledger orchestrates the deposit/withdrawal lifecycle: one unit of work per
// operation, with payout dispatch strictly after commit.
type Ledger struct {
	uowFactory UnitOfWorkFactory
	payouts    PayoutDispatcher
}

// NewLedger creates a new ledger orchestrator
func NewLedger(uowFactory UnitOfWorkFactory, payouts PayoutDispatcher) *Ledger {
	return &Ledger{
		uowFactory: uowFactory,
		payouts:    payouts,
	}
}

// RequestDeposit records a pending deposit intent
func (l *Ledger) RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string) (*entities.Transaction, error) {
	var txn *entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txn, err = svc.RequestDeposit(ctx, userID, amount, currency)
		return err
	})
	return txn, err
}

// RequestWithdrawal records a pending withdrawal intent
func (l *Ledger) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency, walletAddress string) (*entities.Transaction, error) {
	var txn *entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txn, err = svc.RequestWithdrawal(ctx, userID, amount, currency, walletAddress)
		return err
	})
	return txn, err
}

// Approve applies an admin approval and, for withdrawals, hands the payment
// to the payout dispatcher once the ledger mutation is durable
func (l *Ledger) Approve(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	var txn *entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txn, err = svc.Approve(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if txn.Kind == entities.TransactionKindWithdrawal {
		if err := l.payouts.DispatchWithdrawal(ctx, txn); err != nil {
			// The ledger already committed; the payout is retried out of band
			log.WithFields(log.Fields{
				"transactionId": txn.ID,
				"error":         err,
			}).Error("Failed to dispatch withdrawal payout")
		}
	}
	return txn, nil
}

// Reject marks a pending entry rejected
func (l *Ledger) Reject(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	var txn *entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txn, err = svc.Reject(ctx, transactionID)
		return err
	})
	return txn, err
}

// Undo reverses a prior approval
func (l *Ledger) Undo(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	var txn *entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txn, err = svc.Undo(ctx, transactionID)
		return err
	})
	return txn, err
}

// ListTransactions returns a user's journal entries, newest first
func (l *Ledger) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error) {
	var txns []*entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txns, err = svc.ListTransactions(ctx, userID, limit)
		return err
	})
	return txns, err
}

// ListPending returns the admin approval queue, oldest first
func (l *Ledger) ListPending(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	var txns []*entities.Transaction
	err := l.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
		var err error
		txns, err = svc.ListPending(ctx, limit)
		return err
	})
	return txns, err
}

func (l *Ledger) inTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	TransactionRepository() interfaces.TransactionRepository
	YieldEventRepository() interfaces.YieldEventRepository
	ReferralRepository() interfaces.ReferralRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// TransactionalEventPublisher buffers events during a transaction and
// publishes them only after the transaction commits
type TransactionalEventPublisher interface {
	interfaces.EventPublisher

	// Flush publishes all pending events after a successful commit
	Flush(ctx context.Context) error

	// Discard drops all pending events on rollback
	Discard()
}

// PayoutDispatcher hands approved outbound payments to the external payment
// processor. Called strictly after the owning unit of work has committed;
// dispatch failures are logged and retried out of band, never rolled back
// into the ledger.
type PayoutDispatcher interface {
	// DispatchWithdrawal queues the on-chain payment for an approved withdrawal
	DispatchWithdrawal(ctx context.Context, txn *entities.Transaction) error

	// DispatchClosure queues the principal payout for a closed account
	DispatchClosure(ctx context.Context, userID uuid.UUID, principal decimal.Decimal) error
}

// PriceOracle serves indicative crypto/USD conversion rates for the deposit
// and withdrawal forms
type PriceOracle interface {
	// Rates returns the USD price per supported currency
	Rates(ctx context.Context) (map[string]decimal.Decimal, error)
}

package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUserID retrieves an account by its owner's user ID
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Account, error)

	// GetByUserIDForUpdate retrieves an account and holds its row lock until
	// the unit of work commits or rolls back
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entities.Account, error)

	// Create inserts a new account row
	Create(ctx context.Context, account *entities.Account) error

	// Update persists every mutable field of the account
	Update(ctx context.Context, account *entities.Account) error

	// GetActiveUserIDs returns the owners of all open accounts
	GetActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)

	// SumInvestBalance returns the total invested principal across open accounts
	SumInvestBalance(ctx context.Context) (decimal.Decimal, error)
}

// TransactionRepository defines the interface for the journal of deposit and
// withdrawal intents
type TransactionRepository interface {
	// Create inserts a new pending journal entry
	Create(ctx context.Context, txn *entities.Transaction) error

	// GetByID retrieves a journal entry by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// UpdateStatus transitions the entry from expected to next. It returns
	// entities.ErrAlreadyProcessed when the entry is no longer in the
	// expected status, so concurrent admins cannot double-apply a decision.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next entities.TransactionStatus) error

	// ListByUser returns a user's journal entries, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error)

	// ListByStatus returns journal entries in the given status, oldest first
	ListByStatus(ctx context.Context, status entities.TransactionStatus, limit int) ([]*entities.Transaction, error)

	// CountPendingByUser returns pending entry counts per kind for a user
	CountPendingByUser(ctx context.Context, userID uuid.UUID) (deposits, withdrawals int, err error)
}

// YieldEventRepository defines the interface for the append-only earnings log
type YieldEventRepository interface {
	// Record appends an earnings event
	Record(ctx context.Context, event *entities.YieldEvent) error

	// ListByUser returns a user's earnings events, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.YieldEvent, error)

	// SumByUserAndSubkind returns the lifetime total for one earnings subkind
	SumByUserAndSubkind(ctx context.Context, userID uuid.UUID, subkind entities.YieldSubkind) (decimal.Decimal, error)

	// SumBySubkindSince returns the system-wide total for a subkind since a time
	SumBySubkindSince(ctx context.Context, subkind entities.YieldSubkind, since time.Time) (decimal.Decimal, error)
}

// ReferralRepository defines the interface for the referral tree
type ReferralRepository interface {
	// CreateEdge records who invited a new user. At most one edge per child.
	CreateEdge(ctx context.Context, edge *entities.ReferralEdge) error

	// GetParent returns the inviter of a user, or nil when the user has none
	GetParent(ctx context.Context, childUserID uuid.UUID) (*uuid.UUID, error)

	// GetUpline returns up to maxDepth ancestors, nearest first
	GetUpline(ctx context.Context, childUserID uuid.UUID, maxDepth int) ([]uuid.UUID, error)

	// CountDownline returns the downline sizes for the first three levels
	CountDownline(ctx context.Context, parentUserID uuid.UUID) (entities.ReferralCounts, error)

	// ListDirectChildren returns a user's level 1 referrals
	ListDirectChildren(ctx context.Context, parentUserID uuid.UUID) ([]uuid.UUID, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	// Publish publishes an event. Inside a unit of work the event is buffered
	// and flushed only on commit.
	Publish(event events.Event) error
}

package testhelpers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAccountRepository) SumInvestBalance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *entities.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next entities.TransactionStatus) error {
	args := m.Called(ctx, id, expected, next)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByStatus(ctx context.Context, status entities.TransactionStatus, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockYieldEventRepository is a mock implementation of YieldEventRepository
type MockYieldEventRepository struct {
	mock.Mock
}

func (m *MockYieldEventRepository) Record(ctx context.Context, event *entities.YieldEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockYieldEventRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.YieldEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.YieldEvent), args.Error(1)
}

func (m *MockYieldEventRepository) SumByUserAndSubkind(ctx context.Context, userID uuid.UUID, subkind entities.YieldSubkind) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, subkind)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockYieldEventRepository) SumBySubkindSince(ctx context.Context, subkind entities.YieldSubkind, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, subkind, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockReferralRepository is a mock implementation of ReferralRepository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) CreateEdge(ctx context.Context, edge *entities.ReferralEdge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockReferralRepository) GetParent(ctx context.Context, childUserID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, childUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockReferralRepository) GetUpline(ctx context.Context, childUserID uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	args := m.Called(ctx, childUserID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockReferralRepository) CountDownline(ctx context.Context, parentUserID uuid.UUID) (entities.ReferralCounts, error) {
	args := m.Called(ctx, parentUserID)
	return args.Get(0).(entities.ReferralCounts), args.Error(1)
}

func (m *MockReferralRepository) ListDirectChildren(ctx context.Context, parentUserID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, parentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher that records
// published events for assertions
type MockEventPublisher struct {
	mock.Mock
	Published []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	m.Published = append(m.Published, event)
	args := m.Called(event)
	return args.Error(0)
}

// HasEvent reports whether an event of the given type was published
func (m *MockEventPublisher) HasEvent(eventType events.EventType) bool {
	for _, e := range m.Published {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

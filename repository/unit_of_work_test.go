package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/repository/testutil"
)

// recordingPublisher buffers events like the real transactional publisher and
// records whether they were flushed or discarded.
type recordingPublisher struct {
	pending   []events.Event
	Flushed   []events.Event
	Discarded bool
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.Flushed = append(p.Flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.pending = nil
	p.Discarded = true
}

func TestUnitOfWork_CommitPersistsAndFlushes(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userID := uuid.New()
	publisher := &recordingPublisher{}
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(publisher)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().Create(ctx, testutil.CreateTestAccount(userID)))
	require.NoError(t, uow.EventBus().Publish(events.DepositConfirmedEvent{UserID: userID, Amount: decimal.NewFromInt(1000)}))
	require.NoError(t, uow.Commit())

	loaded, err := NewAccountRepository(testDB.DB).GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, loaded.InvestBalance.Equal(decimal.NewFromInt(1000)))

	require.Len(t, publisher.Flushed, 1)
	assert.Equal(t, events.EventTypeDepositConfirmed, publisher.Flushed[0].Type())
	assert.False(t, publisher.Discarded)
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userID := uuid.New()
	publisher := &recordingPublisher{}
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(publisher)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().Create(ctx, testutil.CreateTestAccount(userID)))
	require.NoError(t, uow.EventBus().Publish(events.DepositConfirmedEvent{UserID: userID, Amount: decimal.NewFromInt(1000)}))
	require.NoError(t, uow.Rollback())

	_, err := NewAccountRepository(testDB.DB).GetByUserID(ctx, userID)
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)

	assert.Empty(t, publisher.Flushed)
	assert.True(t, publisher.Discarded)
}

func TestUnitOfWork_GuardsMisuse(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(&recordingPublisher{})

	t.Run("repositories require Begin", func(t *testing.T) {
		assert.Panics(t, func() { uow.AccountRepository() })
	})

	t.Run("double begin is rejected", func(t *testing.T) {
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("rollback without transaction is a no-op", func(t *testing.T) {
		fresh := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(&recordingPublisher{})
		assert.NoError(t, fresh.Rollback())
	})

	t.Run("commit without transaction fails", func(t *testing.T) {
		fresh := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(&recordingPublisher{})
		assert.Error(t, fresh.Commit())
	})
}

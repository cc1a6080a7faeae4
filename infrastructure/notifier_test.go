package infrastructure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune/ledger-service/domain/events"
)

func TestCustomerNotifierRegistersCustomerFacingHandlers(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	NewCustomerNotifier().Register(publisher)

	for _, eventType := range []events.EventType{
		events.EventTypeDepositConfirmed,
		events.EventTypeWithdrawalApproved,
		events.EventTypeWithdrawalRejected,
		events.EventTypeMilestoneReached,
		events.EventTypeAccountClosed,
	} {
		assert.Len(t, publisher.localHandlers[eventType], 1, "handler missing for %s", eventType)
	}

	// Internal job events stay broker-only
	assert.Empty(t, publisher.localHandlers[events.EventTypeYieldAccrued])

	handlers := publisher.localHandlers[events.EventTypeMilestoneReached]
	require.NotEmpty(t, handlers)
	err := handlers[0](context.Background(), events.MilestoneReachedEvent{
		UserID:    uuid.New(),
		Milestone: "Bronze",
	})
	assert.NoError(t, err)
}

func TestMapEventToSubjectCoversBalanceAdjustments(t *testing.T) {
	mapper := NewEventSubjectMapper()
	subject := mapper.MapEventToSubject(events.BalanceAdjustedEvent{
		UserID: uuid.New(),
		Bucket: "invest_balance",
		Amount: decimal.NewFromInt(-25),
	})
	assert.Equal(t, "ledger.balances.adjusted", subject)
	assert.Contains(t, mapper.GetAllSubjects(), subject)
}

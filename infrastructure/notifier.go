package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/events"
)

// CustomerNotifier reacts in-process to customer-facing ledger events.
// Actual delivery happens in the notification service consuming the NATS
// stream; this hook records the notification intent at the source.
type CustomerNotifier struct{}

// NewCustomerNotifier creates a new customer notifier
func NewCustomerNotifier() *CustomerNotifier {
	return &CustomerNotifier{}
}

// Register attaches the notifier to the customer-facing event types
func (n *CustomerNotifier) Register(publisher *NATSEventPublisher) {
	for _, eventType := range []events.EventType{
		events.EventTypeDepositConfirmed,
		events.EventTypeWithdrawalApproved,
		events.EventTypeWithdrawalRejected,
		events.EventTypeMilestoneReached,
		events.EventTypeAccountClosed,
	} {
		publisher.RegisterLocalHandler(eventType, n.notify)
	}
}

func (n *CustomerNotifier) notify(ctx context.Context, event events.Event) error {
	log.WithField("eventType", event.Type()).Info("Customer notification queued")
	return nil
}

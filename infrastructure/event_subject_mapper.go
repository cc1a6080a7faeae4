package infrastructure

import (
	"fmt"

	"fortune/ledger-service/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDepositConfirmed:
		return "ledger.deposits.confirmed"
	case events.EventTypeWithdrawalApproved:
		return "ledger.withdrawals.approved"
	case events.EventTypeWithdrawalRejected:
		return "ledger.withdrawals.rejected"
	case events.EventTypeApprovalUndone:
		return "ledger.approvals.undone"
	case events.EventTypeYieldAccrued:
		return "ledger.yield.accrued"
	case events.EventTypePoolCredited:
		return "ledger.pool.credited"
	case events.EventTypeMilestoneReached:
		return "ledger.milestones.reached"
	case events.EventTypeCycleRenewed:
		return "ledger.cycles.renewed"
	case events.EventTypeAccountClosed:
		return "ledger.accounts.closed"
	case events.EventTypeReferralRegistered:
		return "ledger.referrals.registered"
	case events.EventTypeBalanceAdjusted:
		return "ledger.balances.adjusted"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"ledger.deposits.confirmed",
		"ledger.withdrawals.approved",
		"ledger.withdrawals.rejected",
		"ledger.approvals.undone",
		"ledger.yield.accrued",
		"ledger.pool.credited",
		"ledger.milestones.reached",
		"ledger.cycles.renewed",
		"ledger.accounts.closed",
		"ledger.referrals.registered",
		"ledger.balances.adjusted",
	}
}

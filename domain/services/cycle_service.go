package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/interfaces"
)

type cycleService struct {
	accountRepo    interfaces.AccountRepository
	eventPublisher interfaces.EventPublisher
}

// NewCycleService creates a new cycle service
func NewCycleService(
	accountRepo interfaces.AccountRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.CycleService {
	return &cycleService{
		accountRepo:    accountRepo,
		eventPublisher: eventPublisher,
	}
}

// TickAccount advances the account's cycle day to match the calendar. The day
// is computed from the cycle start date, so missed ticks catch up and re-runs
// are no-ops. A completed cycle either renews or closes the account; closing
// returns the principal for the caller to pay out after commit.
func (s *cycleService) TickAccount(ctx context.Context, userID uuid.UUID, today time.Time) (*entities.CycleOutcome, error) {
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcome := &entities.CycleOutcome{CycleDay: account.CycleDay}
	if !account.IsActive() {
		return outcome, nil
	}

	target := account.CycleDayFor(today)
	if target <= account.CycleDay && account.CycleDay < entities.CycleLength {
		return outcome, nil
	}
	account.CycleDay = target
	outcome.CycleDay = target

	if account.CycleDay >= entities.CycleLength {
		if account.AutoCycleRenew {
			account.RenewCycle(today.UTC())
			outcome.CycleDay = 0
			outcome.Renewed = true
			if err := s.eventPublisher.Publish(events.CycleRenewedEvent{
				UserID:          userID,
				CyclesCompleted: account.CyclesCompleted,
			}); err != nil {
				return nil, err
			}
		} else {
			principal := account.Close()
			outcome.Closed = true
			outcome.Principal = principal
			if err := s.eventPublisher.Publish(events.AccountClosedEvent{
				UserID:    userID,
				Principal: principal,
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to persist cycle tick: %w", err)
	}
	return outcome, nil
}

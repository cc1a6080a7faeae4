package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/interfaces"
)

type referralService struct {
	referralRepo   interfaces.ReferralRepository
	yieldEventRepo interfaces.YieldEventRepository
	eventPublisher interfaces.EventPublisher
}

// NewReferralService creates a new referral service
func NewReferralService(
	referralRepo interfaces.ReferralRepository,
	yieldEventRepo interfaces.YieldEventRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ReferralService {
	return &referralService{
		referralRepo:   referralRepo,
		yieldEventRepo: yieldEventRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *referralService) RegisterEdge(ctx context.Context, childUserID, parentUserID uuid.UUID) error {
	edge, err := entities.NewReferralEdge(childUserID, parentUserID)
	if err != nil {
		return err
	}
	if err := s.referralRepo.CreateEdge(ctx, edge); err != nil {
		return fmt.Errorf("failed to record referral edge: %w", err)
	}
	return s.eventPublisher.Publish(events.ReferralRegisteredEvent{
		ChildUserID:  childUserID,
		ParentUserID: parentUserID,
	})
}

func (s *referralService) Counts(ctx context.Context, userID uuid.UUID) (entities.ReferralCounts, error) {
	return s.referralRepo.CountDownline(ctx, userID)
}

func (s *referralService) Earnings(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.yieldEventRepo.SumByUserAndSubkind(ctx, userID, entities.YieldSubkindReferral)
}

func (s *referralService) Upline(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.referralRepo.GetUpline(ctx, userID, entities.ReferralDepth)
}

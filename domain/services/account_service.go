package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/interfaces"
)

type accountService struct {
	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	yieldEventRepo  interfaces.YieldEventRepository
	referralRepo    interfaces.ReferralRepository
	eventPublisher  interfaces.EventPublisher
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo interfaces.AccountRepository,
	transactionRepo interfaces.TransactionRepository,
	yieldEventRepo interfaces.YieldEventRepository,
	referralRepo interfaces.ReferralRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.AccountService {
	return &accountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		yieldEventRepo:  yieldEventRepo,
		referralRepo:    referralRepo,
		eventPublisher:  eventPublisher,
	}
}

// Register creates the zero-balance account row at signup, so the dashboard
// has something to render before the first deposit is approved. Idempotent.
func (s *accountService) Register(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if err != entities.ErrAccountNotFound {
		return nil, err
	}

	account = entities.NewAccount(userID, time.Now().UTC())
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Snapshot assembles the dashboard read model. Plain reads, no row locks.
func (s *accountService) Snapshot(ctx context.Context, userID uuid.UUID) (*entities.AccountSnapshot, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.referralRepo.CountDownline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}
	referralEarnings, err := s.yieldEventRepo.SumByUserAndSubkind(ctx, userID, entities.YieldSubkindReferral)
	if err != nil {
		return nil, fmt.Errorf("failed to sum referral earnings: %w", err)
	}
	poolEarnings, err := s.yieldEventRepo.SumByUserAndSubkind(ctx, userID, entities.YieldSubkindPool)
	if err != nil {
		return nil, fmt.Errorf("failed to sum pool earnings: %w", err)
	}
	systemPoolPaid, err := s.yieldEventRepo.SumBySubkindSince(ctx, entities.YieldSubkindPool, account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sum system pool payouts: %w", err)
	}
	pendingDeposits, pendingWithdrawals, err := s.transactionRepo.CountPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending transactions: %w", err)
	}

	return &entities.AccountSnapshot{
		Account:          account,
		Referrals:        counts,
		ReferralEarnings: referralEarnings,
		PoolEarnings:     poolEarnings,
		SystemPoolPaid:   systemPoolPaid,
		DailyRateBps:     entities.DailyRateBps(account.InvestBalance, counts.Level1),
		Milestone:        entities.MilestoneFor(account.InvestBalance, counts.Level1),
		NextMilestone:    entities.NextMilestone(account.InvestBalance, counts.Level1),
		PendingDeposits:  pendingDeposits,
		PendingWithdraws: pendingWithdrawals,
	}, nil
}

func (s *accountService) SetFlags(ctx context.Context, userID uuid.UUID, flags entities.AccountFlags) (*entities.Account, error) {
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, entities.ErrAccountClosed
	}
	if flags.AutoCompoundOwn != nil {
		account.AutoCompoundOwn = *flags.AutoCompoundOwn
	}
	if flags.AutoCompoundRef != nil {
		account.AutoCompoundRef = *flags.AutoCompoundRef
	}
	if flags.AutoCycleRenew != nil {
		account.AutoCycleRenew = *flags.AutoCycleRenew
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update flags: %w", err)
	}
	return account, nil
}

func (s *accountService) Reinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.move(ctx, userID, entities.BucketYield, entities.BucketInvest, amount, false)
}

func (s *accountService) PoolReinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.move(ctx, userID, entities.BucketPool, entities.BucketInvest, amount, true)
}

func (s *accountService) PoolWithdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.move(ctx, userID, entities.BucketPool, entities.BucketYield, amount, true)
}

// Adjust applies an admin balance correction under the row lock. The change
// is published as a BalanceAdjustedEvent, which flushes with the same commit.
func (s *accountService) Adjust(ctx context.Context, userID uuid.UUID, bucket entities.Bucket, amount decimal.Decimal) (*entities.Account, error) {
	switch bucket {
	case entities.BucketInvest, entities.BucketYield, entities.BucketPool:
	default:
		return nil, entities.ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil, entities.ErrInvalidAmount
	}

	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, entities.ErrAccountClosed
	}
	if err := account.Credit(bucket, amount); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	if err := s.eventPublisher.Publish(events.BalanceAdjustedEvent{
		UserID:     userID,
		Bucket:     string(bucket),
		Amount:     amount,
		NewBalance: account.Balance(bucket),
	}); err != nil {
		return nil, err
	}
	return account, nil
}

// move shifts amount between two buckets of the same account under the row
// lock. Pool moves additionally require the pool to be unlocked.
func (s *accountService) move(ctx context.Context, userID uuid.UUID, from, to entities.Bucket, amount decimal.Decimal, needsPool bool) error {
	if !amount.IsPositive() {
		return entities.ErrInvalidAmount
	}
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return err
	}
	if !account.IsActive() {
		return entities.ErrAccountClosed
	}
	if needsPool && !account.PoolUnlocked() {
		return entities.ErrPoolLocked
	}
	if err := account.Credit(from, amount.Neg()); err != nil {
		return err
	}
	if err := account.Credit(to, amount); err != nil {
		return err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to move balance: %w", err)
	}
	return nil
}

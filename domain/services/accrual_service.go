package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/config"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/interfaces"
)

type accrualService struct {
	accountRepo    interfaces.AccountRepository
	yieldEventRepo interfaces.YieldEventRepository
	referralRepo   interfaces.ReferralRepository
	eventPublisher interfaces.EventPublisher
}

// NewAccrualService creates a new accrual service
func NewAccrualService(
	accountRepo interfaces.AccountRepository,
	yieldEventRepo interfaces.YieldEventRepository,
	referralRepo interfaces.ReferralRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.AccrualService {
	return &accrualService{
		accountRepo:    accountRepo,
		yieldEventRepo: yieldEventRepo,
		referralRepo:   referralRepo,
		eventPublisher: eventPublisher,
	}
}

// AccrueAccount credits one account's daily yield, pays upline commissions on
// that yield, and lands the monthly pool share when due. All of it commits or
// rolls back together with the caller's unit of work. The pool share has its
// own calendar: it lands on the first visit on or after the configured day of
// month, whether or not that day is a yield day.
func (s *accrualService) AccrueAccount(ctx context.Context, userID uuid.UUID, day time.Time) (*entities.AccrualResult, error) {
	result := &entities.AccrualResult{
		Yield:      decimal.Zero,
		Commission: decimal.Zero,
		Pool:       decimal.Zero,
	}
	yieldDay := entities.IsAccrualDay(day)
	poolDue := day.UTC().Day() >= config.Get().PoolCreditDay
	if !yieldDay && !poolDue {
		return result, nil
	}

	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() || account.CycleDay >= entities.CycleLength {
		return result, nil
	}

	if yieldDay && !account.AccruedOn(day) {
		if err := s.accrueYield(ctx, account, day, result); err != nil {
			return nil, err
		}
	}

	pool, err := s.creditMonthlyPool(ctx, account, day)
	if err != nil {
		return nil, err
	}
	result.Pool = pool

	if !result.Accrued && !pool.IsPositive() {
		return result, nil
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to persist accrual: %w", err)
	}
	return result, nil
}

// accrueYield applies the daily rate to the locked account and fans the
// commissions out. The accrual date is stamped even when the yield is zero.
func (s *accrualService) accrueYield(ctx context.Context, account *entities.Account, day time.Time, result *entities.AccrualResult) error {
	counts, err := s.referralRepo.CountDownline(ctx, account.UserID)
	if err != nil {
		return fmt.Errorf("failed to count referrals: %w", err)
	}

	invested := account.InvestBalance
	before := entities.MilestoneFor(invested, counts.Level1)
	rateBps := entities.DailyRateBps(invested, counts.Level1)
	yield := entities.ApplyBps(invested, rateBps)

	accrualDate := day.UTC()
	account.LastAccrualOn = &accrualDate
	result.Accrued = true
	result.RateBps = rateBps
	result.Yield = yield

	if yield.IsPositive() {
		bucket := entities.BucketYield
		if account.AutoCompoundOwn {
			bucket = entities.BucketInvest
		}
		if err := account.Credit(bucket, yield); err != nil {
			return err
		}
		account.RecordEarnings(yield)

		if err := s.yieldEventRepo.Record(ctx, &entities.YieldEvent{
			UserID:  account.UserID,
			Subkind: entities.YieldSubkindInvest,
			Amount:  yield,
		}); err != nil {
			return fmt.Errorf("failed to record yield event: %w", err)
		}
		if err := s.eventPublisher.Publish(events.YieldAccruedEvent{
			UserID:     account.UserID,
			Amount:     yield,
			RateBps:    rateBps,
			Compounded: account.AutoCompoundOwn,
			Day:        accrualDate,
		}); err != nil {
			return err
		}

		commission, err := s.payUplineCommissions(ctx, account.UserID, yield)
		if err != nil {
			return err
		}
		result.Commission = commission
	}

	if after := entities.MilestoneFor(account.InvestBalance, counts.Level1); after != nil && (before == nil || after.Name != before.Name) {
		result.MilestoneReached = after.Name
		if err := s.eventPublisher.Publish(events.MilestoneReachedEvent{
			UserID:    account.UserID,
			Milestone: after.Name,
		}); err != nil {
			return err
		}
	}
	return nil
}

// payUplineCommissions fans the accrued yield out to up to three ancestors.
// Closed ancestors are skipped without shifting commissions to deeper levels.
func (s *accrualService) payUplineCommissions(ctx context.Context, sourceUserID uuid.UUID, yield decimal.Decimal) (decimal.Decimal, error) {
	upline, err := s.referralRepo.GetUpline(ctx, sourceUserID, entities.ReferralDepth)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve upline: %w", err)
	}

	total := decimal.Zero
	for level, ancestorID := range upline {
		commission := entities.ApplyBps(yield, entities.ReferralCommissionBps[level])
		if !commission.IsPositive() {
			continue
		}

		ancestor, err := s.accountRepo.GetByUserIDForUpdate(ctx, ancestorID)
		if err == entities.ErrAccountNotFound {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		if !ancestor.IsActive() {
			continue
		}

		bucket := entities.BucketYield
		if ancestor.AutoCompoundRef {
			bucket = entities.BucketInvest
		}
		if err := ancestor.Credit(bucket, commission); err != nil {
			return decimal.Zero, err
		}
		ancestor.RecordEarnings(commission)
		if err := s.accountRepo.Update(ctx, ancestor); err != nil {
			return decimal.Zero, fmt.Errorf("failed to credit commission: %w", err)
		}

		src := sourceUserID
		if err := s.yieldEventRepo.Record(ctx, &entities.YieldEvent{
			UserID:       ancestorID,
			Subkind:      entities.YieldSubkindReferral,
			Amount:       commission,
			SourceUserID: &src,
		}); err != nil {
			return decimal.Zero, fmt.Errorf("failed to record commission event: %w", err)
		}
		total = total.Add(commission)
	}
	return total, nil
}

// creditMonthlyPool lands the pool share once per month, on the first visit
// on or after the configured day. The share is a cut of the system-wide
// invested total and only accounts past their first cycle participate.
func (s *accrualService) creditMonthlyPool(ctx context.Context, account *entities.Account, day time.Time) (decimal.Decimal, error) {
	cfg := config.Get()
	if day.UTC().Day() < cfg.PoolCreditDay || account.PoolCreditedInMonth(day) {
		return decimal.Zero, nil
	}
	if !account.PoolUnlocked() {
		return decimal.Zero, nil
	}

	systemInvested, err := s.accountRepo.SumInvestBalance(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum system invested balance: %w", err)
	}
	pool := entities.ApplyBps(systemInvested, cfg.PoolRateBps)
	if !pool.IsPositive() {
		return decimal.Zero, nil
	}
	if err := account.Credit(entities.BucketPool, pool); err != nil {
		return decimal.Zero, err
	}
	account.RecordEarnings(pool)
	poolDate := day.UTC()
	account.LastPoolCreditOn = &poolDate

	if err := s.yieldEventRepo.Record(ctx, &entities.YieldEvent{
		UserID:  account.UserID,
		Subkind: entities.YieldSubkindPool,
		Amount:  pool,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("failed to record pool event: %w", err)
	}
	if err := s.eventPublisher.Publish(events.PoolCreditedEvent{
		UserID: account.UserID,
		Amount: pool,
		Month:  poolDate,
	}); err != nil {
		return decimal.Zero, err
	}
	return pool, nil
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/config"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/services"
)

// AccrualWorker schedules and runs the daily yield accrual over all open
// accounts. Each account accrues in its own unit of work, so one failure
// never poisons the rest of the run.
type AccrualWorker struct {
	uowFactory UnitOfWorkFactory
}

// NewAccrualWorker creates a new accrual worker
func NewAccrualWorker(uowFactory UnitOfWorkFactory) *AccrualWorker {
	return &AccrualWorker{uowFactory: uowFactory}
}

// Start begins the accrual worker. Returns a stop function.
func (w *AccrualWorker) Start(ctx context.Context, accrualHour int) func() {
	stopChan := make(chan struct{})

	calculateNextRun := func() time.Duration {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), accrualHour, 0, 0, 0, time.UTC)

		// If the accrual time has already passed today, schedule for tomorrow
		if now.After(next) || now.Equal(next) {
			next = next.Add(24 * time.Hour)
		}

		return next.Sub(now)
	}

	go func() {
		for {
			select {
			case <-time.After(calculateNextRun()):
				if _, err := w.RunForDay(ctx, time.Now().UTC()); err != nil {
					log.WithError(err).Error("Daily accrual run failed")
				}
			case <-stopChan:
				log.Info("Accrual worker stopped")
				return
			case <-ctx.Done():
				log.Info("Accrual worker context cancelled")
				return
			}
		}
	}()

	log.WithField("accrualHour", accrualHour).Info("Accrual worker started")
	return func() {
		close(stopChan)
	}
}

// RunForDay accrues every open account for the given day and reports totals.
// Safe to re-run; accounts already accrued for the day are skipped.
func (w *AccrualWorker) RunForDay(ctx context.Context, day time.Time) (*entities.AccrualReport, error) {
	report := &entities.AccrualReport{
		Day:             day.UTC().Format("2006-01-02"),
		TotalYield:      decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalPool:       decimal.Zero,
	}

	// Non-yield days still run once the monthly pool window is open, so a
	// credit day landing on a weekend is picked up on the day itself.
	if !entities.IsAccrualDay(day) && day.UTC().Day() < config.Get().PoolCreditDay {
		log.WithField("day", report.Day).Info("Neither accrual day nor pool window, skipping run")
		return report, nil
	}

	userIDs, err := w.activeUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, userID := range userIDs {
		report.AccountsVisited++
		result, err := w.accrueOne(ctx, userID, day)
		if err != nil {
			report.Failures++
			log.WithFields(log.Fields{
				"userId": userID,
				"error":  err,
			}).Error("Failed to accrue account")
			continue
		}
		if !result.Accrued && result.Pool.IsZero() {
			report.AccountsSkipped++
			continue
		}
		if result.Accrued {
			report.AccountsAccrued++
		}
		report.TotalYield = report.TotalYield.Add(result.Yield)
		report.TotalCommission = report.TotalCommission.Add(result.Commission)
		report.TotalPool = report.TotalPool.Add(result.Pool)
	}

	log.WithFields(log.Fields{
		"day":      report.Day,
		"accrued":  report.AccountsAccrued,
		"skipped":  report.AccountsSkipped,
		"failures": report.Failures,
		"yield":    report.TotalYield,
	}).Info("Daily accrual run complete")
	return report, nil
}

func (w *AccrualWorker) activeUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	userIDs, err := uow.AccountRepository().GetActiveUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (w *AccrualWorker) accrueOne(ctx context.Context, userID uuid.UUID, day time.Time) (*entities.AccrualResult, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	svc := services.NewAccrualService(uow.AccountRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
	result, err := svc.AccrueAccount(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/services"
)

// CycleWorker advances every open account's cycle day once a day, shortly
// after midnight UTC. Closed-out principals are paid out after each commit.
type CycleWorker struct {
	uowFactory UnitOfWorkFactory
	payouts    PayoutDispatcher
}

// NewCycleWorker creates a new cycle worker
func NewCycleWorker(uowFactory UnitOfWorkFactory, payouts PayoutDispatcher) *CycleWorker {
	return &CycleWorker{
		uowFactory: uowFactory,
		payouts:    payouts,
	}
}

// Start begins the cycle worker. Returns a stop function.
func (w *CycleWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	calculateNextRun := func() time.Duration {
		now := time.Now().UTC()
		// Run at 00:10 UTC so the date has safely rolled over
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 10, 0, 0, time.UTC)
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
					log.WithError(err).Error("Cycle tick run failed")
				}
			case <-stopChan:
				log.Info("Cycle worker stopped")
				return
			case <-ctx.Done():
				log.Info("Cycle worker context cancelled")
				return
			}
		}
	}()

	log.Info("Cycle worker started")
	return func() {
		close(stopChan)
	}
}

// RunForDay ticks every open account's cycle for the given date. Re-running
// is a no-op for accounts already at the computed day.
func (w *CycleWorker) RunForDay(ctx context.Context, today time.Time) (*entities.CycleReport, error) {
	report := &entities.CycleReport{Day: today.UTC().Format("2006-01-02")}

	userIDs, err := w.activeUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, userID := range userIDs {
		report.AccountsVisited++
		outcome, err := w.tickOne(ctx, userID, today)
		if err != nil {
			report.Failures++
			log.WithFields(log.Fields{
				"userId": userID,
				"error":  err,
			}).Error("Failed to tick account cycle")
			continue
		}
		if outcome.Renewed {
			report.CyclesRenewed++
		}
		if outcome.Closed {
			report.AccountsClosed++
			if err := w.payouts.DispatchClosure(ctx, userID, outcome.Principal); err != nil {
				// Ledger state is committed; the payout retries out of band
				log.WithFields(log.Fields{
					"userId": userID,
					"error":  err,
				}).Error("Failed to dispatch closure payout")
			}
		}
	}

	log.WithFields(log.Fields{
		"day":      report.Day,
		"renewed":  report.CyclesRenewed,
		"closed":   report.AccountsClosed,
		"failures": report.Failures,
	}).Info("Cycle tick run complete")
	return report, nil
}

func (w *CycleWorker) activeUserIDs(ctx context.Context) ([]uuid.UUID, error) {
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

func (w *CycleWorker) tickOne(ctx context.Context, userID uuid.UUID, today time.Time) (*entities.CycleOutcome, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	svc := services.NewCycleService(uow.AccountRepository(), uow.EventBus())
	outcome, err := svc.TickAccount(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return outcome, nil
}

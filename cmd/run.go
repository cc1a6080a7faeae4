package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/application"
	"fortune/ledger-service/config"
	"fortune/ledger-service/database"
	"fortune/ledger-service/infrastructure"
	"fortune/ledger-service/server"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting ledger service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize NATS and the event publisher
	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureLedgerEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	infrastructure.NewCustomerNotifier().Register(eventPublisher)
	log.Info("NATS event publisher initialized successfully")

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)

	// Initialize external collaborators
	payouts := infrastructure.NewWebhookPayoutDispatcher(cfg.PayoutWebhookURL)
	oracle := infrastructure.NewHTTPPriceOracle(cfg.PriceOracleURL)

	// Initialize application layer
	ledger := application.NewLedger(uowFactory, payouts)
	accounts := application.NewAccounts(uowFactory)
	accrualWorker := application.NewAccrualWorker(uowFactory)
	cycleWorker := application.NewCycleWorker(uowFactory, payouts)

	// Start background workers
	stopAccrual := accrualWorker.Start(ctx, cfg.AccrualHour)
	defer stopAccrual()
	stopCycle := cycleWorker.Start(ctx)
	defer stopCycle()

	// Start HTTP server
	srv := server.New(cfg.HTTPAddr, ledger, accounts, accrualWorker, cycleWorker, oracle)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Ledger service is running")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down ledger service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	if err := natsClient.Close(); err != nil {
		log.WithError(err).Error("Error closing NATS connection")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}

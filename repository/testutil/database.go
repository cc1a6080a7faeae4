package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"fortune/ledger-service/database"
)

// TestDatabase wraps a migrated postgres instance for repository tests
type TestDatabase struct {
	DB *database.DB
}

var (
	setupOnce sync.Once
	sharedDB  *database.DB
	setupErr  error
)

// SetupTestDatabase returns a connection to a containerized postgres with the
// schema applied. The container is shared across the test binary; each call
// truncates all tables so tests start from an empty ledger.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	setupOnce.Do(func() {
		sharedDB, setupErr = startPostgres()
	})
	if setupErr != nil {
		t.Fatalf("failed to set up test database: %v", setupErr)
	}

	ctx := context.Background()
	_, err := sharedDB.Exec(ctx, `TRUNCATE accounts, transactions, yield_events, referral_edges`)
	if err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}

	return &TestDatabase{DB: sharedDB}
}

func startPostgres() (*database.DB, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return nil, err
	}

	return database.NewConnection(ctx, databaseURL)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"fortune/ledger-service/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP server configuration
	HTTPAddr  string
	JWTSecret string

	// Admin configuration
	AdminEmails []string // Emails granted access to the approval queue

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Price oracle configuration
	PriceOracleURL string

	// Payout configuration
	PayoutWebhookURL string // Endpoint notified of approved withdrawals and closures

	// Ledger policy
	MinDepositUSD int64 // Minimum accepted deposit in USD
	PoolCreditDay int   // Day of month the pool share lands (1-28)
	PoolRateBps   int64 // Monthly pool rate in basis points

	// Job scheduling
	AccrualHour int // Hour in UTC when the daily accrual runs (0-23)

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdminEmail reports whether the given email may use the approval queue.
func (c *Config) IsAdminEmail(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// HTTP
		HTTPAddr:  getEnvWithDefault("HTTP_ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Price oracle
		PriceOracleURL: getEnvWithDefault("PRICE_ORACLE_URL", "https://api.coingecko.com/api/v3"),

		// Payout
		PayoutWebhookURL: os.Getenv("PAYOUT_WEBHOOK_URL"),

		// Ledger policy defaults
		MinDepositUSD: 50,
		PoolCreditDay: 25,
		PoolRateBps:   10,

		// Jobs
		AccrualHour: 6,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Parse admin emails
	if admins := os.Getenv("ADMIN_EMAILS"); admins != "" {
		for _, email := range strings.Split(admins, ",") {
			email = strings.TrimSpace(email)
			if email != "" {
				config.AdminEmails = append(config.AdminEmails, email)
			}
		}
	}

	// Override policy defaults if environment variables are set
	if v := os.Getenv("MIN_DEPOSIT_USD"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MinDepositUSD = parsed
		}
	}
	if v := os.Getenv("POOL_CREDIT_DAY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 28 {
			config.PoolCreditDay = parsed
		}
	}
	if v := os.Getenv("POOL_RATE_BPS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.PoolRateBps = parsed
		}
	}
	if v := os.Getenv("ACCRUAL_HOUR"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 23 {
			config.AccrualHour = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:   "test",
		JWTSecret:     "test-secret",
		AdminEmails:   []string{"admin@example.com"},
		MinDepositUSD: 50,
		PoolCreditDay: 25,
		PoolRateBps:   10,
		AccrualHour:   6,
	}
}

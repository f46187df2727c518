package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"betsim/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration. An empty DatabaseURL selects the in-memory store.
	DatabaseURL  string
	DatabaseName string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Ledger configuration
	PlayerID        string
	StartingBalance float64
	WinningBalance  float64

	// Randomness; zero seeds from the clock
	RandomSeed int64

	// Projection configuration
	ProjectionHorizon int
	ProjectionRuns    int

	// Autoplay session
	AutoplayEvent    string
	AutoplayAmount   float64
	AutoplayRounds   int
	AutoplayInterval time.Duration

	// Environment
	Environment string // "development", "production" or "test"
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
			if os.Getenv("ENVIRONMENT") == "test" {
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
	if c.DatabaseURL == "" {
		return ""
	}
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// UsesDatabase reports whether a Postgres store is configured
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; the environment wins either way
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		PlayerID:        getEnvWithDefault("PLAYER_ID", "local"),
		StartingBalance: 1000,
		WinningBalance:  10000,

		ProjectionHorizon: 25,
		ProjectionRuns:    200,

		AutoplayEvent:    getEnvWithDefault("AUTOPLAY_EVENT", "coin-flip"),
		AutoplayAmount:   50,
		AutoplayRounds:   20,
		AutoplayInterval: 0,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.StartingBalance, err = getEnvFloat("STARTING_BALANCE", config.StartingBalance); err != nil {
		return nil, err
	}
	if config.WinningBalance, err = getEnvFloat("WINNING_BALANCE", config.WinningBalance); err != nil {
		return nil, err
	}
	if config.AutoplayAmount, err = getEnvFloat("AUTOPLAY_AMOUNT", config.AutoplayAmount); err != nil {
		return nil, err
	}
	if config.ProjectionHorizon, err = getEnvInt("PROJECTION_HORIZON", config.ProjectionHorizon); err != nil {
		return nil, err
	}
	if config.ProjectionRuns, err = getEnvInt("PROJECTION_RUNS", config.ProjectionRuns); err != nil {
		return nil, err
	}
	if config.AutoplayRounds, err = getEnvInt("AUTOPLAY_ROUNDS", config.AutoplayRounds); err != nil {
		return nil, err
	}
	if seed := os.Getenv("RANDOM_SEED"); seed != "" {
		if config.RandomSeed, err = strconv.ParseInt(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("RANDOM_SEED must be an integer: %w", err)
		}
	}
	if interval := os.Getenv("AUTOPLAY_INTERVAL"); interval != "" {
		if config.AutoplayInterval, err = time.ParseDuration(interval); err != nil {
			return nil, fmt.Errorf("AUTOPLAY_INTERVAL must be a duration: %w", err)
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configured values are usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PlayerID) == "" {
		return fmt.Errorf("PLAYER_ID cannot be empty")
	}
	if c.StartingBalance <= 0 {
		return fmt.Errorf("STARTING_BALANCE must be positive")
	}
	if c.WinningBalance <= c.StartingBalance {
		return fmt.Errorf("WINNING_BALANCE must exceed STARTING_BALANCE")
	}
	switch c.ProjectionHorizon {
	case 10, 25, 50:
	default:
		return fmt.Errorf("PROJECTION_HORIZON must be 10, 25 or 50")
	}
	if c.ProjectionRuns <= 0 {
		return fmt.Errorf("PROJECTION_RUNS must be positive")
	}
	if c.AutoplayRounds < 0 {
		return fmt.Errorf("AUTOPLAY_ROUNDS cannot be negative")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:       "test",
		LogLevel:          "debug",
		LogFormat:         "text",
		PlayerID:          "test-player",
		StartingBalance:   1000,
		WinningBalance:    10000,
		RandomSeed:        1,
		ProjectionHorizon: 25,
		ProjectionRuns:    20,
		AutoplayEvent:     "coin-flip",
		AutoplayAmount:    50,
		AutoplayRounds:    5,
	}
}

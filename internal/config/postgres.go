package config

import (
	"errors"
	"fmt"
)

// ErrHistoryDisabled is returned when no database is configured for run history
var ErrHistoryDisabled = errors.New("run history database is not configured")

// PostgresConfig holds configuration for the run history database
type PostgresConfig struct {
	URL      string
	User     string
	Password string
	Database string
	Host     string
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables.
// DATABASE_URL wins over the individual POSTGRES_* variables; with neither set
// history is disabled.
func LoadPostgresConfig(getenv func(string) string) (*PostgresConfig, error) {
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		return &PostgresConfig{URL: dsn}, nil
	}

	config := &PostgresConfig{
		User:     getenv("POSTGRES_USER"),
		Password: getenv("POSTGRES_PASSWORD"),
		Database: getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOSTNAME"),
	}

	if config.Host == "" {
		return nil, ErrHistoryDisabled
	}

	// Validate required fields
	if config.User == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if config.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}

	return config, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Database)
}

// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitledger/internal/auth"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything the server needs to start.
type Config struct {
	ListenAddr string

	DB struct {
		Driver string
		// Path is the SQLite database file.
		Path string
		// URL is the PostgreSQL connection string.
		URL string
		// TxTimeout bounds every transaction. Zero disables the bound.
		TxTimeout time.Duration
	}

	JWT struct {
		Secret string
		TTL    time.Duration
	}

	// Clients maps trusted front-end client ids to bcrypt secret hashes.
	Clients map[string]string

	Log struct {
		Level  string
		Format string
	}

	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Variables from envFiles
// (default ".env") are loaded first when present and never override variables
// already set.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	cfg.DB.Driver = getEnv("DB_DRIVER", DriverSQLite)
	cfg.DB.Path = getEnv("DB_PATH", "./data/ledger.db")
	cfg.DB.URL = getEnv("DATABASE_URL", "")

	var err error
	if cfg.DB.TxTimeout, err = getDuration("TX_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.JWT.Secret = getEnv("JWT_SECRET", "")
	if cfg.JWT.TTL, err = getDuration("JWT_TTL", "24h"); err != nil {
		return nil, err
	}

	if cfg.Clients, err = auth.ParseClients(getEnv("API_CLIENTS", "")); err != nil {
		return nil, fmt.Errorf("invalid API_CLIENTS: %w", err)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "text")

	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

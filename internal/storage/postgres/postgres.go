// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute

	// lockTimeout bounds every row lock wait. Expiry surfaces as 55P03.
	lockTimeout = "5s"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dialect is the PostgreSQL flavor of the shared queries.
var Dialect = sqlstore.Dialect{
	Name:         "postgres",
	Numbered:     true,
	Now:          "CAST(EXTRACT(EPOCH FROM NOW()) AS BIGINT)",
	LockDebts:    " FOR UPDATE OF d",
	LockPayments: " FOR UPDATE OF p, d",
	Retryable:    isRetryable,
}

// New connects to dsn, applies pending migrations and returns a store.
func New(ctx context.Context, dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.RuntimeParams["lock_timeout"] = lockTimeout

	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqlstore.New(db, Dialect, opts...), nil
}

// runMigrations applies the embedded migrations over a dedicated connection,
// which the migrate instance closes when done.
func runMigrations(cfg *pgx.ConnConfig) (err error) {
	db := stdlib.OpenDB(*cfg)

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		DatabaseName: cfg.Database,
		SchemaName:   "public",
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create postgres driver instance: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Database, driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Debug("no new migrations found")
			return nil
		}

		var dirtyErr migrate.ErrDirty
		if errors.As(err, &dirtyErr) {
			return fmt.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
		}

		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// isRetryable reports serialization failures, deadlocks and lock timeouts.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

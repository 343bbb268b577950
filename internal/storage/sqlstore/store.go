// Package sqlstore implements storage.Store over database/sql.
// Dialect-specific packages (sqlite, postgres) open the connection, run
// migrations and supply a Dialect; everything else is shared.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// TxObserver is notified once per finished transaction.
type TxObserver interface {
	TxFinished(committed bool)
}

// Store implements storage.Store on top of a *sql.DB.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	logger   *slog.Logger
	observer TxObserver
	timeout  time.Duration
	newID    func() string

	queries sync.Map
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for transaction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTxObserver registers an observer for transaction outcomes.
func WithTxObserver(o TxObserver) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithTxTimeout bounds every transaction. Zero disables the bound.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithIDGenerator replaces the bill id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		logger:  slog.Default(),
		newID:   shortID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the name of the SQL dialect in use.
func (s *Store) Dialect() string {
	return s.dialect.Name
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in a transaction and commits only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, s.dialect.TxOptions)
	if err != nil {
		return s.wrap("failed to begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", "dialect", s.dialect.Name, "error", rbErr)
		}
		s.finished(false)
	}()

	if err := fn(&tx{tx: sqlTx, s: s}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return s.wrap("failed to commit transaction", err)
	}
	committed = true
	s.finished(true)
	return nil
}

func (s *Store) finished(committed bool) {
	if s.observer != nil {
		s.observer.TxFinished(committed)
	}
}

func (s *Store) query(q string) string {
	if v, ok := s.queries.Load(q); ok {
		return v.(string)
	}
	compiled := s.dialect.compile(q)
	s.queries.Store(q, compiled)
	return compiled
}

// wrap annotates err and marks lock contention as retryable.
func (s *Store) wrap(msg string, err error) error {
	if s.dialect.retryable(err) {
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrRetryable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:billIDLength]
}

// tx is the storage.Tx handed to WithTx callbacks.
type tx struct {
	tx *sql.Tx
	s  *Store
}

func (t *tx) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.s.query(q), args...)
}

func (t *tx) queryRows(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.s.query(q), args...)
}

func (t *tx) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.s.query(q), args...)
}

func (t *tx) wrap(msg string, err error) error {
	return t.s.wrap(msg, err)
}

// execExactlyOne runs a mutation that must touch exactly one row.
func (t *tx) execExactlyOne(ctx context.Context, op string, q string, args ...any) error {
	res, err := t.exec(ctx, q, args...)
	if err != nil {
		return t.wrap("failed to "+op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.wrap("failed to "+op, err)
	}
	if n != 1 {
		return fmt.Errorf("failed to %s: %w: %d rows affected", op, storage.ErrInvariantViolation, n)
	}
	return nil
}

func nullTime(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

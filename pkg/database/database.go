// Package database owns the PostgreSQL connection pool and the scoped
// transaction helper every repository runs its writes through.
//
// WithTx is the only way to open a transaction: it begins, bounds lock waits
// with SET LOCAL lock_timeout, runs the callback, and commits or rolls back on
// exit. Serialization failures, deadlocks and lock timeouts are retried once;
// if the retry also fails the error is wrapped with ErrRetryable so callers can
// surface it as a transient failure.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// ErrRetryable marks a transaction that failed on contention after its retry
// budget was spent. The whole operation may be retried by the caller.
var ErrRetryable = errors.New("transaction conflict, retry the operation")

// PostgreSQL SQLSTATE codes treated as transient contention.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

const maxTxAttempts = 2

// Database wraps *sql.DB with transaction policy.
type Database struct {
	db           *sql.DB
	log          logger.Logger
	lockTimeout  time.Duration
	retryBackoff time.Duration
	maxOpenConns int
}

// Option configures a Database.
type Option func(*Database)

// WithLockTimeout bounds how long a statement waits for a row lock. Zero disables the bound.
func WithLockTimeout(d time.Duration) Option {
	return func(db *Database) { db.lockTimeout = d }
}

// WithRetryBackoff sets the pause before the single retry of a conflicting transaction.
func WithRetryBackoff(d time.Duration) Option {
	return func(db *Database) { db.retryBackoff = d }
}

// WithMaxOpenConns caps the pool size.
func WithMaxOpenConns(n int) Option {
	return func(db *Database) { db.maxOpenConns = n }
}

// NewPool opens a pgx-backed *sql.DB for url, applies pool settings and
// verifies connectivity.
func NewPool(ctx context.Context, url string, log logger.Logger, opts ...Option) (*Database, error) {
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	d := New(sqlDB, log, opts...)
	if d.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(d.maxOpenConns)
		sqlDB.SetMaxIdleConns(d.maxOpenConns / 2)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return d, nil
}

// New wraps an already opened *sql.DB.
func New(sqlDB *sql.DB, log logger.Logger, opts ...Option) *Database {
	d := &Database{
		db:           sqlDB,
		log:          log,
		lockTimeout:  5 * time.Second,
		retryBackoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying *sql.DB for non-transactional reads.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a single transaction. fn may be invoked twice when the
// first attempt hits a serialization failure, deadlock or lock timeout, so it
// must not keep state across invocations.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = d.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt < maxTxAttempts {
			d.log.WarnContext(ctx, "database: transaction conflict, retrying",
				"attempt", attempt,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.retryBackoff):
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}

func (d *Database) runTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("database: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				d.log.ErrorContext(ctx, "database: rollback failed", "error", rbErr)
			}
		}
	}()

	if stmt := lockTimeoutStatement(d.lockTimeout); stmt != "" {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: set lock timeout: %w", err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// lockTimeoutStatement renders the SET LOCAL statement for d. SET does not
// accept bind parameters, so the value is formatted as integer milliseconds.
func lockTimeoutStatement(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

// IsRetryable reports whether err is transient lock or serialization contention.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	default:
		return false
	}
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *Database) Close() {
	if err := d.db.Close(); err != nil {
		d.log.Error("database: close failed", "error", err)
	}
}

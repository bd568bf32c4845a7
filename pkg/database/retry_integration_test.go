//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/database/pgtest"
)

func startContended(t *testing.T) (*database.Database, *sql.Tx) {
	t.Helper()
	ctx := context.Background()
	db := pgtest.Start(t,
		database.WithLockTimeout(100*time.Millisecond),
		database.WithRetryBackoff(10*time.Millisecond),
	)
	if _, err := db.DB().ExecContext(ctx,
		`CREATE TABLE tx_counters (id INTEGER PRIMARY KEY, n INTEGER NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.DB().ExecContext(ctx, `INSERT INTO tx_counters (id, n) VALUES (1, 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	holder, err := db.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin holder: %v", err)
	}
	t.Cleanup(func() { _ = holder.Rollback() })
	if _, err := holder.ExecContext(ctx, `SELECT n FROM tx_counters WHERE id = 1 FOR UPDATE`); err != nil {
		t.Fatalf("lock row: %v", err)
	}
	return db, holder
}

func increment(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE tx_counters SET n = n + 1 WHERE id = 1`)
	return err
}

func counter(t *testing.T, db *database.Database) int {
	t.Helper()
	var n int
	if err := db.DB().QueryRowContext(context.Background(), `SELECT n FROM tx_counters WHERE id = 1`).Scan(&n); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return n
}

func TestWithTx_LockTimeoutRetriedOnceThenRetryable(t *testing.T) {
	db, holder := startContended(t)
	ctx := context.Background()

	calls := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		calls++
		return increment(ctx, tx)
	})

	if calls != 2 {
		t.Fatalf("callback ran %d times, want 2", calls)
	}
	if !errors.Is(err, database.ErrRetryable) {
		t.Fatalf("expected ErrRetryable, got %v", err)
	}
	if !database.IsRetryable(err) {
		t.Fatalf("expected the lock timeout to stay visible, got %v", err)
	}

	if err := holder.Rollback(); err != nil {
		t.Fatalf("release holder: %v", err)
	}
	if got := counter(t, db); got != 0 {
		t.Fatalf("counter = %d, want 0", got)
	}
}

func TestWithTx_RetrySucceedsAfterLockReleased(t *testing.T) {
	db, holder := startContended(t)
	ctx := context.Background()

	calls := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		calls++
		err := increment(ctx, tx)
		if calls == 1 {
			if rbErr := holder.Rollback(); rbErr != nil {
				t.Errorf("release holder: %v", rbErr)
			}
		}
		return err
	})

	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if calls != 2 {
		t.Fatalf("callback ran %d times, want 2", calls)
	}
	if got := counter(t, db); got != 1 {
		t.Fatalf("counter = %d, want 1", got)
	}
}

func TestWithTx_NonRetryableRunsOnce(t *testing.T) {
	db, _ := startContended(t)
	ctx := context.Background()

	calls := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		calls++
		_, err := tx.ExecContext(ctx, `INSERT INTO tx_counters (id, n) VALUES (2, 0), (2, 0)`)
		return err
	})

	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
	if err == nil || errors.Is(err, database.ErrRetryable) || database.IsRetryable(err) {
		t.Fatalf("expected a plain unique violation, got %v", err)
	}
}

//go:build integration

// Package pgtest starts a throwaway PostgreSQL container with the
// application schema applied, for repository integration tests.
package pgtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/migrator"
)

// Start runs a PostgreSQL container, applies migrations/ordermgmt and returns
// a Database connected to it. The container is terminated on test cleanup.
func Start(t *testing.T, opts ...database.Option) *database.Database {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ordermgmt"),
		postgres.WithUsername("orders"),
		postgres.WithPassword("orders"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.NewPool(ctx, connStr, logger.Discard(), opts...)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := migrator.Up(db.DB(), os.DirFS(migrationsDir())); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations", "ordermgmt")
}

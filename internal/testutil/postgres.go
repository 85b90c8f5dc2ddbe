// Package testutil starts disposable databases for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	sqlstore "github.com/aloks98/workspaces/store/sql"
)

// SetupPostgres creates a PostgreSQL testcontainer and returns a migrated store.
// The container is automatically cleaned up when the test finishes.
func SetupPostgres(t testing.TB) *sqlstore.Store {
	return SetupPostgresWithPrefix(t, "test_")
}

// SetupPostgresWithPrefix is SetupPostgres with a custom table prefix.
func SetupPostgresWithPrefix(t testing.TB, tablePrefix string) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("workspaces_test"),
		postgres.WithUsername("workspaces"),
		postgres.WithPassword("workspaces"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	terminateOnCleanup(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	return openSQL(t, &sqlstore.Config{
		Dialect:     sqlstore.PostgreSQL,
		DSN:         dsn,
		TablePrefix: tablePrefix,
	})
}

func openSQL(t testing.TB, cfg *sqlstore.Config) *sqlstore.Store {
	t.Helper()

	s, err := sqlstore.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create SQL store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("Failed to close store: %v", err)
		}
	})

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return s
}

func terminateOnCleanup(t testing.TB, c testcontainers.Container) {
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})
}

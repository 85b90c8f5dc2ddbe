package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/mysql"

	sqlstore "github.com/aloks98/workspaces/store/sql"
)

// SetupMySQL creates a MySQL testcontainer and returns a migrated store.
func SetupMySQL(t testing.TB) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("workspaces_test"),
		mysql.WithUsername("workspaces"),
		mysql.WithPassword("workspaces"),
	)
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}
	terminateOnCleanup(t, container)

	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	return openSQL(t, &sqlstore.Config{
		Dialect:     sqlstore.MySQL,
		DSN:         dsn,
		TablePrefix: "test_",
	})
}

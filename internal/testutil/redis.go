package testutil

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	redisstore "github.com/aloks98/workspaces/store/redis"
)

// SetupRedis creates a Redis testcontainer and returns a connected store.
func SetupRedis(t testing.TB) *redisstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	terminateOnCleanup(t, container)

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL %q: %v", uri, err)
	}

	s, err := redisstore.New(&redisstore.Config{
		Client:    goredis.NewClient(opts),
		KeyPrefix: "test:",
	})
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("Failed to close store: %v", err)
		}
	})
	return s
}

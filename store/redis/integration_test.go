//go:build integration

package redis_test

import (
	"testing"

	"github.com/aloks98/workspaces/internal/storetest"
	"github.com/aloks98/workspaces/internal/testutil"
	"github.com/aloks98/workspaces/store"
)

func TestRedis_Integration(t *testing.T) {
	s := testutil.SetupRedis(t)
	storetest.Run(t, func(*testing.T) store.Store { return s })
}

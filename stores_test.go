package workspaces

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	filestore "github.com/aloks98/workspaces/store/file"
	"github.com/aloks98/workspaces/store/memory"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := OpenStore(ctx, StoreConfig{Kind: StoreMemory})
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*memory.Store); !ok {
			t.Errorf("OpenStore() = %T, want *memory.Store", s)
		}
	})

	t.Run("empty kind is memory", func(t *testing.T) {
		s, err := OpenStore(ctx, StoreConfig{})
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*memory.Store); !ok {
			t.Errorf("OpenStore() = %T, want *memory.Store", s)
		}
	})

	t.Run("file", func(t *testing.T) {
		s, err := OpenStore(ctx, StoreConfig{Kind: StoreFile, File: filepath.Join(t.TempDir(), "ws.json")})
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*filestore.Store); !ok {
			t.Errorf("OpenStore() = %T, want *file.Store", s)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Kind: "etcd"})
		if !errors.Is(err, ErrStoreUnsupported) {
			t.Errorf("OpenStore() error = %v, want ErrStoreUnsupported", err)
		}
	})

	t.Run("invalid mysql dsn", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Kind: StoreMySQL, DSN: "not a dsn"})
		if !errors.Is(err, ErrStoreUnavailable) {
			t.Errorf("OpenStore() error = %v, want ErrStoreUnavailable", err)
		}
		if !IsStoreError(err) {
			t.Errorf("IsStoreError(%v) = false", err)
		}
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Kind: StoreRedis, RedisAddr: "127.0.0.1:1"})
		if !errors.Is(err, ErrStoreUnavailable) {
			t.Errorf("OpenStore() error = %v, want ErrStoreUnavailable", err)
		}
	})
}

package workspaces

import (
	"context"
	"fmt"

	"github.com/aloks98/workspaces/store"
	filestore "github.com/aloks98/workspaces/store/file"
	"github.com/aloks98/workspaces/store/memory"
	redisstore "github.com/aloks98/workspaces/store/redis"
	sqlstore "github.com/aloks98/workspaces/store/sql"
)

// OpenStore creates the backend described by cfg and checks that it answers.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Kind {
	case StoreMemory, "":
		return memory.New(), nil
	case StorePostgres, StoreMySQL:
		s, err = sqlstore.New(&sqlstore.Config{
			Dialect:     sqlstore.Dialect(cfg.Kind),
			DSN:         cfg.DSN,
			TablePrefix: cfg.TablePrefix,
		})
	case StoreRedis:
		s, err = redisstore.New(&redisstore.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case StoreFile:
		s, err = filestore.New(ctx, &filestore.Config{Path: cfg.File})
	default:
		return nil, fmt.Errorf("%w: %q", ErrStoreUnsupported, cfg.Kind)
	}
	if err != nil {
		return nil, NewWorkspaceError(CodeStoreUnavailable, fmt.Sprintf("open %s store", cfg.Kind), fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, NewWorkspaceError(CodeStoreUnavailable, fmt.Sprintf("ping %s store", cfg.Kind), fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	return s, nil
}

// Package file provides a single-process store persisted to a JSON file.
//
// Records live in an in-memory store; every successful mutation rewrites
// the snapshot file. The file is guarded by an exclusive lock held for the
// lifetime of the Store, so a second process opening the same path fails
// with ErrLocked instead of overwriting it.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/aloks98/workspaces/store"
	"github.com/aloks98/workspaces/store/memory"
)

// ErrLocked is returned by New when another process holds the file lock.
var ErrLocked = errors.New("file: store is locked by another process")

// Config holds file store configuration.
type Config struct {
	// Path is the snapshot file. Its directory is created if missing.
	Path string

	// LockTimeout bounds how long New waits for the file lock.
	// Defaults to 3 seconds.
	LockTimeout time.Duration
}

// Store implements store.Store on top of memory.Store.
type Store struct {
	*memory.Store

	path string
	lock *flock.Flock
	mu   sync.Mutex // serializes writes of the snapshot file
}

var _ store.Store = (*Store)(nil)

// New opens or creates the snapshot at cfg.Path and locks it.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("file: path is required")
	}
	timeout := cfg.LockTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("file: create directory: %w", err)
	}

	lock := flock.New(cfg.Path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("file: acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	s := &Store{
		Store: memory.New(),
		path:  cfg.Path,
		lock:  lock,
	}
	if err := s.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file: read snapshot: %w", err)
	}
	// Empty file is OK
	if len(data) == 0 {
		return nil
	}

	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("file: parse snapshot: %w", err)
	}
	s.Restore(&snap)
	return nil
}

// persist writes the current snapshot through a temp file and rename.
func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("file: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("file: replace snapshot: %w", err)
	}
	return nil
}

// Close writes the final snapshot and releases the lock.
func (s *Store) Close() error {
	err := s.persist()
	if cerr := s.Store.Close(); err == nil {
		err = cerr
	}
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// Migrate writes the snapshot file if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.persist()
}

// CreateUser saves a user and its first workspace.
func (s *Store) CreateUser(ctx context.Context, user *store.User, ws *store.Workspace) error {
	if err := s.Store.CreateUser(ctx, user, ws); err != nil {
		return err
	}
	return s.persist()
}

// CreateWorkspace saves a workspace owned by the user with ownerEmail.
func (s *Store) CreateWorkspace(ctx context.Context, ws *store.Workspace, ownerEmail string) error {
	if err := s.Store.CreateWorkspace(ctx, ws, ownerEmail); err != nil {
		return err
	}
	return s.persist()
}

// DeleteWorkspace removes a workspace, its items and its share memberships.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	return persisted(s, func() (*store.Workspace, error) { return s.Store.DeleteWorkspace(ctx, id) })
}

// ShareWorkspace adds the user to the workspace's shared list.
func (s *Store) ShareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return persisted(s, func() (*store.Workspace, error) { return s.Store.ShareWorkspace(ctx, workspaceID, userID) })
}

// UnshareWorkspace removes the user from the workspace's shared list.
func (s *Store) UnshareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return persisted(s, func() (*store.Workspace, error) { return s.Store.UnshareWorkspace(ctx, workspaceID, userID) })
}

// CreateItem saves an item in its workspace.
func (s *Store) CreateItem(ctx context.Context, item *store.Item) error {
	if err := s.Store.CreateItem(ctx, item); err != nil {
		return err
	}
	return s.persist()
}

// UpdateItemType changes the type of an item.
func (s *Store) UpdateItemType(ctx context.Context, id int64, t store.ItemType) (*store.Item, error) {
	return persisted(s, func() (*store.Item, error) { return s.Store.UpdateItemType(ctx, id, t) })
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) (*store.Item, error) {
	return persisted(s, func() (*store.Item, error) { return s.Store.DeleteItem(ctx, id) })
}

func persisted[T any](s *Store, mutate func() (T, error)) (T, error) {
	out, err := mutate()
	if err != nil {
		return out, err
	}
	if err := s.persist(); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

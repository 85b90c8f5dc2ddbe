// Package redis provides Redis storage for workspaces.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aloks98/workspaces/store"
)

// DefaultKeyPrefix is prepended to every key when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "ws:"

// maxWatchRetries bounds optimistic transaction retries under contention.
const maxWatchRetries = 10

// Store implements store.Store using Redis.
//
// Records are JSON strings; relations are sets of IDs. Multi-key writes
// run in MULTI/EXEC, guarded by WATCH where they depend on a prior read,
// so the store expects a single node rather than a cluster.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Config holds Redis store configuration.
type Config struct {
	// Client is an existing Redis client.
	// If provided, other options are ignored.
	Client redis.UniversalClient

	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the Redis password.
	Password string

	// DB is the Redis database number.
	DB int

	// PoolSize is the maximum number of connections.
	PoolSize int

	// KeyPrefix namespaces all keys. Defaults to "ws:".
	KeyPrefix string
}

// New creates a new Redis store.
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	var client redis.UniversalClient

	if cfg.Client != nil {
		client = cfg.Client
	} else {
		opts := &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
		if cfg.PoolSize > 0 {
			opts.PoolSize = cfg.PoolSize
		}
		client = redis.NewClient(opts)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Store{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Migrate is a no-op for Redis as it doesn't require schema migration.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

// Keys

func (s *Store) key(parts ...string) string {
	return s.prefix + strings.Join(parts, ":")
}

func (s *Store) userKey(id string) string       { return s.key("user", id) }
func (s *Store) emailKey(email string) string   { return s.key("email", email) }
func (s *Store) usersKey() string               { return s.key("users") }
func (s *Store) ownedKey(userID string) string  { return s.key("user", userID, "owned") }
func (s *Store) sharedKey(userID string) string { return s.key("user", userID, "shared") }
func (s *Store) workspaceKey(id int64) string   { return s.key("workspace", itoa(id)) }
func (s *Store) membersKey(id int64) string     { return s.key("workspace", itoa(id), "users") }
func (s *Store) itemsKey(id int64) string       { return s.key("workspace", itoa(id), "items") }
func (s *Store) itemKey(id int64) string        { return s.key("item", itoa(id)) }
func (s *Store) seqKey(name string) string      { return s.key("seq", name) }

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Helpers

// reader is satisfied by the client and by *redis.Tx inside WATCH.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func getJSON(ctx context.Context, c reader, key string, v any) error {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func mustExist(ctx context.Context, c reader, key string) error {
	n, err := c.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changes before EXEC.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// mget loads and decodes the JSON records at keys, skipping missing ones.
func mget[T any](ctx context.Context, c reader, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		rec := new(T)
		if err := json.Unmarshal([]byte(str), rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) loadUsers(ctx context.Context, setKey string) ([]*store.User, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.userKey(id)
	}
	users, err := mget[store.User](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Store) loadWorkspaces(ctx context.Context, setKey string) ([]*store.Workspace, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("workspace", id)
	}
	result, err := mget[store.Workspace](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// User methods

// CreateUser saves a user and its first workspace.
// The email key is claimed with SETNX first and released if the
// remaining writes fail.
func (s *Store) CreateUser(ctx context.Context, user *store.User, ws *store.Workspace) error {
	email := store.NormalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	claimed, err := s.client.SetNX(ctx, s.emailKey(email), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return store.ErrDuplicateEmail
	}
	release := func(err error) error {
		s.client.Del(context.WithoutCancel(ctx), s.emailKey(email))
		return err
	}

	user.Email = email
	userData, err := json.Marshal(user)
	if err != nil {
		return release(err)
	}

	var wsData []byte
	if ws != nil {
		id, err := s.client.Incr(ctx, s.seqKey("workspace")).Result()
		if err != nil {
			return release(err)
		}
		now := s.now()
		ws.ID = id
		ws.OwnerID = user.ID
		ws.CreatedAt = now
		ws.UpdatedAt = now
		if wsData, err = json.Marshal(ws); err != nil {
			return release(err)
		}
	}

	// The user record is claimed like the email so a caller-supplied ID
	// cannot overwrite an existing user.
	created, err := s.client.SetNX(ctx, s.userKey(user.ID), userData, 0).Result()
	if err != nil {
		return release(err)
	}
	if !created {
		return release(store.ErrDuplicateEmail)
	}
	releaseUser := func(err error) error {
		s.client.Del(context.WithoutCancel(ctx), s.userKey(user.ID))
		return release(err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.usersKey(), user.ID)
		if ws != nil {
			pipe.Set(ctx, s.workspaceKey(ws.ID), wsData, 0)
			pipe.SAdd(ctx, s.ownedKey(user.ID), ws.ID)
		}
		return nil
	})
	if err != nil {
		return releaseUser(err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	u := &store.User{}
	if err := getJSON(ctx, s.client, s.userKey(id), u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	id, err := s.client.Get(ctx, s.emailKey(store.NormalizeEmail(email))).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]*store.User, error) {
	return s.loadUsers(ctx, s.usersKey())
}

// OwnedWorkspaces returns the workspaces owned by the user.
func (s *Store) OwnedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	if err := mustExist(ctx, s.client, s.userKey(userID)); err != nil {
		return nil, err
	}
	return s.loadWorkspaces(ctx, s.ownedKey(userID))
}

// SharedWorkspaces returns the workspaces shared with the user.
func (s *Store) SharedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	if err := mustExist(ctx, s.client, s.userKey(userID)); err != nil {
		return nil, err
	}
	return s.loadWorkspaces(ctx, s.sharedKey(userID))
}

// Workspace methods

// CreateWorkspace saves a workspace owned by the user with ownerEmail.
func (s *Store) CreateWorkspace(ctx context.Context, ws *store.Workspace, ownerEmail string) error {
	owner, err := s.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		return err
	}
	id, err := s.client.Incr(ctx, s.seqKey("workspace")).Result()
	if err != nil {
		return err
	}
	now := s.now()
	ws.ID = id
	ws.OwnerID = owner.ID
	ws.CreatedAt = now
	ws.UpdatedAt = now
	data, err := json.Marshal(ws)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.workspaceKey(id), data, 0)
		pipe.SAdd(ctx, s.ownedKey(owner.ID), id)
		return nil
	})
	return err
}

// GetWorkspace retrieves a workspace by ID.
func (s *Store) GetWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	ws := &store.Workspace{}
	if err := getJSON(ctx, s.client, s.workspaceKey(id), ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// DeleteWorkspace removes a workspace, its items and its share memberships.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	wsKey, membersKey, itemsKey := s.workspaceKey(id), s.membersKey(id), s.itemsKey(id)
	var deleted *store.Workspace

	err := s.watch(ctx, func(tx *redis.Tx) error {
		ws := &store.Workspace{}
		if err := getJSON(ctx, tx, wsKey, ws); err != nil {
			return err
		}
		members, err := tx.SMembers(ctx, membersKey).Result()
		if err != nil {
			return err
		}
		items, err := tx.SMembers(ctx, itemsKey).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, wsKey, membersKey, itemsKey)
			pipe.SRem(ctx, s.ownedKey(ws.OwnerID), id)
			for _, userID := range members {
				pipe.SRem(ctx, s.sharedKey(userID), id)
			}
			for _, itemID := range items {
				pipe.Del(ctx, s.key("item", itemID))
			}
			return nil
		})
		if err != nil {
			return err
		}
		deleted = ws
		return nil
	}, wsKey, membersKey, itemsKey)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ShareWorkspace adds the user to the workspace's shared list.
func (s *Store) ShareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return s.editMembership(ctx, workspaceID, userID, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, s.membersKey(workspaceID), userID)
		pipe.SAdd(ctx, s.sharedKey(userID), workspaceID)
	})
}

// UnshareWorkspace removes the user from the workspace's shared list.
func (s *Store) UnshareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return s.editMembership(ctx, workspaceID, userID, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, s.membersKey(workspaceID), userID)
		pipe.SRem(ctx, s.sharedKey(userID), workspaceID)
	})
}

// editMembership checks both sides of a share edit, then queues edit
// together with the workspace's bumped UpdatedAt in one transaction.
func (s *Store) editMembership(ctx context.Context, workspaceID int64, userID string, edit func(pipe redis.Pipeliner)) (*store.Workspace, error) {
	wsKey := s.workspaceKey(workspaceID)
	var updated *store.Workspace

	err := s.watch(ctx, func(tx *redis.Tx) error {
		ws := &store.Workspace{}
		if err := getJSON(ctx, tx, wsKey, ws); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, s.userKey(userID)); err != nil {
			return err
		}
		ws.UpdatedAt = s.now()
		data, err := json.Marshal(ws)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			edit(pipe)
			pipe.Set(ctx, wsKey, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = ws
		return nil
	}, wsKey)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// WorkspaceOwner returns the owner of the workspace.
func (s *Store) WorkspaceOwner(ctx context.Context, workspaceID int64) (*store.User, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, ws.OwnerID)
}

// WorkspaceUsers returns the users the workspace is shared with.
func (s *Store) WorkspaceUsers(ctx context.Context, workspaceID int64) ([]*store.User, error) {
	if err := mustExist(ctx, s.client, s.workspaceKey(workspaceID)); err != nil {
		return nil, err
	}
	return s.loadUsers(ctx, s.membersKey(workspaceID))
}

// WorkspaceItems returns the items of the workspace.
func (s *Store) WorkspaceItems(ctx context.Context, workspaceID int64) ([]*store.Item, error) {
	if err := mustExist(ctx, s.client, s.workspaceKey(workspaceID)); err != nil {
		return nil, err
	}
	ids, err := s.client.SMembers(ctx, s.itemsKey(workspaceID)).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("item", id)
	}
	items, err := mget[store.Item](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Item methods

// CreateItem saves an item in its workspace.
func (s *Store) CreateItem(ctx context.Context, item *store.Item) error {
	wsKey := s.workspaceKey(item.WorkspaceID)
	if item.Type == "" {
		item.Type = store.ItemTodo
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		if err := mustExist(ctx, tx, wsKey); err != nil {
			return err
		}
		id, err := tx.Incr(ctx, s.seqKey("item")).Result()
		if err != nil {
			return err
		}
		item.ID = id
		item.CreatedAt = s.now()
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.itemKey(id), data, 0)
			pipe.SAdd(ctx, s.itemsKey(item.WorkspaceID), id)
			return nil
		})
		return err
	}, wsKey)
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*store.Item, error) {
	item := &store.Item{}
	if err := getJSON(ctx, s.client, s.itemKey(id), item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemType changes the type of an item.
func (s *Store) UpdateItemType(ctx context.Context, id int64, t store.ItemType) (*store.Item, error) {
	key := s.itemKey(id)
	var updated *store.Item

	err := s.watch(ctx, func(tx *redis.Tx) error {
		item := &store.Item{}
		if err := getJSON(ctx, tx, key, item); err != nil {
			return err
		}
		item.Type = t
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = item
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) (*store.Item, error) {
	key := s.itemKey(id)
	var deleted *store.Item

	err := s.watch(ctx, func(tx *redis.Tx) error {
		item := &store.Item{}
		if err := getJSON(ctx, tx, key, item); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, s.itemsKey(item.WorkspaceID), id)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = item
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ItemWorkspace returns the workspace the item belongs to.
func (s *Store) ItemWorkspace(ctx context.Context, itemID int64) (*store.Workspace, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.GetWorkspace(ctx, item.WorkspaceID)
}

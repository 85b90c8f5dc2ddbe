// Package memory provides an in-memory store implementation for testing
// and single-process development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aloks98/workspaces/store"
)

// Store is an in-memory implementation of the store.Store interface.
type Store struct {
	mu sync.RWMutex

	users      map[string]*store.User
	emails     map[string]string // normalized email -> user ID
	workspaces map[int64]*store.Workspace
	items      map[int64]*store.Item
	shares     map[int64]map[string]struct{} // workspace ID -> user IDs

	nextWorkspaceID int64
	nextItemID      int64

	now    func() time.Time
	closed bool
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[string]*store.User),
		emails:     make(map[string]string),
		workspaces: make(map[int64]*store.Workspace),
		items:      make(map[int64]*store.Item),
		shares:     make(map[int64]map[string]struct{}),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is available.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

// CreateUser saves a user and its first workspace.
func (s *Store) CreateUser(ctx context.Context, user *store.User, ws *store.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	email := store.NormalizeEmail(user.Email)
	if _, ok := s.emails[email]; ok {
		return store.ErrDuplicateEmail
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	} else if _, ok := s.users[user.ID]; ok {
		return store.ErrDuplicateEmail
	}
	user.Email = email
	u := *user
	s.users[u.ID] = &u
	s.emails[email] = u.ID

	if ws != nil {
		ws.OwnerID = u.ID
		s.insertWorkspace(ws)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[store.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *s.users[id]
	return &out, nil
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*store.User, 0, len(s.users))
	for _, u := range s.users {
		out := *u
		users = append(users, &out)
	}
	sortUsers(users)
	return users, nil
}

// OwnedWorkspaces returns the workspaces owned by the user.
func (s *Store) OwnedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, store.ErrNotFound
	}
	var result []*store.Workspace
	for _, ws := range s.workspaces {
		if ws.OwnerID == userID {
			out := *ws
			result = append(result, &out)
		}
	}
	sortWorkspaces(result)
	return result, nil
}

// SharedWorkspaces returns the workspaces shared with the user.
func (s *Store) SharedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, store.ErrNotFound
	}
	var result []*store.Workspace
	for wsID, members := range s.shares {
		if _, ok := members[userID]; ok {
			out := *s.workspaces[wsID]
			result = append(result, &out)
		}
	}
	sortWorkspaces(result)
	return result, nil
}

// CreateWorkspace saves a workspace owned by the user with ownerEmail.
func (s *Store) CreateWorkspace(ctx context.Context, ws *store.Workspace, ownerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	ownerID, ok := s.emails[store.NormalizeEmail(ownerEmail)]
	if !ok {
		return store.ErrNotFound
	}
	ws.OwnerID = ownerID
	s.insertWorkspace(ws)
	return nil
}

// insertWorkspace assigns ID and timestamps. Caller must hold the write lock.
func (s *Store) insertWorkspace(ws *store.Workspace) {
	s.nextWorkspaceID++
	now := s.now()
	ws.ID = s.nextWorkspaceID
	ws.CreatedAt = now
	ws.UpdatedAt = now
	w := *ws
	s.workspaces[w.ID] = &w
}

// GetWorkspace retrieves a workspace by ID.
func (s *Store) GetWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *ws
	return &out, nil
}

// DeleteWorkspace removes a workspace, its items and its share memberships.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for itemID, item := range s.items {
		if item.WorkspaceID == id {
			delete(s.items, itemID)
		}
	}
	delete(s.shares, id)
	delete(s.workspaces, id)
	return ws, nil
}

// ShareWorkspace adds the user to the workspace's shared list.
func (s *Store) ShareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	ws, err := s.touchMembership(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	members, ok := s.shares[workspaceID]
	if !ok {
		members = make(map[string]struct{})
		s.shares[workspaceID] = members
	}
	members[userID] = struct{}{}
	out := *ws
	return &out, nil
}

// UnshareWorkspace removes the user from the workspace's shared list.
func (s *Store) UnshareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	ws, err := s.touchMembership(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if members, ok := s.shares[workspaceID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(s.shares, workspaceID)
		}
	}
	out := *ws
	return &out, nil
}

// touchMembership resolves both sides of a share edit and bumps UpdatedAt.
// Caller must hold the write lock.
func (s *Store) touchMembership(workspaceID int64, userID string) (*store.Workspace, error) {
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return nil, store.ErrNotFound
	}
	ws.UpdatedAt = s.now()
	return ws, nil
}

// WorkspaceOwner returns the owner of the workspace.
func (s *Store) WorkspaceOwner(ctx context.Context, workspaceID int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, store.ErrNotFound
	}
	u, ok := s.users[ws.OwnerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

// WorkspaceUsers returns the users the workspace is shared with.
func (s *Store) WorkspaceUsers(ctx context.Context, workspaceID int64) ([]*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.workspaces[workspaceID]; !ok {
		return nil, store.ErrNotFound
	}
	var users []*store.User
	for userID := range s.shares[workspaceID] {
		if u, ok := s.users[userID]; ok {
			out := *u
			users = append(users, &out)
		}
	}
	sortUsers(users)
	return users, nil
}

// WorkspaceItems returns the items of the workspace.
func (s *Store) WorkspaceItems(ctx context.Context, workspaceID int64) ([]*store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.workspaces[workspaceID]; !ok {
		return nil, store.ErrNotFound
	}
	var items []*store.Item
	for _, item := range s.items {
		if item.WorkspaceID == workspaceID {
			out := *item
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// CreateItem saves an item in its workspace.
func (s *Store) CreateItem(ctx context.Context, item *store.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if _, ok := s.workspaces[item.WorkspaceID]; !ok {
		return store.ErrNotFound
	}
	if item.Type == "" {
		item.Type = store.ItemTodo
	}
	s.nextItemID++
	item.ID = s.nextItemID
	item.CreatedAt = s.now()
	it := *item
	s.items[it.ID] = &it
	return nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *item
	return &out, nil
}

// UpdateItemType changes the type of an item.
func (s *Store) UpdateItemType(ctx context.Context, id int64, t store.ItemType) (*store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	item.Type = t
	out := *item
	return &out, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) (*store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.items, id)
	return item, nil
}

// ItemWorkspace returns the workspace the item belongs to.
func (s *Store) ItemWorkspace(ctx context.Context, itemID int64) (*store.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	ws, ok := s.workspaces[item.WorkspaceID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *ws
	return &out, nil
}

func sortUsers(users []*store.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
}

func sortWorkspaces(ws []*store.Workspace) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].ID < ws[j].ID })
}

package memory

import (
	"sort"

	"github.com/aloks98/workspaces/store"
)

// Share is a single workspace membership in a Snapshot.
type Share struct {
	WorkspaceID int64  `json:"workspace_id"`
	UserID      string `json:"user_id"`
}

// Snapshot is a serializable copy of the full store contents.
type Snapshot struct {
	Users           []store.User      `json:"users"`
	Workspaces      []store.Workspace `json:"workspaces"`
	Items           []store.Item      `json:"items"`
	Shares          []Share           `json:"shares"`
	NextWorkspaceID int64             `json:"next_workspace_id"`
	NextItemID      int64             `json:"next_item_id"`
}

// Snapshot returns a deep copy of the store contents in a stable order.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Users:           make([]store.User, 0, len(s.users)),
		Workspaces:      make([]store.Workspace, 0, len(s.workspaces)),
		Items:           make([]store.Item, 0, len(s.items)),
		NextWorkspaceID: s.nextWorkspaceID,
		NextItemID:      s.nextItemID,
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, *u)
	}
	for _, ws := range s.workspaces {
		snap.Workspaces = append(snap.Workspaces, *ws)
	}
	for _, item := range s.items {
		snap.Items = append(snap.Items, *item)
	}
	for wsID, members := range s.shares {
		for userID := range members {
			snap.Shares = append(snap.Shares, Share{WorkspaceID: wsID, UserID: userID})
		}
	}

	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].Email < snap.Users[j].Email })
	sort.Slice(snap.Workspaces, func(i, j int) bool { return snap.Workspaces[i].ID < snap.Workspaces[j].ID })
	sort.Slice(snap.Items, func(i, j int) bool { return snap.Items[i].ID < snap.Items[j].ID })
	sort.Slice(snap.Shares, func(i, j int) bool {
		if snap.Shares[i].WorkspaceID != snap.Shares[j].WorkspaceID {
			return snap.Shares[i].WorkspaceID < snap.Shares[j].WorkspaceID
		}
		return snap.Shares[i].UserID < snap.Shares[j].UserID
	})
	return snap
}

// Restore replaces the store contents with snap.
// Memberships and items that reference missing records are dropped.
func (s *Store) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*store.User, len(snap.Users))
	s.emails = make(map[string]string, len(snap.Users))
	s.workspaces = make(map[int64]*store.Workspace, len(snap.Workspaces))
	s.items = make(map[int64]*store.Item, len(snap.Items))
	s.shares = make(map[int64]map[string]struct{})
	s.nextWorkspaceID = snap.NextWorkspaceID
	s.nextItemID = snap.NextItemID

	for i := range snap.Users {
		u := snap.Users[i]
		u.Email = store.NormalizeEmail(u.Email)
		s.users[u.ID] = &u
		s.emails[u.Email] = u.ID
	}
	for i := range snap.Workspaces {
		ws := snap.Workspaces[i]
		if _, ok := s.users[ws.OwnerID]; !ok {
			continue
		}
		s.workspaces[ws.ID] = &ws
		if ws.ID > s.nextWorkspaceID {
			s.nextWorkspaceID = ws.ID
		}
	}
	for i := range snap.Items {
		item := snap.Items[i]
		if _, ok := s.workspaces[item.WorkspaceID]; !ok {
			continue
		}
		s.items[item.ID] = &item
		if item.ID > s.nextItemID {
			s.nextItemID = item.ID
		}
	}
	for _, sh := range snap.Shares {
		if _, ok := s.workspaces[sh.WorkspaceID]; !ok {
			continue
		}
		if _, ok := s.users[sh.UserID]; !ok {
			continue
		}
		members, ok := s.shares[sh.WorkspaceID]
		if !ok {
			members = make(map[string]struct{})
			s.shares[sh.WorkspaceID] = members
		}
		members[sh.UserID] = struct{}{}
	}
}

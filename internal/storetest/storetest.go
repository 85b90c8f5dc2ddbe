// Package storetest provides a conformance suite shared by every
// store.Store implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/aloks98/workspaces/store"
)

// Factory returns a fresh, migrated, empty store for a single subtest.
type Factory func(t *testing.T) store.Store

var emailSeq atomic.Int64

// uniqueEmail keeps subtests independent when a backend shares state
// between them (one SQL database, one Redis instance).
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, emailSeq.Add(1))
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Ping", testPing},
		{"CreateUser", testCreateUser},
		{"CreateUserDuplicateEmail", testCreateUserDuplicateEmail},
		{"CreateUserDuplicateID", testCreateUserDuplicateID},
		{"GetUserNotFound", testGetUserNotFound},
		{"ListUsers", testListUsers},
		{"CreateWorkspace", testCreateWorkspace},
		{"CreateWorkspaceUnknownOwner", testCreateWorkspaceUnknownOwner},
		{"ShareAndUnshare", testShareAndUnshare},
		{"ShareUnknown", testShareUnknown},
		{"Items", testItems},
		{"ItemsUnknownWorkspace", testItemsUnknownWorkspace},
		{"DeleteWorkspaceCascades", testDeleteWorkspaceCascades},
		{"DeleteWorkspaceNotFound", testDeleteWorkspaceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s store.Store, prefix string) (*store.User, *store.Workspace) {
	t.Helper()
	name := prefix
	u := &store.User{Name: &name, Email: uniqueEmail(prefix), PasswordHash: "hash"}
	ws := &store.Workspace{Title: "Shopping cart", Color: "#ACE4AA"}
	if err := s.CreateUser(context.Background(), u, ws); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u, ws
}

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func testCreateUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, ws := mustUser(t, s, "alice")

	if u.ID == "" {
		t.Fatal("CreateUser() did not assign an ID")
	}
	if ws.ID == 0 {
		t.Fatal("CreateUser() did not assign a workspace ID")
	}
	if ws.OwnerID != u.ID {
		t.Errorf("workspace OwnerID = %q, want %q", ws.OwnerID, u.ID)
	}
	if ws.CreatedAt.IsZero() || ws.UpdatedAt.IsZero() {
		t.Error("workspace timestamps not set")
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != u.Email || got.PasswordHash != "hash" {
		t.Errorf("GetUser() = %+v, want email %q", got, u.Email)
	}
	if got.Name == nil || *got.Name != "alice" {
		t.Errorf("GetUser() Name = %v, want alice", got.Name)
	}

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail() ID = %q, want %q", byEmail.ID, u.ID)
	}

	owned, err := s.OwnedWorkspaces(ctx, u.ID)
	if err != nil {
		t.Fatalf("OwnedWorkspaces() error = %v", err)
	}
	if len(owned) != 1 || owned[0].ID != ws.ID || owned[0].Title != "Shopping cart" {
		t.Errorf("OwnedWorkspaces() = %+v, want the default workspace", owned)
	}

	shared, err := s.SharedWorkspaces(ctx, u.ID)
	if err != nil {
		t.Fatalf("SharedWorkspaces() error = %v", err)
	}
	if len(shared) != 0 {
		t.Errorf("SharedWorkspaces() = %d workspaces, want 0", len(shared))
	}
}

func testCreateUserDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, _ := mustUser(t, s, "dup")

	again := &store.User{Email: u.Email, PasswordHash: "other"}
	err := s.CreateUser(ctx, again, &store.Workspace{Title: "x", Color: "y"})
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("CreateUser() duplicate error = %v, want ErrDuplicateEmail", err)
	}

	owned, err := s.OwnedWorkspaces(ctx, u.ID)
	if err != nil {
		t.Fatalf("OwnedWorkspaces() error = %v", err)
	}
	if len(owned) != 1 {
		t.Errorf("failed signup left %d workspaces, want 1", len(owned))
	}
}

func testCreateUserDuplicateID(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, _ := mustUser(t, s, "dupid")

	again := &store.User{ID: u.ID, Email: uniqueEmail("dupid-other"), PasswordHash: "other"}
	err := s.CreateUser(ctx, again, nil)
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("CreateUser() with taken ID error = %v, want ErrDuplicateEmail", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("existing user email = %q, want %q", got.Email, u.Email)
	}
	if _, err := s.GetUserByEmail(ctx, again.Email); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail(rejected email) error = %v, want ErrNotFound", err)
	}
}

func testGetUserNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.GetUser(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

func testListUsers(t *testing.T, s store.Store) {
	a, _ := mustUser(t, s, "list-a")
	b, _ := mustUser(t, s, "list-b")

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	found := map[string]bool{}
	for _, u := range users {
		found[u.ID] = true
	}
	if !found[a.ID] || !found[b.ID] {
		t.Errorf("ListUsers() missing created users, got %d users", len(users))
	}
}

func testCreateWorkspace(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, _ := mustUser(t, s, "creator")

	ws := &store.Workspace{Title: "Groceries", Color: "#FFFFFF"}
	if err := s.CreateWorkspace(ctx, ws, u.Email); err != nil {
		t.Fatalf("CreateWorkspace() error = %v", err)
	}
	if ws.OwnerID != u.ID {
		t.Errorf("OwnerID = %q, want %q", ws.OwnerID, u.ID)
	}

	got, err := s.GetWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("GetWorkspace() error = %v", err)
	}
	if got.Title != "Groceries" || got.Color != "#FFFFFF" {
		t.Errorf("GetWorkspace() = %+v", got)
	}

	owner, err := s.WorkspaceOwner(ctx, ws.ID)
	if err != nil {
		t.Fatalf("WorkspaceOwner() error = %v", err)
	}
	if owner.ID != u.ID {
		t.Errorf("WorkspaceOwner() = %q, want %q", owner.ID, u.ID)
	}

	owned, err := s.OwnedWorkspaces(ctx, u.ID)
	if err != nil {
		t.Fatalf("OwnedWorkspaces() error = %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("OwnedWorkspaces() = %d, want 2", len(owned))
	}
}

func testCreateWorkspaceUnknownOwner(t *testing.T, s store.Store) {
	err := s.CreateWorkspace(context.Background(), &store.Workspace{Title: "t", Color: "c"}, "ghost@example.com")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("CreateWorkspace() error = %v, want ErrNotFound", err)
	}
}

func testShareAndUnshare(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, ws := mustUser(t, s, "owner")
	guest, _ := mustUser(t, s, "guest")

	if _, err := s.ShareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("ShareWorkspace() error = %v", err)
	}
	// Sharing twice is a no-op.
	if _, err := s.ShareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("ShareWorkspace() second call error = %v", err)
	}

	users, err := s.WorkspaceUsers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("WorkspaceUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].ID != guest.ID {
		t.Fatalf("WorkspaceUsers() = %+v, want [guest]", users)
	}

	shared, err := s.SharedWorkspaces(ctx, guest.ID)
	if err != nil {
		t.Fatalf("SharedWorkspaces() error = %v", err)
	}
	if len(shared) != 1 || shared[0].ID != ws.ID {
		t.Fatalf("SharedWorkspaces() = %+v, want [%d]", shared, ws.ID)
	}

	if _, err := s.UnshareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("UnshareWorkspace() error = %v", err)
	}
	// Unsharing a non-member is a no-op.
	if _, err := s.UnshareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("UnshareWorkspace() second call error = %v", err)
	}

	users, err = s.WorkspaceUsers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("WorkspaceUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("WorkspaceUsers() after unshare = %d, want 0", len(users))
	}
}

func testShareUnknown(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, ws := mustUser(t, s, "share-unknown")

	if _, err := s.ShareWorkspace(ctx, ws.ID+100000, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ShareWorkspace() unknown workspace error = %v, want ErrNotFound", err)
	}
	if _, err := s.ShareWorkspace(ctx, ws.ID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ShareWorkspace() unknown user error = %v, want ErrNotFound", err)
	}
	if _, err := s.UnshareWorkspace(ctx, ws.ID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UnshareWorkspace() unknown user error = %v, want ErrNotFound", err)
	}
}

func testItems(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, ws := mustUser(t, s, "items")

	item := &store.Item{Name: "Buy milk", WorkspaceID: ws.ID}
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if item.ID == 0 || item.CreatedAt.IsZero() {
		t.Fatalf("CreateItem() did not fill ID/CreatedAt: %+v", item)
	}
	if item.Type != store.ItemTodo {
		t.Errorf("new item Type = %q, want TODO", item.Type)
	}

	updated, err := s.UpdateItemType(ctx, item.ID, store.ItemDone)
	if err != nil {
		t.Fatalf("UpdateItemType() error = %v", err)
	}
	if updated.Type != store.ItemDone || updated.Name != "Buy milk" {
		t.Errorf("UpdateItemType() = %+v", updated)
	}

	parent, err := s.ItemWorkspace(ctx, item.ID)
	if err != nil {
		t.Fatalf("ItemWorkspace() error = %v", err)
	}
	if parent.ID != ws.ID {
		t.Errorf("ItemWorkspace() = %d, want %d", parent.ID, ws.ID)
	}

	items, err := s.WorkspaceItems(ctx, ws.ID)
	if err != nil {
		t.Fatalf("WorkspaceItems() error = %v", err)
	}
	if len(items) != 1 || items[0].Type != store.ItemDone {
		t.Errorf("WorkspaceItems() = %+v", items)
	}

	deleted, err := s.DeleteItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if deleted.ID != item.ID {
		t.Errorf("DeleteItem() ID = %d, want %d", deleted.ID, item.ID)
	}
	if _, err := s.GetItem(ctx, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.DeleteItem(ctx, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteItem() twice error = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateItemType(ctx, item.ID, store.ItemFail); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateItemType() missing error = %v, want ErrNotFound", err)
	}
}

func testItemsUnknownWorkspace(t *testing.T, s store.Store) {
	err := s.CreateItem(context.Background(), &store.Item{Name: "orphan", WorkspaceID: 987654321})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("CreateItem() error = %v, want ErrNotFound", err)
	}
}

func testDeleteWorkspaceCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, ws := mustUser(t, s, "cascade")
	guest, _ := mustUser(t, s, "cascade-guest")

	item := &store.Item{Name: "gone", WorkspaceID: ws.ID}
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if _, err := s.ShareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("ShareWorkspace() error = %v", err)
	}

	deleted, err := s.DeleteWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("DeleteWorkspace() error = %v", err)
	}
	if deleted.ID != ws.ID || deleted.Title != ws.Title {
		t.Errorf("DeleteWorkspace() = %+v", deleted)
	}

	if _, err := s.GetWorkspace(ctx, ws.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetWorkspace() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetItem(ctx, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem() after cascade error = %v, want ErrNotFound", err)
	}
	shared, err := s.SharedWorkspaces(ctx, guest.ID)
	if err != nil {
		t.Fatalf("SharedWorkspaces() error = %v", err)
	}
	if len(shared) != 0 {
		t.Errorf("SharedWorkspaces() after cascade = %d, want 0", len(shared))
	}
}

func testDeleteWorkspaceNotFound(t *testing.T, s store.Store) {
	if _, err := s.DeleteWorkspace(context.Background(), 987654321); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteWorkspace() error = %v, want ErrNotFound", err)
	}
}

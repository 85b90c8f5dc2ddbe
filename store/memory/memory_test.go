package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aloks98/workspaces/internal/storetest"
	"github.com/aloks98/workspaces/store"
)

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	defer s.Close()
}

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s := New()
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestStore_PingAfterClose(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	u := &store.User{Email: "copy@example.com", PasswordHash: "h"}
	ws := &store.Workspace{Title: "t", Color: "c"}
	if err := s.CreateUser(ctx, u, ws); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, _ := s.GetWorkspace(ctx, ws.ID)
	got.Title = "mutated"

	again, _ := s.GetWorkspace(ctx, ws.ID)
	if again.Title != "t" {
		t.Errorf("stored workspace mutated through returned pointer: %q", again.Title)
	}
}

func TestStore_EmailCaseInsensitive(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateUser(ctx, &store.User{Email: "Mixed@Example.com"}, nil); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "mixed@example.com"); err != nil {
		t.Errorf("GetUserByEmail() error = %v", err)
	}
	err := s.CreateUser(ctx, &store.User{Email: "MIXED@example.com"}, nil)
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("CreateUser() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := New()
	ctx := context.Background()

	owner := &store.User{Email: "owner@example.com", PasswordHash: "h"}
	ws := &store.Workspace{Title: "Shopping cart", Color: "#ACE4AA"}
	if err := s.CreateUser(ctx, owner, ws); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	guest := &store.User{Email: "guest@example.com", PasswordHash: "h"}
	if err := s.CreateUser(ctx, guest, nil); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := s.ShareWorkspace(ctx, ws.ID, guest.ID); err != nil {
		t.Fatalf("ShareWorkspace() error = %v", err)
	}
	item := &store.Item{Name: "milk", WorkspaceID: ws.ID}
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	snap := s.Snapshot()

	restored := New()
	restored.Restore(snap)

	users, _ := restored.WorkspaceUsers(ctx, ws.ID)
	if len(users) != 1 || users[0].ID != guest.ID {
		t.Errorf("restored WorkspaceUsers() = %+v", users)
	}
	items, _ := restored.WorkspaceItems(ctx, ws.ID)
	if len(items) != 1 || items[0].Name != "milk" {
		t.Errorf("restored WorkspaceItems() = %+v", items)
	}

	// Sequences continue after the restored maximum.
	next := &store.Item{Name: "bread", WorkspaceID: ws.ID}
	if err := restored.CreateItem(ctx, next); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if next.ID <= item.ID {
		t.Errorf("next item ID = %d, want > %d", next.ID, item.ID)
	}
}

func TestStore_RestoreDropsDangling(t *testing.T) {
	s := New()
	s.Restore(&Snapshot{
		Workspaces: []store.Workspace{{ID: 1, Title: "orphan", OwnerID: "missing"}},
		Items:      []store.Item{{ID: 1, Name: "orphan", WorkspaceID: 1}},
		Shares:     []Share{{WorkspaceID: 1, UserID: "missing"}},
	})

	if _, err := s.GetWorkspace(context.Background(), 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetWorkspace() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetItem(context.Background(), 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem() error = %v, want ErrNotFound", err)
	}
}

// Package store defines the data access interface for workspaces.
package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by every Store implementation.
var (
	// ErrNotFound is returned when a lookup by id or natural key yields nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Store defines the interface for workspaces data persistence.
// All methods should be safe for concurrent use, and each call either
// fully succeeds or fails without partial writes.
type Store interface {
	// Lifecycle methods

	// Close releases any resources held by the store.
	Close() error

	// Ping verifies the store connection is alive.
	Ping(ctx context.Context) error

	// Migrate creates or updates the database schema.
	Migrate(ctx context.Context) error

	// User methods

	// CreateUser persists a new user together with its first workspace.
	// The workspace's OwnerID is set to the new user's ID. Both records
	// are written atomically; ErrDuplicateEmail is returned if the email
	// is taken or if user.ID is set and already belongs to a user. ID and
	// timestamp fields are filled in on success.
	CreateUser(ctx context.Context, user *User, ws *Workspace) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns all users ordered by email.
	ListUsers(ctx context.Context) ([]*User, error)

	// OwnedWorkspaces returns the workspaces owned by the user.
	OwnedWorkspaces(ctx context.Context, userID string) ([]*Workspace, error)

	// SharedWorkspaces returns the workspaces the user has been added to.
	SharedWorkspaces(ctx context.Context, userID string) ([]*Workspace, error)

	// Workspace methods

	// CreateWorkspace persists a workspace owned by the user with ownerEmail.
	// ErrNotFound is returned if no such user exists.
	CreateWorkspace(ctx context.Context, ws *Workspace, ownerEmail string) error

	// GetWorkspace retrieves a workspace by ID.
	GetWorkspace(ctx context.Context, id int64) (*Workspace, error)

	// DeleteWorkspace removes a workspace with its items and share
	// memberships and returns the deleted record.
	DeleteWorkspace(ctx context.Context, id int64) (*Workspace, error)

	// ShareWorkspace adds the user to the workspace's shared list.
	// Sharing with a user who is already a member is a no-op.
	ShareWorkspace(ctx context.Context, workspaceID int64, userID string) (*Workspace, error)

	// UnshareWorkspace removes the user from the workspace's shared list.
	// Removing a user who is not a member is a no-op.
	UnshareWorkspace(ctx context.Context, workspaceID int64, userID string) (*Workspace, error)

	// WorkspaceOwner returns the owner of the workspace.
	WorkspaceOwner(ctx context.Context, workspaceID int64) (*User, error)

	// WorkspaceUsers returns the users the workspace is shared with.
	WorkspaceUsers(ctx context.Context, workspaceID int64) ([]*User, error)

	// WorkspaceItems returns the items of the workspace.
	WorkspaceItems(ctx context.Context, workspaceID int64) ([]*Item, error)

	// Item methods

	// CreateItem persists an item in item.WorkspaceID.
	// ErrNotFound is returned if the workspace does not exist.
	CreateItem(ctx context.Context, item *Item) error

	// GetItem retrieves an item by ID.
	GetItem(ctx context.Context, id int64) (*Item, error)

	// UpdateItemType changes the type of an item and returns the updated record.
	UpdateItemType(ctx context.Context, id int64, t ItemType) (*Item, error)

	// DeleteItem removes an item and returns the deleted record.
	DeleteItem(ctx context.Context, id int64) (*Item, error)

	// ItemWorkspace returns the workspace the item belongs to.
	ItemWorkspace(ctx context.Context, itemID int64) (*Workspace, error)
}

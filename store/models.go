package store

import (
	"fmt"
	"strings"
	"time"
)

// ItemType is the lifecycle state of an item.
type ItemType string

const (
	// ItemTodo is the initial state of every new item.
	ItemTodo ItemType = "TODO"
	// ItemDone marks a finished item.
	ItemDone ItemType = "DONE"
	// ItemFail marks an item that was abandoned.
	ItemFail ItemType = "FAIL"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTodo, ItemDone, ItemFail:
		return true
	}
	return false
}

// ParseItemType converts a string to an ItemType.
// Matching is case-insensitive.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

// User represents a registered account.
type User struct {
	// ID is the stable internal identifier (UUID).
	ID string `db:"id" json:"id"`

	// Name is the optional display name.
	Name *string `db:"name" json:"name,omitempty"`

	// Email is the unique natural key used for login.
	Email string `db:"email" json:"email"`

	// PasswordHash is the bcrypt hash of the password.
	// It is never exposed through the GraphQL schema.
	PasswordHash string `db:"password" json:"password"`

	// Verified is the optional email verification flag.
	Verified *bool `db:"verified" json:"verified,omitempty"`
}

// Workspace is a titled, colored container of items owned by one user.
type Workspace struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Title     string    `db:"title" json:"title"`
	Color     string    `db:"color" json:"color"`

	// OwnerID is set once at creation and never reassigned.
	OwnerID string `db:"owner_id" json:"owner_id"`
}

// Item is a task record belonging to exactly one workspace.
type Item struct {
	ID          int64     `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Name        string    `db:"name" json:"name"`
	Type        ItemType  `db:"type" json:"type"`
	WorkspaceID int64     `db:"workspace_id" json:"workspace_id"`
}

// NormalizeEmail lowercases and trims an email address so that lookups
// by natural key are stable across backends.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

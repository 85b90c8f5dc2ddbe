package sql

import (
	"database/sql"
	"errors"

	"github.com/aloks98/workspaces/store"
)

var (
	userColumns      = []string{"id", "name", "email", "password", "verified"}
	workspaceColumns = []string{"id", "created_at", "updated_at", "title", "color", "owner_id"}
	itemColumns      = []string{"id", "created_at", "name", "type", "workspace_id"}
)

// qualify prefixes each column with a table alias.
func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func scanUser(row scanner) (*store.User, error) {
	u := &store.User{}
	var (
		name     sql.NullString
		verified sql.NullBool
	)
	if err := row.Scan(&u.ID, &name, &u.Email, &u.PasswordHash, &verified); err != nil {
		return nil, notFound(err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	if verified.Valid {
		u.Verified = &verified.Bool
	}
	return u, nil
}

func scanWorkspace(row scanner) (*store.Workspace, error) {
	ws := &store.Workspace{}
	if err := row.Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt, &ws.Title, &ws.Color, &ws.OwnerID); err != nil {
		return nil, notFound(err)
	}
	ws.CreatedAt = ws.CreatedAt.UTC()
	ws.UpdatedAt = ws.UpdatedAt.UTC()
	return ws, nil
}

func scanItem(row scanner) (*store.Item, error) {
	item := &store.Item{}
	var itemType string
	if err := row.Scan(&item.ID, &item.CreatedAt, &item.Name, &itemType, &item.WorkspaceID); err != nil {
		return nil, notFound(err)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.Type = store.ItemType(itemType)
	return item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

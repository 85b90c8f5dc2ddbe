// Package sql provides SQL database storage for workspaces.
package sql

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/aloks98/workspaces/store/sql/queries"
)

// Dialect represents a SQL database dialect.
type Dialect string

const (
	// PostgreSQL dialect.
	PostgreSQL Dialect = "postgres"
	// MySQL dialect.
	MySQL Dialect = "mysql"
)

// ParseDialect maps a configuration value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg", "pgx":
		return PostgreSQL, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return "", fmt.Errorf("sql: unknown dialect %q", s)
}

// driverName returns the database/sql driver name for the dialect.
func (d Dialect) driverName() string {
	switch d {
	case MySQL:
		return "mysql"
	default:
		return "pgx"
	}
}

// placeholder returns the bind parameter style for the dialect.
func (d Dialect) placeholder() squirrel.PlaceholderFormat {
	switch d {
	case MySQL:
		return squirrel.Question
	default:
		return squirrel.Dollar
	}
}

// tables holds the prefixed table names.
type tables struct {
	users      string
	workspaces string
	items      string
	members    string
}

func newTables(prefix string) tables {
	return tables{
		users:      prefix + "users",
		workspaces: prefix + "workspaces",
		items:      prefix + "items",
		members:    prefix + "workspace_users",
	}
}

// loadSchema returns the DDL for a dialect with the given table prefix.
func loadSchema(d Dialect, tablePrefix string) (string, error) {
	var (
		q   *queries.Queries
		err error
	)
	switch d {
	case MySQL:
		q, err = queries.LoadMySQL()
	default:
		q, err = queries.LoadPostgres()
	}
	if err != nil {
		return "", fmt.Errorf("sql: load %s schema: %w", d, err)
	}
	if tablePrefix == queries.TablePrefix {
		return q.Schema, nil
	}
	return strings.ReplaceAll(q.Schema, queries.TablePrefix, tablePrefix), nil
}

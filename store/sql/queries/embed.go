// Package queries embeds the DDL files for the SQL store.
package queries

import (
	"embed"
	"strings"
)

// PostgresFS embeds PostgreSQL schema files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// MySQLFS embeds MySQL schema files.
//
//go:embed mysql/*.sql
var MySQLFS embed.FS

// TablePrefix is the table prefix written in the SQL files.
const TablePrefix = "ws_"

// Queries holds the loaded SQL for one dialect.
type Queries struct {
	// Schema is the full DDL script.
	Schema string
}

// LoadPostgres loads PostgreSQL queries from embedded files.
func LoadPostgres() (*Queries, error) {
	return loadQueries(PostgresFS, "postgres")
}

// LoadMySQL loads MySQL queries from embedded files.
func LoadMySQL() (*Queries, error) {
	return loadQueries(MySQLFS, "mysql")
}

func loadQueries(fs embed.FS, dir string) (*Queries, error) {
	schema, err := fs.ReadFile(dir + "/schema.sql")
	if err != nil {
		return nil, err
	}
	return &Queries{Schema: string(schema)}, nil
}

// Statements splits a script into individual statements.
// The embedded scripts never contain semicolons inside literals.
func Statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

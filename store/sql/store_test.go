package sql

import (
	"context"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"

	"github.com/aloks98/workspaces/store/sql/queries"
)

func TestNew(t *testing.T) {
	// sql.Open doesn't validate the DSN until the first connection attempt.
	s, err := New(&Config{Dialect: PostgreSQL, DSN: ""})
	if err != nil {
		// Some drivers may error on empty DSN at Open time
		return
	}
	defer s.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected error when pinging with empty DSN")
	}
}

func TestNew_InvalidMySQLDSN(t *testing.T) {
	if _, err := New(&Config{Dialect: MySQL, DSN: "not a dsn"}); err == nil {
		t.Error("expected error for malformed mysql DSN")
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"postgres", PostgreSQL, false},
		{"PostgreSQL", PostgreSQL, false},
		{"pgx", PostgreSQL, false},
		{" mysql ", MySQL, false},
		{"mariadb", MySQL, false},
		{"sqlite", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDialect_DriverName(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		expected string
	}{
		{PostgreSQL, "pgx"},
		{MySQL, "mysql"},
		{Dialect("unknown"), "pgx"},
	}

	for _, tt := range tests {
		if got := tt.dialect.driverName(); got != tt.expected {
			t.Errorf("driverName(%v) = %q, want %q", tt.dialect, got, tt.expected)
		}
	}
}

func TestDialect_Placeholder(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{PostgreSQL, "SELECT id FROM ws_items WHERE workspace_id = $1"},
		{MySQL, "SELECT id FROM ws_items WHERE workspace_id = ?"},
	}

	for _, tt := range tests {
		sb := squirrel.StatementBuilder.PlaceholderFormat(tt.dialect.placeholder())
		got, _, err := sb.Select("id").From("ws_items").Where(squirrel.Eq{"workspace_id": 1}).ToSql()
		if err != nil {
			t.Fatalf("ToSql() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("%s: ToSql() = %q, want %q", tt.dialect, got, tt.want)
		}
	}
}

func TestLoadSchema(t *testing.T) {
	for _, d := range []Dialect{PostgreSQL, MySQL} {
		t.Run(string(d), func(t *testing.T) {
			schema, err := loadSchema(d, queries.TablePrefix)
			if err != nil {
				t.Fatalf("loadSchema() error = %v", err)
			}
			for _, table := range []string{"ws_users", "ws_workspaces", "ws_items", "ws_workspace_users"} {
				if !strings.Contains(schema, table) {
					t.Errorf("schema missing table %s", table)
				}
			}
			if !strings.Contains(schema, "ON DELETE CASCADE") {
				t.Error("schema should cascade deletes")
			}
		})
	}
}

func TestLoadSchema_CustomPrefix(t *testing.T) {
	schema, err := loadSchema(PostgreSQL, "myapp_")
	if err != nil {
		t.Fatalf("loadSchema() error = %v", err)
	}
	if strings.Contains(schema, "ws_") {
		t.Error("custom prefix should replace every default prefix")
	}
	if !strings.Contains(schema, "myapp_workspace_users") {
		t.Error("schema missing prefixed membership table")
	}
	if !strings.Contains(schema, "workspace_id") {
		t.Error("prefix replacement must leave column names intact")
	}
}

func TestStatements(t *testing.T) {
	got := queries.Statements("CREATE TABLE a (id INT);\n\n  CREATE INDEX b ON a(id);\n;")
	if len(got) != 2 {
		t.Fatalf("Statements() = %d statements, want 2: %q", len(got), got)
	}
	if got[1] != "CREATE INDEX b ON a(id)" {
		t.Errorf("Statements()[1] = %q", got[1])
	}
}

func TestNewTables(t *testing.T) {
	tb := newTables("test_")
	if tb.users != "test_users" || tb.workspaces != "test_workspaces" ||
		tb.items != "test_items" || tb.members != "test_workspace_users" {
		t.Errorf("newTables() = %+v", tb)
	}
}

func TestQualify(t *testing.T) {
	got := qualify("w", []string{"id", "title"})
	if len(got) != 2 || got[0] != "w.id" || got[1] != "w.title" {
		t.Errorf("qualify() = %v", got)
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/db")
	if err != nil {
		t.Fatalf("mysqlDSN() error = %v", err)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("mysqlDSN() = %q, want parseTime=true", dsn)
	}
}

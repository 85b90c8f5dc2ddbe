package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/aloks98/workspaces/store"
	"github.com/aloks98/workspaces/store/sql/queries"
)

// Store implements store.Store using a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	schema  string
	t       tables
	sb      squirrel.StatementBuilderType
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// Config holds SQL store configuration.
type Config struct {
	// Dialect specifies the database type (postgres, mysql).
	Dialect Dialect

	// DB is an existing database connection.
	// If provided, DSN is ignored.
	DB *sql.DB

	// DSN is the data source name for connecting to the database.
	DSN string

	// TablePrefix is the prefix for all table names.
	// Defaults to "ws_" if empty.
	// Example: "myapp_" creates tables like "myapp_workspaces".
	TablePrefix string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration
}

// New creates a new SQL store.
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = PostgreSQL
	}

	tablePrefix := cfg.TablePrefix
	if tablePrefix == "" {
		tablePrefix = queries.TablePrefix
	}
	schema, err := loadSchema(dialect, tablePrefix)
	if err != nil {
		return nil, err
	}

	db := cfg.DB
	if db == nil {
		dsn := cfg.DSN
		if dialect == MySQL {
			if dsn, err = mysqlDSN(dsn); err != nil {
				return nil, fmt.Errorf("sql: invalid mysql dsn: %w", err)
			}
		}
		db, err = sql.Open(dialect.driverName(), dsn)
		if err != nil {
			return nil, err
		}

		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	return &Store{
		db:      db,
		dialect: dialect,
		schema:  schema,
		t:       newTables(tablePrefix),
		sb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		// Both backends store microseconds.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the database schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range queries.Statements(s.schema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sql: migrate: %w", err)
		}
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func exec(ctx context.Context, q querier, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, query, args...)
}

func queryRow(ctx context.Context, q querier, b squirrel.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

func query(ctx context.Context, q querier, b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryContext(ctx, query, args...)
}

// insertID runs an insert and returns the generated primary key.
func (s *Store) insertID(ctx context.Context, q querier, b squirrel.InsertBuilder) (int64, error) {
	if s.dialect == MySQL {
		res, err := exec(ctx, q, b)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	row, err := queryRow(ctx, q, b.Suffix("RETURNING id"))
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// exists reports whether table has a row matching where.
func (s *Store) exists(ctx context.Context, q querier, table string, where squirrel.Eq) (bool, error) {
	row, err := queryRow(ctx, q, s.sb.Select("1").From(table).Where(where).Limit(1))
	if err != nil {
		return false, err
	}
	var one int
	switch err := row.Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *Store) mustExist(ctx context.Context, q querier, table string, where squirrel.Eq) error {
	ok, err := s.exists(ctx, q, table, where)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) isUniqueViolation(err error) bool {
	if s.dialect == MySQL {
		return mysqlErrorNumber(err) == mysqlDuplicateEntry
	}
	return pgErrorCode(err) == pgUniqueViolation
}

func (s *Store) isForeignKeyViolation(err error) bool {
	if s.dialect == MySQL {
		n := mysqlErrorNumber(err)
		return n == mysqlNoReferencedRow || n == mysqlNoReferencedRow1
	}
	return pgErrorCode(err) == pgForeignKeyViolation
}

// User methods

// CreateUser saves a user and its first workspace in one transaction.
func (s *Store) CreateUser(ctx context.Context, user *store.User, ws *store.Workspace) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = store.NormalizeEmail(user.Email)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := exec(ctx, tx, s.sb.Insert(s.t.users).
			Columns(userColumns...).
			Values(user.ID, nullString(user.Name), user.Email, user.PasswordHash, nullBool(user.Verified)))
		if err != nil {
			if s.isUniqueViolation(err) {
				return store.ErrDuplicateEmail
			}
			return err
		}
		if ws == nil {
			return nil
		}
		ws.OwnerID = user.ID
		return s.insertWorkspace(ctx, tx, ws)
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, s.db, squirrel.Eq{"id": id})
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, s.db, squirrel.Eq{"email": store.NormalizeEmail(email)})
}

func (s *Store) getUser(ctx context.Context, q querier, where squirrel.Eq) (*store.User, error) {
	row, err := queryRow(ctx, q, s.sb.Select(userColumns...).From(s.t.users).Where(where))
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]*store.User, error) {
	return s.listUsers(ctx, s.sb.Select(userColumns...).From(s.t.users).OrderBy("email"))
}

func (s *Store) listUsers(ctx context.Context, b squirrel.SelectBuilder) ([]*store.User, error) {
	rows, err := query(ctx, s.db, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// OwnedWorkspaces returns the workspaces owned by the user.
func (s *Store) OwnedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	if err := s.mustExist(ctx, s.db, s.t.users, squirrel.Eq{"id": userID}); err != nil {
		return nil, err
	}
	return s.listWorkspaces(ctx, s.sb.Select(workspaceColumns...).
		From(s.t.workspaces).
		Where(squirrel.Eq{"owner_id": userID}).
		OrderBy("id"))
}

// SharedWorkspaces returns the workspaces shared with the user.
func (s *Store) SharedWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	if err := s.mustExist(ctx, s.db, s.t.users, squirrel.Eq{"id": userID}); err != nil {
		return nil, err
	}
	return s.listWorkspaces(ctx, s.sb.Select(qualify("w", workspaceColumns)...).
		From(s.t.workspaces+" w").
		Join(s.t.members+" m ON m.workspace_id = w.id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("w.id"))
}

func (s *Store) listWorkspaces(ctx context.Context, b squirrel.SelectBuilder) ([]*store.Workspace, error) {
	rows, err := query(ctx, s.db, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*store.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, rows.Err()
}

// Workspace methods

// CreateWorkspace saves a workspace owned by the user with ownerEmail.
func (s *Store) CreateWorkspace(ctx context.Context, ws *store.Workspace, ownerEmail string) error {
	owner, err := s.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		return err
	}
	ws.OwnerID = owner.ID
	err = s.insertWorkspace(ctx, s.db, ws)
	if s.isForeignKeyViolation(err) {
		// Owner removed between lookup and insert.
		return store.ErrNotFound
	}
	return err
}

func (s *Store) insertWorkspace(ctx context.Context, q querier, ws *store.Workspace) error {
	now := s.now()
	id, err := s.insertID(ctx, q, s.sb.Insert(s.t.workspaces).
		Columns("created_at", "updated_at", "title", "color", "owner_id").
		Values(now, now, ws.Title, ws.Color, ws.OwnerID))
	if err != nil {
		return err
	}
	ws.ID = id
	ws.CreatedAt = now
	ws.UpdatedAt = now
	return nil
}

// GetWorkspace retrieves a workspace by ID.
func (s *Store) GetWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	return s.getWorkspace(ctx, s.db, id)
}

func (s *Store) getWorkspace(ctx context.Context, q querier, id int64) (*store.Workspace, error) {
	row, err := queryRow(ctx, q, s.sb.Select(workspaceColumns...).
		From(s.t.workspaces).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	return scanWorkspace(row)
}

// DeleteWorkspace removes a workspace, its items and its share memberships.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) (*store.Workspace, error) {
	var deleted *store.Workspace
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ws, err := s.getWorkspace(ctx, tx, id)
		if err != nil {
			return err
		}
		// The foreign keys cascade too; explicit deletes keep the
		// behavior independent of how the schema was created.
		if _, err := exec(ctx, tx, s.sb.Delete(s.t.items).Where(squirrel.Eq{"workspace_id": id})); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, s.sb.Delete(s.t.members).Where(squirrel.Eq{"workspace_id": id})); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, s.sb.Delete(s.t.workspaces).Where(squirrel.Eq{"id": id})); err != nil {
			return err
		}
		deleted = ws
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ShareWorkspace adds the user to the workspace's shared list.
func (s *Store) ShareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return s.editMembership(ctx, workspaceID, userID, func(tx *sql.Tx) error {
		insert := s.sb.Insert(s.t.members).
			Columns("workspace_id", "user_id").
			Values(workspaceID, userID)
		if s.dialect == MySQL {
			insert = insert.Options("IGNORE")
		} else {
			insert = insert.Suffix("ON CONFLICT DO NOTHING")
		}
		_, err := exec(ctx, tx, insert)
		return err
	})
}

// UnshareWorkspace removes the user from the workspace's shared list.
func (s *Store) UnshareWorkspace(ctx context.Context, workspaceID int64, userID string) (*store.Workspace, error) {
	return s.editMembership(ctx, workspaceID, userID, func(tx *sql.Tx) error {
		_, err := exec(ctx, tx, s.sb.Delete(s.t.members).
			Where(squirrel.Eq{"workspace_id": workspaceID, "user_id": userID}))
		return err
	})
}

// editMembership checks both sides of a share edit, applies edit and
// bumps the workspace's updated_at, all in one transaction.
func (s *Store) editMembership(ctx context.Context, workspaceID int64, userID string, edit func(tx *sql.Tx) error) (*store.Workspace, error) {
	var ws *store.Workspace
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.mustExist(ctx, tx, s.t.workspaces, squirrel.Eq{"id": workspaceID}); err != nil {
			return err
		}
		if err := s.mustExist(ctx, tx, s.t.users, squirrel.Eq{"id": userID}); err != nil {
			return err
		}
		if err := edit(tx); err != nil {
			return err
		}
		_, err := exec(ctx, tx, s.sb.Update(s.t.workspaces).
			Set("updated_at", s.now()).
			Where(squirrel.Eq{"id": workspaceID}))
		if err != nil {
			return err
		}
		ws, err = s.getWorkspace(ctx, tx, workspaceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// WorkspaceOwner returns the owner of the workspace.
func (s *Store) WorkspaceOwner(ctx context.Context, workspaceID int64) (*store.User, error) {
	row, err := queryRow(ctx, s.db, s.sb.Select(qualify("u", userColumns)...).
		From(s.t.users+" u").
		Join(s.t.workspaces+" w ON w.owner_id = u.id").
		Where(squirrel.Eq{"w.id": workspaceID}))
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// WorkspaceUsers returns the users the workspace is shared with.
func (s *Store) WorkspaceUsers(ctx context.Context, workspaceID int64) ([]*store.User, error) {
	if err := s.mustExist(ctx, s.db, s.t.workspaces, squirrel.Eq{"id": workspaceID}); err != nil {
		return nil, err
	}
	return s.listUsers(ctx, s.sb.Select(qualify("u", userColumns)...).
		From(s.t.users+" u").
		Join(s.t.members+" m ON m.user_id = u.id").
		Where(squirrel.Eq{"m.workspace_id": workspaceID}).
		OrderBy("u.email"))
}

// WorkspaceItems returns the items of the workspace.
func (s *Store) WorkspaceItems(ctx context.Context, workspaceID int64) ([]*store.Item, error) {
	if err := s.mustExist(ctx, s.db, s.t.workspaces, squirrel.Eq{"id": workspaceID}); err != nil {
		return nil, err
	}
	rows, err := query(ctx, s.db, s.sb.Select(itemColumns...).
		From(s.t.items).
		Where(squirrel.Eq{"workspace_id": workspaceID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*store.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Item methods

// CreateItem saves an item in its workspace.
func (s *Store) CreateItem(ctx context.Context, item *store.Item) error {
	if item.Type == "" {
		item.Type = store.ItemTodo
	}
	now := s.now()
	id, err := s.insertID(ctx, s.db, s.sb.Insert(s.t.items).
		Columns("created_at", "name", "type", "workspace_id").
		Values(now, item.Name, string(item.Type), item.WorkspaceID))
	if err != nil {
		if s.isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return err
	}
	item.ID = id
	item.CreatedAt = now
	return nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*store.Item, error) {
	return s.getItem(ctx, s.db, id)
}

func (s *Store) getItem(ctx context.Context, q querier, id int64) (*store.Item, error) {
	row, err := queryRow(ctx, q, s.sb.Select(itemColumns...).
		From(s.t.items).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	return scanItem(row)
}

// UpdateItemType changes the type of an item.
func (s *Store) UpdateItemType(ctx context.Context, id int64, t store.ItemType) (*store.Item, error) {
	var updated *store.Item
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// MySQL reports zero affected rows when the value is unchanged,
		// so existence is checked by reading the row back.
		_, err := exec(ctx, tx, s.sb.Update(s.t.items).
			Set("type", string(t)).
			Where(squirrel.Eq{"id": id}))
		if err != nil {
			return err
		}
		updated, err = s.getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) (*store.Item, error) {
	var deleted *store.Item
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := s.getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, s.sb.Delete(s.t.items).Where(squirrel.Eq{"id": id})); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ItemWorkspace returns the workspace the item belongs to.
func (s *Store) ItemWorkspace(ctx context.Context, itemID int64) (*store.Workspace, error) {
	row, err := queryRow(ctx, s.db, s.sb.Select(qualify("w", workspaceColumns)...).
		From(s.t.workspaces+" w").
		Join(s.t.items+" i ON i.workspace_id = w.id").
		Where(squirrel.Eq{"i.id": itemID}))
	if err != nil {
		return nil, err
	}
	return scanWorkspace(row)
}

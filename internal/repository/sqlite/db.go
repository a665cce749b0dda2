// Package sqlite stores folders and resources in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const currentSchemaVersion = 1

// timeLayout is fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000Z"

// pragmas are applied to every connection through the DSN
var pragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
}

// maxChildQueryArgs caps the parent ids bound into a single IN (...) list
const maxChildQueryArgs = 500

func init() {
	// LIKE and lower() only fold ASCII; name search goes through Go's case mapping instead
	if err := sqlite.RegisterDeterministicScalarFunction("go_lower", 1, goLower); err != nil {
		panic(fmt.Sprintf("register go_lower: %v", err))
	}
}

func goLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DB is an open SQLite database with the folder/resource schema applied
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and migrates it
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	query := url.Values{}
	for _, p := range pragmas {
		query.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One writer at a time; transactions hold the only connection
	db.SetMaxOpenConns(1)

	d := &DB{db: db, path: path}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// ClearData removes every folder and resource
func (d *DB) ClearData(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM resources; DELETE FROM folders;`)
	if err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

// migrate runs database migrations.
func (d *DB) migrate() error {
	var version int
	if err := d.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := d.migrateV1(); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (d *DB) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT,
			FOREIGN KEY (parent_id) REFERENCES folders(id)
		);

		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);
		CREATE INDEX IF NOT EXISTS idx_folders_name ON folders(name COLLATE NOCASE);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY NOT NULL,
			folder_id TEXT,
			name TEXT NOT NULL,
			description TEXT,
			kind TEXT NOT NULL,
			code_language TEXT,
			value TEXT,
			favorite INTEGER NOT NULL DEFAULT 0,
			created_on TEXT NOT NULL,
			FOREIGN KEY (folder_id) REFERENCES folders(id)
		);

		CREATE INDEX IF NOT EXISTS idx_resources_folder_id ON resources(folder_id);
		CREATE INDEX IF NOT EXISTS idx_resources_favorite ON resources(favorite) WHERE favorite = 1;
		CREATE INDEX IF NOT EXISTS idx_resources_created_on ON resources(created_on DESC);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := d.db.Exec(schema)
	return err
}

// executor is satisfied by both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txContextKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx
}

// conn returns the transaction in ctx, or the database when there is none
func (d *DB) conn(ctx context.Context) executor {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return d.db
}

func isForeignKeyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	// Some builds report only the primary result code
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching query as a literal substring.
// The query is lowered to match the go_lower(name) side of the comparison.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// placeholders returns "?, ?, ..." with n entries
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

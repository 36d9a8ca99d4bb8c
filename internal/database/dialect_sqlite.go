package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLiteDialect implements Dialect for SQLite through either mattn/go-sqlite3
// (cgo) or modernc.org/sqlite (pure Go).
type SQLiteDialect struct {
	pure bool
}

// NewSQLiteDialect returns the cgo-backed dialect.
func NewSQLiteDialect() *SQLiteDialect { return &SQLiteDialect{} }

// NewPureSQLiteDialect returns the dialect backed by modernc.org/sqlite.
func NewPureSQLiteDialect() *SQLiteDialect { return &SQLiteDialect{pure: true} }

func (d *SQLiteDialect) Name() string {
	if d.pure {
		return "sqlite-pure"
	}
	return "sqlite"
}

func (d *SQLiteDialect) DriverName() string {
	if d.pure {
		return "sqlite"
	}
	return "sqlite3"
}

// DSN ensures the parent directory exists for paths like ./data/app.db and
// adds a busy timeout + WAL journaling in each driver's syntax.
func (d *SQLiteDialect) DSN(cfg Config) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("sqlite: empty database path")
	}
	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if d.pure {
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)", nil
	}
	return cfg.Path + "?_busy_timeout=5000&_journal_mode=WAL", nil
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		return fmt.Errorf("set pragmas: %w", err)
	}
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string { return "sqlite" }

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`
}

func (d *SQLiteDialect) Rebind(query string) string { return query }

func (d *SQLiteDialect) Upsert(table string, cols, keys, update []string) string {
	return onConflictUpsert(table, cols, keys, update)
}

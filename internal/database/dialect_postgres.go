package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect { return &PostgresDialect{} }

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(cfg Config) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("postgres: DATABASE_URL is required")
	}
	return cfg.URL, nil
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string { return "postgres" }

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`
}

// Rebind converts ? to $1, $2, ...
func (d *PostgresDialect) Rebind(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) Upsert(table string, cols, keys, update []string) string {
	return onConflictUpsert(table, cols, keys, update)
}

// internal/database/db.go
//
// Database helpers for the YGOdle server.
// Responsibilities:
//   - Opening the configured backend (SQLite by default, PostgreSQL or MySQL)
//     with safe defaults (WAL and busy timeout on SQLite, bounded pools elsewhere).
//   - Rewriting ? placeholders for backends that need numbered parameters.
//   - Applying embedded migrations (see migrate.go).
//
// Queries in this repository are written with ? placeholders and go through
// DB.ExecContext / QueryContext / QueryRowContext, which rebind them.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// DB wraps *sql.DB with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor maps a DB_TYPE value to its dialect.
func DialectFor(kind string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	case "sqlite-pure", "modernc":
		return NewPureSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", kind)
	}
}

// Open opens and pings the database described by cfg.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name(), err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure %s: %w", dialect.Name(), err)
	}
	log.Debug().Str("dialect", dialect.Name()).Msg("database opened")
	return &DB{DB: db, Dialect: dialect}, nil
}

// ExecContext runs a statement written with ? placeholders.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.Rebind(query), args...)
}

// QueryContext runs a query written with ? placeholders.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.Rebind(query), args...)
}

// QueryRowContext runs a single-row query written with ? placeholders.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.Rebind(query), args...)
}

// Upsert is a shortcut for Dialect.Upsert.
func (db *DB) Upsert(table string, cols, keys, update []string) string {
	return db.Dialect.Upsert(table, cols, keys, update)
}

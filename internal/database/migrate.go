package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

/**
 * Migrate applies embedded SQL migrations for the active dialect.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each migrations/<dialect>/*.sql file in lexical order.
 * - Skips files already applied.
 * - Each file runs in its own transaction, one statement at a time
 *   (MySQL does not accept multi-statement Exec by default).
 */
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.DB.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	dir := path.Join("migrations", db.Dialect.MigrationsSubdir())
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name = ?`, name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationsFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := db.applyMigration(ctx, name, string(body)); err != nil {
			return err
		}
		log.Info().Str("migration", name).Str("dialect", db.Dialect.Name()).Msg("applied")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, name, body string) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(body) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, db.Dialect.Rebind(`INSERT INTO _migrations (name) VALUES (?)`), name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// splitStatements splits a migration file on semicolons and drops
// comment-only fragments. Migration files must not contain literal ';'.
func splitStatements(body string) []string {
	var out []string
	for _, part := range strings.Split(body, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return out
}

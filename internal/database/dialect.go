package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect hides the differences between the supported SQL backends.
type Dialect interface {
	// Name is the DB_TYPE value that selects this dialect.
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(cfg Config) (string, error)

	// ConfigureConnection applies pool settings and pragmas after opening.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir selects migrations/<subdir>/*.sql.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery creates the applied-migrations ledger.
	CreateMigrationsTableQuery() string

	// Rebind converts ? placeholders if the driver needs another syntax.
	Rebind(query string) string

	// Upsert builds an INSERT that updates the update columns when a row
	// with the same keys exists. With no update columns the INSERT is
	// silently skipped instead.
	Upsert(table string, cols, keys, update []string) string
}

// Config selects and locates the database.
type Config struct {
	Type string // sqlite | sqlite-pure | postgres | mysql
	Path string // SQLite file path
	URL  string // PostgreSQL/MySQL DSN
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func insertPrefix(table string, cols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")"
}

// onConflictUpsert is the SQLite/PostgreSQL flavour.
func onConflictUpsert(table string, cols, keys, update []string) string {
	q := insertPrefix(table, cols) + " ON CONFLICT (" + strings.Join(keys, ", ") + ")"
	if len(update) == 0 {
		return q + " DO NOTHING"
	}
	sets := make([]string, len(update))
	for i, c := range update {
		sets[i] = c + " = excluded." + c
	}
	return q + " DO UPDATE SET " + strings.Join(sets, ", ")
}

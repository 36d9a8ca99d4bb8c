package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect { return &MySQLDialect{} }

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

func (d *MySQLDialect) DSN(cfg Config) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("mysql: DATABASE_URL is required")
	}
	return cfg.URL, nil
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string { return "mysql" }

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name VARCHAR(255) PRIMARY KEY)`
}

func (d *MySQLDialect) Rebind(query string) string { return query }

func (d *MySQLDialect) Upsert(table string, cols, keys, update []string) string {
	if len(update) == 0 {
		return strings.Replace(insertPrefix(table, cols), "INSERT INTO", "INSERT IGNORE INTO", 1)
	}
	sets := make([]string, len(update))
	for i, c := range update {
		sets[i] = c + " = VALUES(" + c + ")"
	}
	return insertPrefix(table, cols) + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

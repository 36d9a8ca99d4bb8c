package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/ygodle/internal/database"
)

// timeLayout is fixed-width so updated_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// SQLStore persists blobs in the kv_store table.
type SQLStore struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLStore wraps an opened, migrated database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM kv_store WHERE storage_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return []byte(payload), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	q := s.db.Upsert("kv_store",
		[]string{"storage_key", "payload", "updated_at"},
		[]string{"storage_key"},
		[]string{"payload", "updated_at"},
	)
	if _, err := s.db.ExecContext(ctx, q, key, string(value), s.now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// DeleteIdle removes every blob not written since cutoff and reports how
// many rows went away. Used to forget devices that stopped playing.
func (s *SQLStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE updated_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("kv delete idle: %w", err)
	}
	return res.RowsAffected()
}

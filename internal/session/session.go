// Package session records, per device and per mode, whether today's game
// has been started or finished and how many attempts were made.
//
// The whole record set lives in one JSON blob (mode → Record). A record
// whose day key differs from the current one is stale: it is replaced by
// StartIfNewDay, ignored by RecordAttempt and eventually pruned.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/dayclock"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/store"
)

// BlobKey is the storage key of the session blob.
const BlobKey = "ygodle_user_session"

// Record is one mode's session for one game day.
type Record struct {
	DayKey    string `json:"date"`
	Completed bool   `json:"completed"`
	Won       bool   `json:"won"`
	Attempts  int    `json:"attempts"`
}

// Store reads and writes the session blob.
type Store struct {
	kv store.Store
}

// New returns a session store over kv (usually a per-device namespace).
func New(kv store.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the stored record for mode, or nil. Callers compare the
// record's DayKey with today's to decide whether it is current.
func (s *Store) Load(ctx context.Context, mode game.Mode) (*Record, error) {
	recs, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := recs[mode]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// HasPlayed reports whether mode's game for dayKey is already finished.
func (s *Store) HasPlayed(ctx context.Context, mode game.Mode, dayKey string) (bool, error) {
	rec, err := s.Load(ctx, mode)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.DayKey == dayKey && rec.Completed, nil
}

// StartIfNewDay installs a fresh record for dayKey unless one already
// exists for that day.
func (s *Store) StartIfNewDay(ctx context.Context, mode game.Mode, dayKey string) error {
	recs, err := s.read(ctx)
	if err != nil {
		return err
	}
	if rec, ok := recs[mode]; ok && rec.DayKey == dayKey {
		return nil
	}
	recs[mode] = Record{DayKey: dayKey}
	return s.write(ctx, recs)
}

// RecordAttempt bumps the attempt counter of the current record. Calls for
// another day, or with no record at all, are ignored.
func (s *Store) RecordAttempt(ctx context.Context, mode game.Mode, dayKey string) error {
	recs, err := s.read(ctx)
	if err != nil {
		return err
	}
	rec, ok := recs[mode]
	if !ok || rec.DayKey != dayKey {
		return nil
	}
	rec.Attempts++
	recs[mode] = rec
	return s.write(ctx, recs)
}

// Complete marks mode's game for dayKey as finished, overwriting whatever
// was stored.
func (s *Store) Complete(ctx context.Context, mode game.Mode, dayKey string, won bool, attempts int) error {
	recs, err := s.read(ctx)
	if err != nil {
		return err
	}
	recs[mode] = Record{DayKey: dayKey, Completed: true, Won: won, Attempts: attempts}
	return s.write(ctx, recs)
}

// Prune drops records older than todayKey minus retentionDays. Records
// with an unreadable day key are dropped too.
func (s *Store) Prune(ctx context.Context, todayKey string, retentionDays int) error {
	cutoff, err := dayclock.ShiftKey(todayKey, -retentionDays)
	if err != nil {
		return err
	}
	recs, err := s.read(ctx)
	if err != nil {
		return err
	}
	changed := false
	for mode, rec := range recs {
		if _, perr := dayclock.ParseKey(rec.DayKey); perr != nil || rec.DayKey < cutoff {
			delete(recs, mode)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(ctx, recs)
}

// Reset forgets every session on this device.
func (s *Store) Reset(ctx context.Context) error {
	return s.kv.Delete(ctx, BlobKey)
}

// blob is the persisted shape; playedToday mirrors the web client's layout.
type blob struct {
	PlayedToday map[game.Mode]Record `json:"playedToday"`
}

// read loads the blob. Missing or unparseable data yields an empty map;
// only storage failures are returned.
func (s *Store) read(ctx context.Context) (map[game.Mode]Record, error) {
	raw, err := s.kv.Get(ctx, BlobKey)
	if errors.Is(err, store.ErrNotFound) {
		return map[game.Mode]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		log.Warn().Err(err).Msg("session: invalid data, starting fresh")
		return map[game.Mode]Record{}, nil
	}
	if b.PlayedToday == nil {
		b.PlayedToday = map[game.Mode]Record{}
	}
	return b.PlayedToday, nil
}

func (s *Store) write(ctx context.Context, recs map[game.Mode]Record) error {
	raw, err := json.Marshal(blob{PlayedToday: recs})
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.kv.Set(ctx, BlobKey, raw); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

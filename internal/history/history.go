// Package history keeps the ordered list of scored attempts for each
// (mode, secret card, day) so a reload restores the exact board.
//
// Persisted as one JSON blob: mode → card id → Record. Only a record whose
// day key matches the caller's is ever returned; anything else is stale.
// The attempt list is append-only and is never reordered or deduplicated.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/dayclock"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/store"
)

// BlobKey is the storage key of the history blob.
const BlobKey = "ygodle_guess_history"

// ErrGameOver is returned when appending to a finished game's record.
var ErrGameOver = errors.New("history: game already over")

// Record is the stored history of one card on one day.
type Record struct {
	DayKey      string         `json:"date"`
	CardID      int            `json:"cardId"`
	Attempts    []game.Attempt `json:"attempts"`
	GameOver    bool           `json:"gameOver"`
	GameWon     bool           `json:"gameWon"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// State is what a client needs to redraw a board.
type State struct {
	Attempts []game.Attempt `json:"attempts"`
	GameOver bool           `json:"gameOver"`
	GameWon  bool           `json:"gameWon"`
}

// Summary aggregates every stored record on the device.
type Summary struct {
	TotalGames     int `json:"totalGames"`
	CompletedGames int `json:"completedGames"`
	WonGames       int `json:"wonGames"`
	TotalAttempts  int `json:"totalAttempts"`
}

type blob map[game.Mode]map[string]*Record

// Store reads and writes the history blob.
type Store struct {
	kv  store.Store
	now func() time.Time
}

// New returns a history store over kv (usually a per-device namespace).
func New(kv store.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// GetState returns the record for (mode, cardID) if it belongs to dayKey.
func (s *Store) GetState(ctx context.Context, mode game.Mode, cardID int, dayKey string) (*State, error) {
	h, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	rec := h.find(mode, cardID, dayKey)
	if rec == nil {
		return nil, nil
	}
	return &State{
		Attempts: append([]game.Attempt(nil), rec.Attempts...),
		GameOver: rec.GameOver,
		GameWon:  rec.GameWon,
	}, nil
}

// Attempts is GetState's attempt list, empty when there is no record.
func (s *Store) Attempts(ctx context.Context, mode game.Mode, cardID int, dayKey string) ([]game.Attempt, error) {
	st, err := s.GetState(ctx, mode, cardID, dayKey)
	if err != nil || st == nil {
		return []game.Attempt{}, err
	}
	return st.Attempts, nil
}

// HasAttempts reports whether a current, non-empty record exists.
func (s *Store) HasAttempts(ctx context.Context, mode game.Mode, cardID int, dayKey string) (bool, error) {
	st, err := s.GetState(ctx, mode, cardID, dayKey)
	if err != nil || st == nil {
		return false, err
	}
	return len(st.Attempts) > 0, nil
}

// AppendAttempt adds attempt to the record for (mode, cardID, dayKey),
// starting a new record if the stored one is missing or from another day.
// gameOver and gameWon only ever switch on.
func (s *Store) AppendAttempt(ctx context.Context, mode game.Mode, cardID int, dayKey string, attempt game.Attempt, gameOver, gameWon bool) error {
	h, err := s.read(ctx)
	if err != nil {
		return err
	}
	rec := h.find(mode, cardID, dayKey)
	if rec == nil {
		rec = &Record{DayKey: dayKey, CardID: cardID, Attempts: []game.Attempt{}}
		h.put(mode, cardID, rec)
	}
	if rec.GameOver {
		return ErrGameOver
	}
	rec.Attempts = append(rec.Attempts, attempt)
	rec.GameOver = rec.GameOver || gameOver
	rec.GameWon = rec.GameWon || gameWon
	rec.LastUpdated = s.now().UTC()
	return s.write(ctx, h)
}

// SaveState overwrites the record for (mode, cardID) with a full state.
func (s *Store) SaveState(ctx context.Context, mode game.Mode, cardID int, dayKey string, st State) error {
	h, err := s.read(ctx)
	if err != nil {
		return err
	}
	h.put(mode, cardID, &Record{
		DayKey:      dayKey,
		CardID:      cardID,
		Attempts:    append([]game.Attempt{}, st.Attempts...),
		GameOver:    st.GameOver,
		GameWon:     st.GameWon,
		LastUpdated: s.now().UTC(),
	})
	return s.write(ctx, h)
}

// Prune drops records older than todayKey minus retentionDays and removes
// modes left without records.
func (s *Store) Prune(ctx context.Context, todayKey string, retentionDays int) error {
	cutoff, err := dayclock.ShiftKey(todayKey, -retentionDays)
	if err != nil {
		return err
	}
	h, err := s.read(ctx)
	if err != nil {
		return err
	}
	changed := false
	for mode, cards := range h {
		for id, rec := range cards {
			if rec == nil {
				delete(cards, id)
				changed = true
				continue
			}
			if _, perr := dayclock.ParseKey(rec.DayKey); perr != nil || rec.DayKey < cutoff {
				delete(cards, id)
				changed = true
			}
		}
		if len(cards) == 0 {
			delete(h, mode)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(ctx, h)
}

// Summary counts games, finished games, wins and attempts across the blob.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	h, err := s.read(ctx)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, cards := range h {
		for _, rec := range cards {
			if rec == nil {
				continue
			}
			sum.TotalGames++
			sum.TotalAttempts += len(rec.Attempts)
			if rec.GameOver {
				sum.CompletedGames++
				if rec.GameWon {
					sum.WonGames++
				}
			}
		}
	}
	return sum, nil
}

// Clear forgets all history on this device.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, BlobKey)
}

func (h blob) find(mode game.Mode, cardID int, dayKey string) *Record {
	rec := h[mode][strconv.Itoa(cardID)]
	if rec == nil || rec.DayKey != dayKey {
		return nil
	}
	return rec
}

func (h blob) put(mode game.Mode, cardID int, rec *Record) {
	if h[mode] == nil {
		h[mode] = map[string]*Record{}
	}
	h[mode][strconv.Itoa(cardID)] = rec
}

// read loads the blob. Missing or unparseable data yields an empty blob;
// only storage failures are returned.
func (s *Store) read(ctx context.Context) (blob, error) {
	raw, err := s.kv.Get(ctx, BlobKey)
	if errors.Is(err, store.ErrNotFound) {
		return blob{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	var h blob
	if err := json.Unmarshal(raw, &h); err != nil {
		log.Warn().Err(err).Msg("history: invalid data, starting fresh")
		return blob{}, nil
	}
	if h == nil {
		h = blob{}
	}
	return h, nil
}

func (s *Store) write(ctx context.Context, h blob) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Set(ctx, BlobKey, raw); err != nil {
		return fmt.Errorf("history: save: %w", err)
	}
	return nil
}

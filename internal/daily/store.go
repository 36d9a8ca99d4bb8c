package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robalobadob/ygodle/internal/database"
	"github.com/robalobadob/ygodle/internal/game"
)

// ErrNotAssigned is returned when a mode (or mode+card) has no daily row.
var ErrNotAssigned = errors.New("daily: no card assigned")

const createdLayout = "2006-01-02T15:04:05Z"

// Card is one row of daily_cards.
type Card struct {
	Mode          game.Mode `json:"gameMode"`
	Date          string    `json:"date"`
	CardID        int       `json:"cardId"`
	DayNumber     int       `json:"dayNumber"`
	TotalAttempts int       `json:"totalAttempts"`
	SuccessCount  int       `json:"successCount"`
}

// ModeStats aggregates every day a mode has been played.
type ModeStats struct {
	TotalDaysPlayed    int     `json:"totalDaysPlayed"`
	TotalAttempts      int     `json:"totalAttempts"`
	TotalSuccesses     int     `json:"totalSuccesses"`
	AverageSuccessRate float64 `json:"averageSuccessRate"` // percent, 2 decimals
}

// Store reads and writes daily_cards.
type Store struct {
	db  *database.DB
	now func() time.Time
}

func NewStore(db *database.DB) *Store { return &Store{db: db, now: time.Now} }

const cardColumns = `game_mode, date, card_id, day_number, total_attempts, success_count`

func scanCard(sc interface{ Scan(...any) error }) (*Card, error) {
	var c Card
	var mode string
	if err := sc.Scan(&mode, &c.Date, &c.CardID, &c.DayNumber, &c.TotalAttempts, &c.SuccessCount); err != nil {
		return nil, err
	}
	c.Mode = game.Mode(mode)
	return &c, nil
}

// Latest returns the most recent row for mode, whatever its date.
func (s *Store) Latest(ctx context.Context, mode game.Mode) (*Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM daily_cards WHERE game_mode = ? ORDER BY date DESC LIMIT 1`, string(mode))
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotAssigned
	}
	if err != nil {
		return nil, fmt.Errorf("daily latest %s: %w", mode, err)
	}
	return c, nil
}

// ForDate returns the row for (mode, date).
func (s *Store) ForDate(ctx context.Context, mode game.Mode, date string) (*Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM daily_cards WHERE game_mode = ? AND date = ?`, string(mode), date)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotAssigned
	}
	if err != nil {
		return nil, fmt.Errorf("daily %s %s: %w", mode, date, err)
	}
	return c, nil
}

// Assign inserts c unless (mode, date) already has a card. It reports
// whether a row was written.
func (s *Store) Assign(ctx context.Context, c Card) (bool, error) {
	q := s.db.Upsert("daily_cards",
		[]string{"game_mode", "date", "card_id", "day_number", "total_attempts", "success_count", "created_at"},
		[]string{"game_mode", "date"},
		nil,
	)
	res, err := s.db.ExecContext(ctx, q,
		string(c.Mode), c.Date, c.CardID, c.DayNumber, 0, 0, s.now().UTC().Format(createdLayout))
	if err != nil {
		return false, fmt.Errorf("daily assign %s %s: %w", c.Mode, c.Date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordResult counts one guess against the latest row for (mode, cardID),
// adding a success when success is true.
func (s *Store) RecordResult(ctx context.Context, mode game.Mode, cardID int, success bool) error {
	var date string
	err := s.db.QueryRowContext(ctx,
		`SELECT date FROM daily_cards WHERE game_mode = ? AND card_id = ? ORDER BY date DESC LIMIT 1`,
		string(mode), cardID).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotAssigned
	}
	if err != nil {
		return fmt.Errorf("daily result %s/%d: %w", mode, cardID, err)
	}
	inc := 0
	if success {
		inc = 1
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE daily_cards SET total_attempts = total_attempts + 1, success_count = success_count + ?
		 WHERE game_mode = ? AND card_id = ? AND date = ?`,
		inc, string(mode), cardID, date)
	if err != nil {
		return fmt.Errorf("daily result %s/%d: %w", mode, cardID, err)
	}
	return nil
}

// ModeStats sums the counters of every row for mode.
func (s *Store) ModeStats(ctx context.Context, mode game.Mode) (ModeStats, error) {
	var st ModeStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(total_attempts), 0), COALESCE(SUM(success_count), 0)
		 FROM daily_cards WHERE game_mode = ?`, string(mode),
	).Scan(&st.TotalDaysPlayed, &st.TotalAttempts, &st.TotalSuccesses)
	if err != nil {
		return ModeStats{}, fmt.Errorf("daily stats %s: %w", mode, err)
	}
	if st.TotalAttempts > 0 {
		rate := float64(st.TotalSuccesses) / float64(st.TotalAttempts) * 100
		st.AverageSuccessRate = math.Round(rate*100) / 100
	}
	return st, nil
}

// History lists the most recent rows for mode, newest first.
func (s *Store) History(ctx context.Context, mode game.Mode, limit int) ([]Card, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM daily_cards WHERE game_mode = ? ORDER BY date DESC LIMIT ?`,
		string(mode), limit)
	if err != nil {
		return nil, fmt.Errorf("daily history %s: %w", mode, err)
	}
	defer rows.Close()
	out := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UsedSince returns the card ids assigned to mode on or after date.
func (s *Store) UsedSince(ctx context.Context, mode game.Mode, date string) (map[int]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id FROM daily_cards WHERE game_mode = ? AND date >= ?`, string(mode), date)
	if err != nil {
		return nil, fmt.Errorf("daily used %s: %w", mode, err)
	}
	defer rows.Close()
	used := map[int]struct{}{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		used[id] = struct{}{}
	}
	return used, rows.Err()
}

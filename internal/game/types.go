// internal/game/types.go
//
// Core type definitions for the card guessing game.
// Defines:
//   - Mode: one of the three independent daily games.
//   - Entity: a guessable card.
//   - Verdict / ScoreResult: per-field feedback for a guess.
//   - Attempt: one scored guess.

package game

import (
	"errors"
	"strings"
)

// Mode selects which card pool a game draws from.
type Mode string

const (
	ModeMonsters Mode = "monsters"
	ModeSpells   Mode = "spells"
	ModeTraps    Mode = "traps"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeMonsters, ModeSpells, ModeTraps}

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown game mode")

// ParseMode validates a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", ErrUnknownMode
}

// CardImage holds artwork URLs; presentation only.
type CardImage struct {
	URL      string `json:"image_url"`
	URLSmall string `json:"image_url_small"`
}

// Entity is one card. Absent numeric fields are nil (not applicable),
// which is distinct from zero. An empty Attribute means "none".
type Entity struct {
	ID        int         `json:"id"`
	Name      string      `json:"name_en"`
	NameFR    string      `json:"name_fr,omitempty"`
	Category  string      `json:"race"`
	Type      string      `json:"humanreadablecardtype"`
	Attack    *int        `json:"atk,omitempty"`
	Defense   *int        `json:"def,omitempty"`
	Level     *int        `json:"level,omitempty"`
	Attribute string      `json:"attribute,omitempty"`
	FrameType string      `json:"frametype,omitempty"`
	Archetype string      `json:"archetype,omitempty"`
	Images    []CardImage `json:"card_images,omitempty"`
}

// Verdict is the comparison outcome for one field.
//   - "correct":   values match.
//   - "incorrect": values differ (equality fields), or exactly one side
//     lacks the value (numeric fields).
//   - "higher":    the secret's value is above the guess.
//   - "lower":     the secret's value is below the guess.
type Verdict string

const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
	Higher    Verdict = "higher"
	Lower     Verdict = "lower"
)

// ScoreResult has one verdict per compared field.
type ScoreResult struct {
	Name      Verdict `json:"name"`
	Type      Verdict `json:"type"`
	Category  Verdict `json:"race"`
	Attack    Verdict `json:"atk"`
	Defense   Verdict `json:"def"`
	Level     Verdict `json:"level"`
	Attribute Verdict `json:"attribute"`
}

// Won reports whether the guess identified the secret.
func (r ScoreResult) Won() bool { return r.Name == Correct }

// Attempt is one scored guess, in submission order.
type Attempt struct {
	ID      string      `json:"id"`
	Card    Entity      `json:"card"`
	Results ScoreResult `json:"results"`
}

// State is the coarse game state.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Game holds one mode's game for one day.
type Game struct {
	Mode        Mode
	Secret      Entity
	MaxAttempts int
	Attempts    []Attempt
	Finished    bool
	Won         bool
}

// Int returns a pointer to v; handy for building entities.
func Int(v int) *int { return &v }

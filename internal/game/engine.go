// internal/game/engine.go
//
// Core game engine for one daily card game.
// Responsibilities:
//   - Score guesses field by field against the secret card.
//   - Track state transitions: playing → won/lost.
//   - Rebuild a game from its stored attempt list.
//
// Notes:
//   - Score is pure; callers persist attempts elsewhere.
//   - Attempt IDs are ULIDs so they sort in submission order.

package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxAttempts is the number of guesses allowed per day.
const DefaultMaxAttempts = 6

// ErrGameFinished is returned when guessing on a won or lost game.
var ErrGameFinished = errors.New("game finished")

// New starts a fresh game.
func New(mode Mode, secret Entity, maxAttempts int) *Game {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Game{
		Mode:        mode,
		Secret:      secret,
		MaxAttempts: maxAttempts,
		Attempts:    []Attempt{},
	}
}

// Restore rebuilds a game from previously stored attempts.
// Finished/Won are derived from the attempts, never trusted from storage.
func Restore(mode Mode, secret Entity, maxAttempts int, attempts []Attempt) *Game {
	g := New(mode, secret, maxAttempts)
	g.Attempts = append(g.Attempts, attempts...)
	for _, a := range attempts {
		if a.Results.Won() {
			g.Finished, g.Won = true, true
			return g
		}
	}
	if len(g.Attempts) >= g.MaxAttempts {
		g.Finished = true
	}
	return g
}

// ApplyGuess scores guess, appends the attempt and updates the state.
//
// State transitions:
//   - Name verdict correct → Finished = true, Won = true.
//   - Else if the attempt count reaches MaxAttempts → Finished = true (loss).
func (g *Game) ApplyGuess(guess Entity) (Attempt, State, error) {
	if g.Finished {
		return Attempt{}, g.State(), ErrGameFinished
	}
	a := Attempt{
		ID:      ulid.Make().String(),
		Card:    guess,
		Results: Score(guess, g.Secret),
	}
	g.Attempts = append(g.Attempts, a)

	if a.Results.Won() {
		g.Finished, g.Won = true, true
	} else if len(g.Attempts) >= g.MaxAttempts {
		g.Finished = true
	}
	return a, g.State(), nil
}

// State reports the coarse game state.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Remaining is the number of guesses left.
func (g *Game) Remaining() int {
	if g.Finished {
		return 0
	}
	return g.MaxAttempts - len(g.Attempts)
}

// Score compares guess against secret.
//
//   - Name: correct iff both denote the same card (ID equality).
//   - Type, Category, Attribute: plain string equality; an empty attribute
//     is the value "none", so empty vs empty is correct.
//   - Attack, Defense, Level: see compareOrdered.
func Score(guess, secret Entity) ScoreResult {
	return ScoreResult{
		Name:      equal(guess.ID == secret.ID),
		Type:      equal(guess.Type == secret.Type),
		Category:  equal(guess.Category == secret.Category),
		Attack:    compareOrdered(guess.Attack, secret.Attack),
		Defense:   compareOrdered(guess.Defense, secret.Defense),
		Level:     compareOrdered(guess.Level, secret.Level),
		Attribute: equal(guess.Attribute == secret.Attribute),
	}
}

func equal(ok bool) Verdict {
	if ok {
		return Correct
	}
	return Incorrect
}

// compareOrdered scores an optional numeric field.
// Both absent → correct; exactly one absent → incorrect (no direction);
// both present → correct, or higher/lower giving where the secret lies.
func compareOrdered(guess, secret *int) Verdict {
	if guess == nil || secret == nil {
		return equal(guess == nil && secret == nil)
	}
	switch {
	case *guess == *secret:
		return Correct
	case *secret > *guess:
		return Higher
	default:
		return Lower
	}
}

var shareSymbols = map[Verdict]string{
	Correct:   "🟩",
	Incorrect: "🟥",
	Higher:    "⬆️",
	Lower:     "⬇️",
}

// ShareText renders a spoiler-free result summary, one emoji row per attempt.
func ShareText(mode Mode, won bool, attempts []Attempt, maxAttempts int, url string) string {
	result := fmt.Sprintf("%d/%d", len(attempts), maxAttempts)
	if !won {
		result = fmt.Sprintf("X/%d", maxAttempts)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "YGOdle %s %s\n\n", mode, result)
	for _, a := range attempts {
		r := a.Results
		for _, v := range []Verdict{r.Name, r.Type, r.Category, r.Attack, r.Defense, r.Level, r.Attribute} {
			b.WriteString(shareSymbols[v])
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nGuess the Yu-Gi-Oh! card!")
	if url != "" {
		b.WriteString("\n" + url)
	}
	return b.String()
}

// internal/play/play.go
//
// Orchestrates one device's daily games.
// Responsibilities:
//   - Start: pick up today's secret, honour the one-game-per-day lock and
//     restore an in-progress board from history.
//   - Guess: score a guess, persist it, close the game when it ends and
//     report the result to the global counters.
//
// Notes:
//   - The day key always comes from the Day Clock, never from the secret's row.
//   - Calls for the same device are serialised; different devices run freely.
//   - The secret is only revealed once the game is over.

package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/cards"
	"github.com/robalobadob/ygodle/internal/daily"
	"github.com/robalobadob/ygodle/internal/dayclock"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/history"
	"github.com/robalobadob/ygodle/internal/session"
	"github.com/robalobadob/ygodle/internal/store"
)

// Errors returned by Player; the HTTP layer maps them to status codes.
var (
	ErrNoSecret         = errors.New("no daily card for this mode")
	ErrUnknownCard      = errors.New("unknown card for this mode")
	ErrStatsUnavailable = errors.New("global stats update failed")
)

// DefaultRetentionDays bounds how long session and history records are kept.
const DefaultRetentionDays = 7

// SecretProvider returns the current card of the day, or nil when none exists.
type SecretProvider interface {
	Today(ctx context.Context, mode game.Mode) (*daily.Secret, error)
}

// StatsUpdater counts a guess against the card of the day.
type StatsUpdater interface {
	RecordResult(ctx context.Context, mode game.Mode, cardID int, success bool) error
}

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	MaxAttempts   int
	RetentionDays int
	ShareURL      string
}

// Service holds the shared collaborators; Player scopes them to a device.
type Service struct {
	clock   *dayclock.Clock
	secrets SecretProvider
	stats   StatsUpdater
	catalog *cards.Catalog
	kv      store.Store
	opts    Options
	locks   keyedMutex
}

// NewService wires the collaborators shared by every device.
func NewService(clock *dayclock.Clock, secrets SecretProvider, stats StatsUpdater, catalog *cards.Catalog, kv store.Store, opts Options) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = game.DefaultMaxAttempts
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}
	return &Service{clock: clock, secrets: secrets, stats: stats, catalog: catalog, kv: kv, opts: opts}
}

// Clock exposes the day clock the service plays on.
func (s *Service) Clock() *dayclock.Clock { return s.clock }

// Catalog exposes the card pool guesses are validated against.
func (s *Service) Catalog() *cards.Catalog { return s.catalog }

// Player returns the view of the service for one device.
func (s *Service) Player(deviceID string) *Player {
	kv := store.Namespace(s.kv, "device:"+deviceID)
	return &Player{
		svc:      s,
		id:       deviceID,
		sessions: session.New(kv),
		history:  history.New(kv),
	}
}

// Player plays on behalf of one device.
type Player struct {
	svc      *Service
	id       string
	sessions *session.Store
	history  *history.Store
}

// View is what a client needs to draw one mode's board.
type View struct {
	Mode         game.Mode      `json:"mode"`
	Day          dayclock.Day   `json:"day"`
	State        game.State     `json:"state"`
	Attempts     []game.Attempt `json:"attempts"`
	MaxAttempts  int            `json:"maxAttempts"`
	Remaining    int            `json:"remaining"`
	Locked       bool           `json:"locked"`
	NextRollover time.Time      `json:"nextRollover"`
	Secret       *game.Entity   `json:"secret,omitempty"`
	Share        string         `json:"share,omitempty"`
	Stats        daily.Card     `json:"stats"`
}

// Outcome is the result of one guess.
type Outcome struct {
	Attempt game.Attempt `json:"attempt"`
	View
}

// Start opens today's game for mode. A game already finished today comes
// back locked with its attempts; an unfinished one comes back as it was.
func (p *Player) Start(ctx context.Context, mode game.Mode) (*View, error) {
	unlock := p.svc.locks.Lock(p.id)
	defer unlock()

	day := p.svc.clock.Today()
	p.prune(ctx, day.Key)

	secret, err := p.secret(ctx, mode)
	if err != nil {
		return nil, err
	}

	rec, err := p.sessions.Load(ctx, mode)
	if err != nil {
		return nil, err
	}
	played := rec != nil && rec.DayKey == day.Key && rec.Completed
	if !played {
		if err := p.sessions.StartIfNewDay(ctx, mode, day.Key); err != nil {
			return nil, err
		}
	}

	g, err := p.restore(ctx, mode, secret, day)
	if err != nil {
		return nil, err
	}
	if played && !g.Finished {
		// Session says finished but history is gone (pruned or cleared):
		// keep the lock, the board is just empty.
		g.Finished = true
		g.Won = rec.Won
	}
	if !played && g.Finished {
		// History finished but the session write was lost; repair it.
		if err := p.sessions.Complete(ctx, mode, day.Key, g.Won, len(g.Attempts)); err != nil {
			return nil, err
		}
	}
	v := p.view(day, secret, g)
	return &v, nil
}

// Guess scores cardID against today's secret for mode.
//
// Local state (history, then session) is written before the global counters
// are touched. When only the counters fail, the outcome is returned together
// with an error wrapping ErrStatsUnavailable.
func (p *Player) Guess(ctx context.Context, mode game.Mode, cardID int) (*Outcome, error) {
	unlock := p.svc.locks.Lock(p.id)
	defer unlock()

	day := p.svc.clock.Today()
	secret, err := p.secret(ctx, mode)
	if err != nil {
		return nil, err
	}
	guess, ok := p.svc.catalog.Lookup(mode, cardID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCard, cardID)
	}

	played, err := p.sessions.HasPlayed(ctx, mode, day.Key)
	if err != nil {
		return nil, err
	}
	if played {
		return nil, game.ErrGameFinished
	}
	if err := p.sessions.StartIfNewDay(ctx, mode, day.Key); err != nil {
		return nil, err
	}

	g, err := p.restore(ctx, mode, secret, day)
	if err != nil {
		return nil, err
	}
	attempt, _, err := g.ApplyGuess(guess)
	if err != nil {
		return nil, err
	}

	err = p.history.AppendAttempt(ctx, mode, secret.Card.ID, day.Key, attempt, g.Finished, g.Won)
	if errors.Is(err, history.ErrGameOver) {
		return nil, game.ErrGameFinished
	}
	if err != nil {
		return nil, err
	}
	if err := p.sessions.RecordAttempt(ctx, mode, day.Key); err != nil {
		return nil, err
	}
	if g.Finished {
		if err := p.sessions.Complete(ctx, mode, day.Key, g.Won, len(g.Attempts)); err != nil {
			return nil, err
		}
		log.Info().
			Str("device", p.id).
			Str("mode", string(mode)).
			Str("date", day.Key).
			Bool("won", g.Won).
			Int("attempts", len(g.Attempts)).
			Msg("daily game finished")
	}

	out := &Outcome{Attempt: attempt, View: p.view(day, secret, g)}
	if err := p.svc.stats.RecordResult(ctx, mode, secret.Card.ID, attempt.Results.Won()); err != nil {
		return out, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	out.Stats.TotalAttempts++
	if attempt.Results.Won() {
		out.Stats.SuccessCount++
	}
	return out, nil
}

// Summary aggregates this device's stored history.
func (p *Player) Summary(ctx context.Context) (history.Summary, error) {
	unlock := p.svc.locks.Lock(p.id)
	defer unlock()
	return p.history.Summary(ctx)
}

// Reset forgets every session and history record of this device.
func (p *Player) Reset(ctx context.Context) error {
	unlock := p.svc.locks.Lock(p.id)
	defer unlock()
	if err := p.sessions.Reset(ctx); err != nil {
		return err
	}
	return p.history.Clear(ctx)
}

func (p *Player) secret(ctx context.Context, mode game.Mode) (*daily.Secret, error) {
	secret, err := p.svc.secrets.Today(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("load daily card: %w", err)
	}
	if secret == nil {
		return nil, ErrNoSecret
	}
	return secret, nil
}

func (p *Player) restore(ctx context.Context, mode game.Mode, secret *daily.Secret, day dayclock.Day) (*game.Game, error) {
	attempts, err := p.history.Attempts(ctx, mode, secret.Card.ID, day.Key)
	if err != nil {
		return nil, err
	}
	return game.Restore(mode, secret.Card, p.svc.opts.MaxAttempts, attempts), nil
}

// prune is best effort: a failure only delays cleanup.
func (p *Player) prune(ctx context.Context, todayKey string) {
	days := p.svc.opts.RetentionDays
	if err := p.sessions.Prune(ctx, todayKey, days); err != nil {
		log.Warn().Err(err).Str("device", p.id).Msg("session prune failed")
	}
	if err := p.history.Prune(ctx, todayKey, days); err != nil {
		log.Warn().Err(err).Str("device", p.id).Msg("history prune failed")
	}
}

func (p *Player) view(day dayclock.Day, secret *daily.Secret, g *game.Game) View {
	v := View{
		Mode:         g.Mode,
		Day:          day,
		State:        g.State(),
		Attempts:     g.Attempts,
		MaxAttempts:  g.MaxAttempts,
		Remaining:    g.Remaining(),
		Locked:       g.Finished,
		NextRollover: p.svc.clock.NextRollover(p.svc.clock.Now()),
		Stats:        secret.Daily,
	}
	if !g.Finished {
		v.Stats.CardID = 0
	}
	if g.Finished {
		card := secret.Card
		v.Secret = &card
		v.Share = game.ShareText(g.Mode, g.Won, g.Attempts, g.MaxAttempts, p.svc.opts.ShareURL)
	}
	return v
}

package daily

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/dayclock"
)

// DefaultRetryDelay is how long the Scheduler waits before retrying a failed
// rotation.
const DefaultRetryDelay = time.Minute

// Scheduler runs the Rotator at startup and at every rollover.
type Scheduler struct {
	rotator *Rotator
	clock   *dayclock.Clock
	retry   time.Duration

	// after is time.After; tests swap it to fire immediately.
	after func(time.Duration) <-chan time.Time
}

// NewScheduler returns a Scheduler driving r on clock's rollovers.
func NewScheduler(r *Rotator, clock *dayclock.Clock) *Scheduler {
	return &Scheduler{rotator: r, clock: clock, retry: DefaultRetryDelay, after: time.After}
}

// Run blocks until ctx is done. A failed rotation is retried every
// DefaultRetryDelay until it succeeds or the next rollover comes first.
func (s *Scheduler) Run(ctx context.Context) error {
	ok := s.rotate(ctx)
	for {
		wait := s.nextWait(ok)
		log.Debug().Dur("in", wait).Bool("retry", !ok).Msg("next daily rotation scheduled")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(wait):
			ok = s.rotate(ctx)
		}
	}
}

func (s *Scheduler) nextWait(lastOK bool) time.Duration {
	now := s.clock.Now()
	// Small slack so the timer never fires a hair before the boundary.
	wait := s.clock.NextRollover(now).Sub(now) + time.Second
	if !lastOK && s.retry < wait {
		return s.retry
	}
	return wait
}

func (s *Scheduler) rotate(ctx context.Context) bool {
	day := s.clock.Today()
	created, err := s.rotator.Rotate(ctx, day)
	if err != nil {
		log.Error().Err(err).Str("date", day.Key).Msg("daily rotation failed")
		return false
	}
	log.Info().Str("date", day.Key).Int("assigned", len(created)).Msg("daily rotation done")
	return true
}

// internal/dayclock/dayclock.go
//
// Game-day calendar.
// Responsibilities:
//   - Map an instant to the game day it belongs to (DayKey + DayOrdinal).
//   - Days roll over at a fixed wall-clock hour in a fixed reference zone,
//     not at UTC midnight and not in the caller's zone.
//   - Report the next rollover instant (countdown to the next card).
//
// Notes:
//   - Civil dates are handled as midnight UTC values so day arithmetic is
//     never affected by DST transitions in the reference zone.
//   - The zone database is embedded; results do not depend on the host.

package dayclock

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// KeyLayout is the DayKey format.
const KeyLayout = "2006-01-02"

// Defaults used by config when nothing is set.
const (
	DefaultZone         = "Europe/Paris"
	DefaultRolloverHour = 12
	DefaultEpoch        = "2024-01-01"
)

// Day identifies one rollover-delimited game day.
type Day struct {
	Key     string `json:"dayKey"`    // "YYYY-MM-DD"
	Ordinal int    `json:"dayNumber"` // 1 on the epoch day
}

// Clock computes game days for one (zone, rollover hour, epoch) triple.
type Clock struct {
	loc          *time.Location
	rolloverHour int
	epoch        time.Time // civil date, midnight UTC

	now func() time.Time
}

// New builds a Clock.
// zone is an IANA name, rolloverHour is 0..23, epochDate is a DayKey that
// becomes ordinal 1.
func New(zone string, rolloverHour int, epochDate string) (*Clock, error) {
	if rolloverHour < 0 || rolloverHour > 23 {
		return nil, fmt.Errorf("dayclock: rollover hour %d out of range", rolloverHour)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("dayclock: load zone %q: %w", zone, err)
	}
	epoch, err := ParseKey(epochDate)
	if err != nil {
		return nil, fmt.Errorf("dayclock: epoch: %w", err)
	}
	return &Clock{loc: loc, rolloverHour: rolloverHour, epoch: epoch, now: time.Now}, nil
}

// WithNow returns a copy of c that reads the current time from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

// Location is the reference zone.
func (c *Clock) Location() *time.Location { return c.loc }

// RolloverHour is the local hour at which a new day starts.
func (c *Clock) RolloverHour() int { return c.rolloverHour }

// EffectiveDay returns the game day containing t.
// Wall-clock times strictly before the rollover hour belong to the
// previous calendar date; the rollover instant itself starts the new day.
func (c *Clock) EffectiveDay(t time.Time) Day {
	civil := c.effectiveDate(t)
	return Day{
		Key:     civil.Format(KeyLayout),
		Ordinal: daysBetween(c.epoch, civil) + 1,
	}
}

// DayOf returns the Day for an existing key.
func (c *Clock) DayOf(key string) (Day, error) {
	civil, err := ParseKey(key)
	if err != nil {
		return Day{}, err
	}
	return Day{Key: key, Ordinal: daysBetween(c.epoch, civil) + 1}, nil
}

// Today is EffectiveDay(now).
func (c *Clock) Today() Day { return c.EffectiveDay(c.now()) }

// Now is the clock's current instant.
func (c *Clock) Now() time.Time { return c.now() }

// NextRollover returns the first rollover instant strictly after t.
func (c *Clock) NextRollover(t time.Time) time.Time {
	lt := t.In(c.loc)
	y, m, d := lt.Date()
	next := time.Date(y, m, d, c.rolloverHour, 0, 0, 0, c.loc)
	if !next.After(t) {
		next = time.Date(y, m, d+1, c.rolloverHour, 0, 0, 0, c.loc)
	}
	return next
}

// Until is the time left before the next rollover, measured from now.
func (c *Clock) Until() time.Duration {
	now := c.now()
	return c.NextRollover(now).Sub(now)
}

func (c *Clock) effectiveDate(t time.Time) time.Time {
	lt := t.In(c.loc)
	y, m, d := lt.Date()
	if lt.Hour() < c.rolloverHour {
		d--
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ErrBadKey is returned for strings that are not YYYY-MM-DD dates.
var ErrBadKey = errors.New("dayclock: invalid day key")

// ParseKey parses a DayKey into its civil date (midnight UTC).
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return t, nil
}

// ShiftKey moves a DayKey by days (negative goes back).
func ShiftKey(key string, days int) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(KeyLayout), nil
}

// daysBetween counts whole days from a to b; both are midnight UTC.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/cards"
	"github.com/robalobadob/ygodle/internal/dayclock"
	"github.com/robalobadob/ygodle/internal/game"
)

// DefaultAvoidDays is how far back Rotate looks for recently used cards.
const DefaultAvoidDays = 30

// Rotator assigns the card of the day for every mode.
type Rotator struct {
	store     *Store
	catalog   *cards.Catalog
	salt      string
	avoidDays int
}

// NewRotator picks cards from catalog, keyed by salt, avoiding the last
// DefaultAvoidDays of assignments.
func NewRotator(store *Store, catalog *cards.Catalog, salt string) *Rotator {
	return &Rotator{store: store, catalog: catalog, salt: salt, avoidDays: DefaultAvoidDays}
}

// Rotate makes sure every mode has a card for day. Modes that already have
// one are left alone, so calling it twice is harmless. It returns the rows
// it created.
func (r *Rotator) Rotate(ctx context.Context, day dayclock.Day) ([]Card, error) {
	var created []Card
	for _, mode := range game.Modes {
		_, err := r.store.ForDate(ctx, mode, day.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotAssigned) {
			return created, err
		}

		card, err := r.pick(ctx, mode, day.Key)
		if err != nil {
			return created, err
		}
		row := Card{Mode: mode, Date: day.Key, CardID: card.ID, DayNumber: day.Ordinal}
		ok, err := r.store.Assign(ctx, row)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		log.Info().
			Str("mode", string(mode)).
			Str("date", day.Key).
			Int("dayNumber", day.Ordinal).
			Int("cardId", card.ID).
			Msg("daily card assigned")
		created = append(created, row)
	}
	return created, nil
}

// pick chooses deterministically among cards not used in the last
// avoidDays, or among all cards once every card has been used recently.
func (r *Rotator) pick(ctx context.Context, mode game.Mode, dayKey string) (game.Entity, error) {
	all := r.catalog.All(mode)
	if len(all) == 0 {
		return game.Entity{}, fmt.Errorf("%w: %s", cards.ErrEmptyMode, mode)
	}
	since, err := dayclock.ShiftKey(dayKey, -r.avoidDays)
	if err != nil {
		return game.Entity{}, err
	}
	used, err := r.store.UsedSince(ctx, mode, since)
	if err != nil {
		return game.Entity{}, err
	}
	fresh := make([]game.Entity, 0, len(all))
	for _, e := range all {
		if _, ok := used[e.ID]; !ok {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		fresh = all
	}
	return fresh[CardIndex(dayKey, mode, r.salt, len(fresh))], nil
}

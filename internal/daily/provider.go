package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalobadob/ygodle/internal/cards"
	"github.com/robalobadob/ygodle/internal/game"
)

// Secret is the card of the day with its row.
type Secret struct {
	Card  game.Entity `json:"card"`
	Daily Card        `json:"stats"`
}

// Provider resolves the current secret from daily_cards and the catalog.
type Provider struct {
	store   *Store
	catalog *cards.Catalog
}

// NewProvider reads daily rows from store and resolves them in catalog.
func NewProvider(store *Store, catalog *cards.Catalog) *Provider {
	return &Provider{store: store, catalog: catalog}
}

// Today returns the most recent card assigned to mode, or nil when none
// has ever been assigned. The latest row is used even if its date lags the
// current game day, so play continues while a rotation is pending.
func (p *Provider) Today(ctx context.Context, mode game.Mode) (*Secret, error) {
	row, err := p.store.Latest(ctx, mode)
	if errors.Is(err, ErrNotAssigned) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	card, ok := p.catalog.Lookup(mode, row.CardID)
	if !ok {
		return nil, fmt.Errorf("daily: card %d for %s %s not in catalog", row.CardID, mode, row.Date)
	}
	return &Secret{Card: card, Daily: *row}, nil
}

// RecordResult forwards to the store; it lets Provider's owner hand the
// same value to the orchestrator as its stats updater.
func (p *Provider) RecordResult(ctx context.Context, mode game.Mode, cardID int, success bool) error {
	return p.store.RecordResult(ctx, mode, cardID, success)
}

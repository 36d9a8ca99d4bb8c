// internal/cards/catalog.go
//
// Card catalog for the three game modes.
//
// Responsibilities:
//   - Load the card pool from CARDS_FILE or fall back to the embedded default.
//   - Index cards by id per mode for guess validation and secret lookup.
//   - Serve the name search behind the guess input.
//
// File format (same shape as the embedded assets/cards.json):
//   {"monsters": [...], "spells": [...], "traps": [...]}
// Each entry uses the card data source field names (id, name_en, race, atk, ...).
//
// Constraints:
//   • Card ids are unique within a mode.
//   • Every mode must have at least one card.

package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/robalobadob/ygodle/assets"
	"github.com/robalobadob/ygodle/internal/game"
)

// DefaultSearchLimit caps Search results when the caller passes no limit.
const DefaultSearchLimit = 10

// MaxSearchLimit is the most results Search returns whatever the caller asks.
const MaxSearchLimit = 50

// MinQueryLen is the shortest query Search answers.
const MinQueryLen = 2

var ErrEmptyMode = errors.New("cards: mode has no cards")

// Catalog is an immutable, mode-partitioned card pool.
type Catalog struct {
	byMode map[game.Mode][]game.Entity
	index  map[game.Mode]map[int]game.Entity
}

// Load reads the catalog from path, or the embedded default when path is "".
func Load(path string) (*Catalog, error) {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = assets.DefaultCards()
	}
	if err != nil {
		return nil, fmt.Errorf("cards: read: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from the JSON document described above.
func Parse(raw []byte) (*Catalog, error) {
	var doc map[game.Mode][]game.Entity
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("cards: decode: %w", err)
	}
	return New(doc)
}

// New validates and indexes an in-memory pool.
func New(pool map[game.Mode][]game.Entity) (*Catalog, error) {
	c := &Catalog{
		byMode: make(map[game.Mode][]game.Entity, len(game.Modes)),
		index:  make(map[game.Mode]map[int]game.Entity, len(game.Modes)),
	}
	for _, mode := range game.Modes {
		list := pool[mode]
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyMode, mode)
		}
		idx := make(map[int]game.Entity, len(list))
		for _, e := range list {
			if _, dup := idx[e.ID]; dup {
				return nil, fmt.Errorf("cards: duplicate id %d in %s", e.ID, mode)
			}
			idx[e.ID] = e
		}
		sorted := append([]game.Entity(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		c.byMode[mode] = sorted
		c.index[mode] = idx
	}
	return c, nil
}

// Lookup returns the card with id in mode.
func (c *Catalog) Lookup(mode game.Mode, id int) (game.Entity, bool) {
	e, ok := c.index[mode][id]
	return e, ok
}

// All returns the mode's cards ordered by id. The slice must not be modified.
func (c *Catalog) All(mode game.Mode) []game.Entity {
	return c.byMode[mode]
}

// Count returns how many cards the mode has.
func (c *Catalog) Count(mode game.Mode) int {
	return len(c.byMode[mode])
}

// Search matches query case-insensitively against English and French names.
// Names starting with the query come first, then other matches, each group
// alphabetical. Queries shorter than MinQueryLen return nothing. limit is
// clamped to MaxSearchLimit.
func (c *Catalog) Search(mode game.Mode, query string, limit int) []game.Entity {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLen {
		return []game.Entity{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	var prefix, contains []game.Entity
	for _, e := range c.byMode[mode] {
		en, fr := strings.ToLower(e.Name), strings.ToLower(e.NameFR)
		switch {
		case strings.HasPrefix(en, q) || (fr != "" && strings.HasPrefix(fr, q)):
			prefix = append(prefix, e)
		case strings.Contains(en, q) || (fr != "" && strings.Contains(fr, q)):
			contains = append(contains, e)
		}
	}
	byName := func(list []game.Entity) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(prefix)
	byName(contains)

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []game.Entity{}
	}
	return out
}

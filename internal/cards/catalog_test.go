package cards

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/robalobadob/ygodle/internal/game"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, mode := range game.Modes {
		if c.Count(mode) == 0 {
			t.Errorf("%s is empty", mode)
		}
	}
	bewd, ok := c.Lookup(game.ModeMonsters, 89631139)
	if !ok {
		t.Fatal("Blue-Eyes White Dragon missing")
	}
	if bewd.Attack == nil || *bewd.Attack != 3000 || bewd.Attribute != "LIGHT" {
		t.Fatalf("unexpected entity: %+v", bewd)
	}
	if _, ok := c.Lookup(game.ModeSpells, 89631139); ok {
		t.Fatal("lookup crossed modes")
	}
}

func TestLinkMonsterHasNoLevelOrDefense(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dt, ok := c.Lookup(game.ModeMonsters, 1861629)
	if !ok {
		t.Fatal("Decode Talker missing")
	}
	if dt.Level != nil || dt.Defense != nil {
		t.Fatalf("link monster should lack level/def: %+v", dt)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	doc := `{"monsters":[{"id":1,"name_en":"A"}],"spells":[{"id":2,"name_en":"B"}],"traps":[{"id":3,"name_en":"C"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Count(game.ModeTraps) != 1 {
		t.Fatalf("traps = %d", c.Count(game.ModeTraps))
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"not json":   `{`,
		"empty mode": `{"monsters":[{"id":1}],"spells":[{"id":2}]}`,
		"duplicate":  `{"monsters":[{"id":1},{"id":1}],"spells":[{"id":2}],"traps":[{"id":3}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	_, err := Parse([]byte(`{"monsters":[{"id":1}],"spells":[{"id":2}]}`))
	if !errors.Is(err, ErrEmptyMode) {
		t.Fatalf("expected ErrEmptyMode, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	c, err := New(map[game.Mode][]game.Entity{
		game.ModeMonsters: {
			{ID: 1, Name: "Dark Magician", NameFR: "Magicien Sombre"},
			{ID: 2, Name: "Dark Magician Girl", NameFR: "Magicienne des Ténèbres"},
			{ID: 3, Name: "Blue-Eyes White Dragon", NameFR: "Dragon Blanc aux Yeux Bleus"},
			{ID: 4, Name: "Red-Eyes Black Dragon", NameFR: "Dragon Noir aux Yeux Rouges"},
		},
		game.ModeSpells: {{ID: 10, Name: "Dark Hole"}},
		game.ModeTraps:  {{ID: 20, Name: "Trap Hole"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		limit int
		want  []int
	}{
		{"d", 0, nil},
		{"  ", 0, nil},
		{"dark", 0, []int{1, 2}},
		{"DRAGON", 0, []int{3, 4}},
		{"dragon", 1, []int{3}},
		{"magicienne", 0, []int{2}},
		{"eyes", 0, []int{3, 4}},
		{"zzz", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Search(game.ModeMonsters, tt.query, tt.limit)
			if got == nil {
				t.Fatal("Search returned nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("result %d = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	if got := c.Search(game.ModeSpells, "dark", 0); len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("search scoped to mode: %+v", got)
	}
}

func TestSearchPrefixFirst(t *testing.T) {
	c, err := New(map[game.Mode][]game.Entity{
		game.ModeMonsters: {
			{ID: 1, Name: "Amazing Dragon"},
			{ID: 2, Name: "Dragon Master"},
		},
		game.ModeSpells: {{ID: 10, Name: "x"}},
		game.ModeTraps:  {{ID: 20, Name: "y"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := c.Search(game.ModeMonsters, "dragon", 0)
	if len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("prefix match should come first: %+v", got)
	}
}

func TestSearchLimitClamped(t *testing.T) {
	var monsters []game.Entity
	for i := 1; i <= 80; i++ {
		monsters = append(monsters, game.Entity{ID: i, Name: fmt.Sprintf("Dragon %02d", i)})
	}
	c, err := New(map[game.Mode][]game.Entity{
		game.ModeMonsters: monsters,
		game.ModeSpells:   {{ID: 100, Name: "x"}},
		game.ModeTraps:    {{ID: 200, Name: "y"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Search(game.ModeMonsters, "dragon", 100000); len(got) != MaxSearchLimit {
		t.Fatalf("limit 100000 returned %d results, want %d", len(got), MaxSearchLimit)
	}
	if got := c.Search(game.ModeMonsters, "dragon", 0); len(got) != DefaultSearchLimit {
		t.Fatalf("default limit returned %d results", len(got))
	}
}

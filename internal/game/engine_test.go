package game

import (
	"errors"
	"strings"
	"testing"
)

func blueEyes() Entity {
	return Entity{
		ID: 89631139, Name: "Blue-Eyes White Dragon", Category: "Dragon", Type: "Normal Monster",
		Attack: Int(3000), Defense: Int(2500), Level: Int(8), Attribute: "LIGHT",
	}
}

func darkMagician() Entity {
	return Entity{
		ID: 46986414, Name: "Dark Magician", Category: "Spellcaster", Type: "Normal Monster",
		Attack: Int(2500), Defense: Int(2100), Level: Int(7), Attribute: "DARK",
	}
}

func decodeTalker() Entity {
	// Link monster: no DEF, no level.
	return Entity{
		ID: 1861629, Name: "Decode Talker", Category: "Cyberse", Type: "Link Effect Monster",
		Attack: Int(2300), Attribute: "DARK",
	}
}

func potOfGreed() Entity {
	return Entity{ID: 55144522, Name: "Pot of Greed", Category: "Normal", Type: "Normal Spell"}
}

func TestScoreIdentical(t *testing.T) {
	for _, e := range []Entity{blueEyes(), decodeTalker(), potOfGreed()} {
		r := Score(e, e)
		for field, v := range map[string]Verdict{
			"name": r.Name, "type": r.Type, "race": r.Category, "atk": r.Attack,
			"def": r.Defense, "level": r.Level, "attribute": r.Attribute,
		} {
			if v != Correct {
				t.Errorf("%s: %s = %s, want correct", e.Name, field, v)
			}
		}
		if !r.Won() {
			t.Errorf("%s: expected win", e.Name)
		}
	}
}

func TestScoreOrderedDirection(t *testing.T) {
	cases := []struct {
		guess, secret int
		want          Verdict
	}{
		{1800, 2400, Higher},
		{2400, 1800, Lower},
		{0, 0, Correct},
		{0, 100, Higher},
	}
	for _, tc := range cases {
		g := Entity{ID: 1, Attack: Int(tc.guess)}
		s := Entity{ID: 2, Attack: Int(tc.secret)}
		if got := Score(g, s).Attack; got != tc.want {
			t.Errorf("atk guess=%d secret=%d: got %s, want %s", tc.guess, tc.secret, got, tc.want)
		}
	}
}

func TestScoreOrderedSymmetry(t *testing.T) {
	a, b := blueEyes(), darkMagician()
	ab, ba := Score(a, b), Score(b, a)
	pairs := []struct {
		name   string
		ab, ba Verdict
	}{
		{"atk", ab.Attack, ba.Attack},
		{"def", ab.Defense, ba.Defense},
		{"level", ab.Level, ba.Level},
	}
	for _, p := range pairs {
		switch p.ab {
		case Higher:
			if p.ba != Lower {
				t.Errorf("%s: %s vs %s", p.name, p.ab, p.ba)
			}
		case Lower:
			if p.ba != Higher {
				t.Errorf("%s: %s vs %s", p.name, p.ab, p.ba)
			}
		default:
			t.Errorf("%s: expected a direction, got %s", p.name, p.ab)
		}
	}
}

func TestScorePresenceMismatch(t *testing.T) {
	for _, atk := range []int{0, 1, 5000} {
		with := Entity{ID: 1, Attack: Int(atk), Level: Int(4)}
		without := Entity{ID: 2}
		if got := Score(with, without).Attack; got != Incorrect {
			t.Errorf("present vs absent atk=%d: got %s", atk, got)
		}
		if got := Score(without, with).Attack; got != Incorrect {
			t.Errorf("absent vs present atk=%d: got %s", atk, got)
		}
	}
	// Link monster vs regular monster: DEF and level absent on one side.
	r := Score(decodeTalker(), darkMagician())
	if r.Defense != Incorrect || r.Level != Incorrect {
		t.Errorf("link vs normal: def=%s level=%s", r.Defense, r.Level)
	}
	if r.Attack != Higher {
		t.Errorf("link vs normal atk: got %s", r.Attack)
	}
}

func TestScoreBothAbsentAndAttributeNone(t *testing.T) {
	r := Score(potOfGreed(), Entity{ID: 83764718, Category: "Normal", Type: "Normal Spell"})
	if r.Attack != Correct || r.Defense != Correct || r.Level != Correct {
		t.Errorf("both absent: %+v", r)
	}
	if r.Attribute != Correct {
		t.Errorf("none vs none attribute: %s", r.Attribute)
	}
	if r.Name != Incorrect {
		t.Errorf("different ids must not win")
	}
	if got := Score(potOfGreed(), blueEyes()).Attribute; got != Incorrect {
		t.Errorf("none vs LIGHT: %s", got)
	}
}

func TestScoreNameUsesIdentity(t *testing.T) {
	a := blueEyes()
	b := blueEyes()
	b.ID = 1 // same name, different printing
	if Score(a, b).Name != Incorrect {
		t.Error("name verdict must compare ids, not display names")
	}
}

func TestApplyGuessWin(t *testing.T) {
	g := New(ModeMonsters, blueEyes(), 6)
	if _, st, err := g.ApplyGuess(darkMagician()); err != nil || st != StatePlaying {
		t.Fatalf("first guess: state=%s err=%v", st, err)
	}
	a, st, err := g.ApplyGuess(blueEyes())
	if err != nil {
		t.Fatalf("second guess: %v", err)
	}
	if st != StateWon || !g.Won || !g.Finished {
		t.Fatalf("expected win, got %s", st)
	}
	if a.ID == "" || !a.Results.Won() {
		t.Fatalf("bad attempt %+v", a)
	}
	if _, _, err := g.ApplyGuess(blueEyes()); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
	if len(g.Attempts) != 2 {
		t.Fatalf("attempts = %d", len(g.Attempts))
	}
}

func TestApplyGuessLoss(t *testing.T) {
	g := New(ModeMonsters, blueEyes(), 3)
	var st State
	for i := 0; i < 3; i++ {
		var err error
		if _, st, err = g.ApplyGuess(darkMagician()); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
	}
	if st != StateLost || g.Won || g.Remaining() != 0 {
		t.Fatalf("expected loss, got %s", st)
	}
}

func TestRestore(t *testing.T) {
	g := New(ModeMonsters, blueEyes(), 6)
	g.ApplyGuess(darkMagician())
	g.ApplyGuess(decodeTalker())

	r := Restore(ModeMonsters, blueEyes(), 6, g.Attempts)
	if r.Finished || r.Remaining() != 4 {
		t.Fatalf("restored in-progress game: finished=%v remaining=%d", r.Finished, r.Remaining())
	}
	if r.Attempts[0].ID != g.Attempts[0].ID || r.Attempts[1].ID != g.Attempts[1].ID {
		t.Fatal("restore must keep attempt order")
	}

	g.ApplyGuess(blueEyes())
	won := Restore(ModeMonsters, blueEyes(), 6, g.Attempts)
	if won.State() != StateWon {
		t.Fatalf("restored state = %s", won.State())
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"monsters", "SPELLS", " traps "} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("rituals"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestShareText(t *testing.T) {
	g := New(ModeMonsters, blueEyes(), 6)
	g.ApplyGuess(darkMagician())
	g.ApplyGuess(blueEyes())

	txt := ShareText(ModeMonsters, true, g.Attempts, 6, "https://ygodle.example")
	if !strings.HasPrefix(txt, "YGOdle monsters 2/6\n") {
		t.Fatalf("header: %q", txt)
	}
	if !strings.Contains(txt, "🟩🟩🟩🟩🟩🟩🟩") {
		t.Fatalf("winning row missing: %q", txt)
	}
	if !strings.HasSuffix(txt, "https://ygodle.example") {
		t.Fatalf("url missing: %q", txt)
	}
	if lost := ShareText(ModeTraps, false, g.Attempts, 6, ""); !strings.HasPrefix(lost, "YGOdle traps X/6") {
		t.Fatalf("loss header: %q", lost)
	}
}

package history

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/ygodle/internal/database"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/store"
)

func attempt(id string, cardID int, won bool) game.Attempt {
	name := game.Incorrect
	if won {
		name = game.Correct
	}
	return game.Attempt{
		ID:      id,
		Card:    game.Entity{ID: cardID, Name: "card " + id, Attack: game.Int(cardID)},
		Results: game.ScoreResult{Name: name, Attack: game.Higher},
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())

	for _, id := range []string{"A1", "A2", "A3"} {
		if err := s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", attempt(id, 7, false), false, false); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	st, err := s.GetState(ctx, game.ModeMonsters, 42, "2024-06-01")
	if err != nil || st == nil {
		t.Fatalf("get state: %+v, %v", st, err)
	}
	if len(st.Attempts) != 3 {
		t.Fatalf("attempts = %d", len(st.Attempts))
	}
	for i, want := range []string{"A1", "A2", "A3"} {
		if st.Attempts[i].ID != want {
			t.Fatalf("attempt %d = %s, want %s", i, st.Attempts[i].ID, want)
		}
	}
}

func TestDuplicatesAreKept(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())
	a := attempt("same", 7, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", a, false, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", a, false, false)
	got, _ := s.Attempts(ctx, game.ModeMonsters, 42, "2024-06-01")
	if len(got) != 2 {
		t.Fatalf("attempts = %d, want 2", len(got))
	}
}

func TestRestoreAfterRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	open := func() (*database.DB, *Store) {
		db, err := database.Open(ctx, database.Config{Type: "sqlite", Path: path})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return db, New(store.Namespace(store.NewSQLStore(db), "device:test"))
	}

	db, s := open()
	s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", attempt("A1", 1, false), false, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", attempt("A2", 2, false), false, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 42, "2024-06-01", attempt("A3", 42, true), true, true)
	db.Close()

	db2, s2 := open()
	defer db2.Close()
	st, err := s2.GetState(ctx, game.ModeMonsters, 42, "2024-06-01")
	if err != nil || st == nil {
		t.Fatalf("get state after restart: %+v, %v", st, err)
	}
	if len(st.Attempts) != 3 || st.Attempts[0].ID != "A1" || st.Attempts[2].ID != "A3" {
		t.Fatalf("attempts after restart: %+v", st.Attempts)
	}
	if !st.GameOver || !st.GameWon {
		t.Fatalf("flags after restart: over=%v won=%v", st.GameOver, st.GameWon)
	}
	if st.Attempts[2].Card.Attack == nil || *st.Attempts[2].Card.Attack != 42 {
		t.Fatalf("card fields not restored: %+v", st.Attempts[2].Card)
	}
}

func TestDayRotationIsolation(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())

	s.AppendAttempt(ctx, game.ModeSpells, 42, "2024-05-01", attempt("old", 1, false), false, false)
	if st, _ := s.GetState(ctx, game.ModeSpells, 42, "2024-05-02"); st != nil {
		t.Fatalf("stale record returned: %+v", st)
	}
	if has, _ := s.HasAttempts(ctx, game.ModeSpells, 42, "2024-05-02"); has {
		t.Fatal("HasAttempts true for another day")
	}

	// First append on the new day starts from an empty list.
	s.AppendAttempt(ctx, game.ModeSpells, 42, "2024-05-02", attempt("new", 2, false), false, false)
	got, _ := s.Attempts(ctx, game.ModeSpells, 42, "2024-05-02")
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("previous day leaked: %+v", got)
	}
}

func TestFlagsAreMonotoneAndFrozen(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())

	s.AppendAttempt(ctx, game.ModeTraps, 5, "2024-06-01", attempt("A1", 5, true), true, true)
	err := s.AppendAttempt(ctx, game.ModeTraps, 5, "2024-06-01", attempt("A2", 6, false), false, false)
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	st, _ := s.GetState(ctx, game.ModeTraps, 5, "2024-06-01")
	if !st.GameOver || !st.GameWon || len(st.Attempts) != 1 {
		t.Fatalf("finished record mutated: %+v", st)
	}
}

func TestHasAttempts(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())
	if has, _ := s.HasAttempts(ctx, game.ModeMonsters, 1, "2024-06-01"); has {
		t.Fatal("empty store has attempts")
	}
	s.SaveState(ctx, game.ModeMonsters, 1, "2024-06-01", State{})
	if has, _ := s.HasAttempts(ctx, game.ModeMonsters, 1, "2024-06-01"); has {
		t.Fatal("empty record counts as attempts")
	}
	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("A1", 2, false), false, false)
	if has, _ := s.HasAttempts(ctx, game.ModeMonsters, 1, "2024-06-01"); !has {
		t.Fatal("expected attempts")
	}
}

func TestLastUpdated(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := New(kv)
	fixed := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("A1", 2, false), false, false)
	raw, _ := kv.Get(ctx, BlobKey)
	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := b[game.ModeMonsters]["1"].LastUpdated; !got.Equal(fixed) {
		t.Fatalf("lastUpdated = %s", got)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())

	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-05-01", attempt("old", 2, false), false, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 2, "2024-05-31", attempt("recent", 2, false), false, false)
	s.AppendAttempt(ctx, game.ModeTraps, 3, "2024-05-02", attempt("old", 2, false), false, false)

	if err := s.Prune(ctx, "2024-06-01", 7); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if st, _ := s.GetState(ctx, game.ModeMonsters, 1, "2024-05-01"); st != nil {
		t.Error("old monsters record kept")
	}
	if st, _ := s.GetState(ctx, game.ModeMonsters, 2, "2024-05-31"); st == nil {
		t.Error("recent record removed")
	}

	h, _ := s.read(ctx)
	if _, ok := h[game.ModeTraps]; ok {
		t.Error("empty mode key kept")
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())
	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("a", 2, false), false, false)
	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("b", 1, true), true, true)
	s.AppendAttempt(ctx, game.ModeSpells, 9, "2024-06-01", attempt("c", 2, false), true, false)
	s.AppendAttempt(ctx, game.ModeTraps, 4, "2024-06-01", attempt("d", 2, false), false, false)

	got, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := Summary{TotalGames: 3, CompletedGames: 2, WonGames: 1, TotalAttempts: 4}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}
}

func TestCorruptBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	kv.Set(ctx, BlobKey, []byte(`["not", "a", "map"]`))
	s := New(kv)

	if st, err := s.GetState(ctx, game.ModeMonsters, 1, "2024-06-01"); err != nil || st != nil {
		t.Fatalf("corrupt blob: %+v, %v", st, err)
	}
	if err := s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("a", 2, false), false, false); err != nil {
		t.Fatalf("append over corrupt blob: %v", err)
	}
	if has, _ := s.HasAttempts(ctx, game.ModeMonsters, 1, "2024-06-01"); !has {
		t.Fatal("fresh history not written")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())
	s.AppendAttempt(ctx, game.ModeMonsters, 1, "2024-06-01", attempt("a", 2, false), false, false)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if sum, _ := s.Summary(ctx); sum.TotalGames != 0 {
		t.Fatalf("summary after clear: %+v", sum)
	}
}

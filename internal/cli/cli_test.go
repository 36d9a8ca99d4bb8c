package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("NODE_ENV", "")
	t.Setenv("GAME_TZ", "")
	t.Setenv("GAME_ROLLOVER_HOUR", "")
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		dbPath, dayAt, rotateDate = "", "", ""
		pruneDays = 30
	})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestDayCommand(t *testing.T) {
	out := run(t, "day", "--at", "2024-06-01T09:59:00Z")
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	// 11:59 in Paris: still the previous game day.
	if got["dayKey"] != "2024-05-31" || got["dayNumber"] != float64(152) {
		t.Fatalf("day = %v", got)
	}
	if got["remaining"] != "1m0s" {
		t.Fatalf("remaining = %v", got["remaining"])
	}
}

func TestRotateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	out := run(t, "--db", db, "rotate", "--date", "2024-06-01")
	if strings.Count(out, `"cardId"`) != 3 {
		t.Fatalf("expected three assignments:\n%s", out)
	}
	out = run(t, "--db", db, "rotate", "--date", "2024-06-01")
	if !strings.Contains(out, `"assigned": []`) {
		t.Fatalf("second rotation assigned again:\n%s", out)
	}
}

func TestPruneDevicesCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	out := run(t, "--db", db, "prune-devices", "--days", "7")
	if !strings.Contains(out, "deleted 0 blobs") {
		t.Fatalf("prune output: %q", out)
	}
}

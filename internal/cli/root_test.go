package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// run executes a fresh command tree against dbPath and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := RootCmd("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))

	err := root.Execute()
	return out.String(), err
}

func newTestDB(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return filepath.Join(t.TempDir(), "orbita.db")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := RootCmd("test")

	want := []string{"serve", "mission", "forecast", "assess", "decision", "watch", "db"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMissionCommands_Lifecycle(t *testing.T) {
	dbPath := newTestDB(t)

	if _, err := run(t, dbPath, "db", "seed"); err != nil {
		t.Fatalf("db seed failed: %v", err)
	}

	out, err := run(t, dbPath, "mission", "create", "Polar Relay", "--class", "GEO", "--altitude", "35786")
	if err != nil {
		t.Fatalf("mission create failed: %v", err)
	}
	if !strings.Contains(out, "✓ Created mission MISSION-") || !strings.Contains(out, "Polar Relay (GEO)") {
		t.Errorf("unexpected create output: %q", out)
	}

	out, err = run(t, dbPath, "mission", "list")
	if err != nil {
		t.Fatalf("mission list failed: %v", err)
	}
	if !strings.Contains(out, "MISSION-001") || !strings.Contains(out, "Polar Relay") {
		t.Errorf("list output missing missions: %q", out)
	}

	if _, err := run(t, dbPath, "mission", "stop", "MISSION-001"); err != nil {
		t.Errorf("mission stop failed: %v", err)
	}
	if _, err := run(t, dbPath, "mission", "report", "MISSION-001"); err != nil {
		t.Errorf("mission report failed: %v", err)
	}

	out, err = run(t, dbPath, "forecast", "MISSION-001")
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if !strings.Contains(out, "SURVIVES") && !strings.Contains(out, "AT RISK") {
		t.Errorf("forecast output has no verdict: %q", out)
	}
}

func TestMissionCommands_RejectBadIDs(t *testing.T) {
	dbPath := newTestDB(t)

	_, err := run(t, dbPath, "mission", "show", "7")
	if err == nil || !strings.Contains(err.Error(), "MISSION-007") {
		t.Errorf("expected short-ID hint, got %v", err)
	}

	_, err = run(t, dbPath, "mission", "show", "MISSION-404")
	if err == nil {
		t.Error("expected error for unknown mission")
	}

	_, err = run(t, dbPath, "decision", "verify", "MISSION-001", "abc")
	if err == nil || !strings.Contains(err.Error(), "invalid decision ID") {
		t.Errorf("expected invalid decision ID error, got %v", err)
	}
}

func TestAssessCmd(t *testing.T) {
	dbPath := newTestDB(t)

	out, err := run(t, dbPath, "assess", "--battery", "15")
	if err != nil {
		t.Fatalf("assess failed: %v", err)
	}
	if !strings.Contains(out, "ACTIVATE: Emergency Load Shedding protocol") {
		t.Errorf("assess output missing load shedding: %q", out)
	}

	out, err = run(t, dbPath, "assess")
	if err != nil {
		t.Fatalf("assess failed: %v", err)
	}
	if !strings.Contains(out, "Nominal") {
		t.Errorf("default snapshot should be nominal: %q", out)
	}
}

func TestWatch_NoActiveMissions(t *testing.T) {
	dbPath := newTestDB(t)

	_, err := run(t, dbPath, "watch")
	if err == nil || !strings.Contains(err.Error(), "no active missions") {
		t.Errorf("expected no active missions error, got %v", err)
	}
}

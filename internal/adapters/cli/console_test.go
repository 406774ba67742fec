package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/orbita/internal/core/decision"
	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ports/secondary"
)

func TestConsoleSubscriber(t *testing.T) {
	var buf bytes.Buffer
	sub := NewConsoleSubscriber(&buf)

	snap := telemetry.Initialize(telemetry.ClassLEO)
	if err := sub.Deliver(context.Background(), secondary.LiveUpdate{
		MissionID: "MISSION-001", Tick: 1, Telemetry: snap, Source: secondary.SourceSimulated,
	}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	snap.BatteryLevel = 12
	view := decision.NewView(decision.Assess(snap))
	if err := sub.Deliver(context.Background(), secondary.LiveUpdate{
		MissionID: "MISSION-001", Tick: 2, Telemetry: snap, Decision: &view, Source: secondary.SourceReal,
	}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "✓ MISSION-001 #1") || !strings.Contains(lines[0], "[SIM]") {
		t.Errorf("unexpected nominal line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "! MISSION-001 #2") || !strings.Contains(lines[1], "[REAL]") {
		t.Errorf("unexpected anomaly line %q", lines[1])
	}
	if !strings.Contains(lines[2], "ANOMALY") || !strings.Contains(lines[2], "Load Shedding") {
		t.Errorf("unexpected decision line %q", lines[2])
	}
}

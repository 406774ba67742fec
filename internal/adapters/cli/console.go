package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/example/orbita/internal/live"
	"github.com/example/orbita/internal/ports/secondary"
)

// ConsoleSubscriber prints live updates as one line per tick, plus the
// chosen action when a tick was anomalous. Used by `orbita watch`.
type ConsoleSubscriber struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSubscriber creates a subscriber writing to out.
func NewConsoleSubscriber(out io.Writer) *ConsoleSubscriber {
	return &ConsoleSubscriber{out: out}
}

// Deliver writes update. Loops of different missions may call it
// concurrently; lines are never interleaved.
func (c *ConsoleSubscriber) Deliver(ctx context.Context, update secondary.LiveUpdate) error {
	t := update.Telemetry

	status := color.New(color.FgGreen).Sprint("✓")
	if update.Decision != nil {
		status = color.New(color.FgRed).Sprint("!")
	}
	source := update.Source
	if source == secondary.SourceReal {
		source = color.New(color.FgCyan).Sprint(source)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.out, "%s %s #%-4d [%s] batt %6.2f%%  temp %6.2f°C  roll %6.2f°  lat %6.1fms\n",
		status, update.MissionID, update.Tick, source, t.BatteryLevel, t.ThermalState, t.OrientationRoll, t.SignalLatency)
	if err != nil {
		return err
	}

	if d := update.Decision; d != nil {
		_, err = fmt.Fprintf(c.out, "    %s %s → %s (%.2f, %s)\n",
			color.New(color.FgYellow).Sprint("ANOMALY"), d.AnomalyType, d.SelectedAction, d.Confidence, d.AutonomyMode)
	}
	return err
}

var _ live.Subscriber = (*ConsoleSubscriber)(nil)

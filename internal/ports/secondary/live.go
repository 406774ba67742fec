package secondary

import (
	"context"

	"github.com/example/orbita/internal/core/decision"
	"github.com/example/orbita/internal/core/telemetry"
)

// Telemetry source tags carried on every live update.
const (
	SourceSimulated = "SIM"
	SourceReal      = "REAL"
)

// TelemetrySource defines the secondary port for externally ingested telemetry.
type TelemetrySource interface {
	// Fetch returns the latest reading for a mission. ok is false when the
	// source has nothing new; the caller then falls back to simulation.
	Fetch(ctx context.Context, missionID string, class telemetry.VehicleClass) (s telemetry.Snapshot, ok bool, err error)
}

// LiveUpdate is the payload pushed to observers once per tick.
type LiveUpdate struct {
	MissionID string             `json:"mission_id"`
	Tick      uint64             `json:"tick"`
	// Telemetry is the sample the decision was evaluated on. Corrective
	// feedback is applied afterwards and shows up in the next tick.
	Telemetry telemetry.Snapshot `json:"telemetry"`
	Decision  *decision.View     `json:"decision"`
	Source    string             `json:"source"`
}

// Broadcaster defines the secondary port for best-effort live fan-out.
// Broadcast never fails from the caller's point of view.
type Broadcaster interface {
	Broadcast(ctx context.Context, missionID string, update LiveUpdate)
}

// Package mission contains the pure business logic for mission operations.
// This is part of the Functional Core - no I/O, only pure functions.
package mission

import (
	"fmt"
	"strings"

	"github.com/example/orbita/internal/core/telemetry"
)

// CreateContext provides the caller-supplied fields of a new mission.
type CreateContext struct {
	Name           string
	VehicleClass   string
	AltitudeKm     float64
	InclinationDeg float64
}

// MissionStateContext provides context for state-based mission guards.
// Populated by the caller with pre-fetched mission state.
type MissionStateContext struct {
	MissionID     string
	MissionExists bool
	IsActive      bool
}

// VerifyContext provides context for decision outcome verification guards.
type VerifyContext struct {
	DecisionID     int64
	DecisionExists bool
	MissionID      string
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanCreateMission evaluates whether a mission can be created from ctx.
// Rules: name is required, the vehicle class must be LEO, MEO or GEO,
// altitude cannot be negative and inclination must lie in [0, 180].
func CanCreateMission(ctx CreateContext) GuardResult {
	if strings.TrimSpace(ctx.Name) == "" {
		return GuardResult{Allowed: false, Reason: "mission name is required"}
	}
	if !telemetry.VehicleClass(ctx.VehicleClass).Valid() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown vehicle class %q (want one of %s)", ctx.VehicleClass, classList()),
		}
	}
	if ctx.AltitudeKm < 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("altitude must not be negative (got %.1f km)", ctx.AltitudeKm),
		}
	}
	if ctx.InclinationDeg < 0 || ctx.InclinationDeg > 180 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("inclination must be within [0, 180] degrees (got %.1f)", ctx.InclinationDeg),
		}
	}
	return GuardResult{Allowed: true}
}

// CanStartMission evaluates whether a mission loop can be started.
// Rule: Mission must exist. Starting an active mission is a no-op.
func CanStartMission(ctx MissionStateContext) GuardResult {
	if !ctx.MissionExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Mission %s not found", ctx.MissionID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanStopMission evaluates whether a mission loop can be stopped.
// Rule: Mission must exist. Stopping an inactive mission is a no-op.
func CanStopMission(ctx MissionStateContext) GuardResult {
	if !ctx.MissionExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Mission %s not found", ctx.MissionID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanVerifyDecision evaluates whether a decision outcome can be recorded.
// Rule: the decision must exist and belong to the given mission.
func CanVerifyDecision(ctx VerifyContext) GuardResult {
	if !ctx.DecisionExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Decision %d not found for mission %s", ctx.DecisionID, ctx.MissionID),
		}
	}
	return GuardResult{Allowed: true}
}

func classList() string {
	classes := telemetry.Classes()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

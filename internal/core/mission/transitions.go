// Package mission contains the pure business logic for mission operations.
// This is part of the Functional Core - no I/O, only pure functions.
package mission

import (
	"time"

	"github.com/example/orbita/internal/core/telemetry"
)

// MissionStatus is the health label stored on a mission.
type MissionStatus string

const (
	StatusNominal  MissionStatus = "nominal"
	StatusWarning  MissionStatus = "warning"
	StatusCritical MissionStatus = "critical"
)

// Valid reports whether s is a known status label.
func (s MissionStatus) Valid() bool {
	switch s {
	case StatusNominal, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// InitialStatus returns the initial status for a new mission.
func InitialStatus() MissionStatus {
	return StatusNominal
}

// ActivationResult captures the persisted effect of starting or stopping
// a mission.
type ActivationResult struct {
	IsActive  bool
	StartedAt *time.Time // Set only when the mission is (re)activated
}

// ApplyActivation returns the result of setting the active flag.
// Activating stamps StartedAt with now; deactivating leaves it untouched.
func ApplyActivation(active bool, now time.Time) ActivationResult {
	result := ActivationResult{IsActive: active}
	if active {
		result.StartedAt = &now
	}
	return result
}

// DefaultInterval returns the tick interval for a vehicle class.
// Near-Earth vehicles tick faster than MEO and GEO.
func DefaultInterval(class telemetry.VehicleClass) time.Duration {
	if class == telemetry.ClassLEO {
		return 2 * time.Second
	}
	return 3 * time.Second
}

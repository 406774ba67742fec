// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"

	"github.com/example/orbita/internal/core/decision"
	"github.com/example/orbita/internal/core/forecast"
	"github.com/example/orbita/internal/core/telemetry"
)

// MissionService defines the primary port for mission operations.
// Implementations live in the application layer; the CLI and HTTP
// adapters drive it.
type MissionService interface {
	// CreateMission persists a new mission and starts its autonomy loop.
	CreateMission(ctx context.Context, req CreateMissionRequest) (*CreateMissionResponse, error)

	// GetMission retrieves a mission by ID.
	GetMission(ctx context.Context, missionID string) (*Mission, error)

	// ListMissions lists missions with optional filters.
	ListMissions(ctx context.Context, filters MissionFilters) ([]*Mission, error)

	// StartMission (re)activates a mission and ensures its loop is running.
	StartMission(ctx context.Context, missionID string) (*Mission, error)

	// StopMission cancels a mission's loop and deactivates it.
	StopMission(ctx context.Context, missionID string) (*Mission, error)

	// GetReport summarises the decisions taken for a mission.
	GetReport(ctx context.Context, missionID string) (*MissionReport, error)

	// ForecastPower projects a mission's battery over the next 24 hours.
	ForecastPower(ctx context.Context, missionID string) (*ForecastResponse, error)

	// Analyze runs the decision engine on a caller-supplied snapshot.
	Analyze(ctx context.Context, snapshot telemetry.Snapshot) (*decision.View, error)

	// VerifyDecision records an external auditor's verdict on a decision.
	VerifyDecision(ctx context.Context, req VerifyDecisionRequest) error

	// ResumeActive restarts loops for every mission flagged active.
	ResumeActive(ctx context.Context) (int, error)
}

// CreateMissionRequest contains parameters for creating a mission.
type CreateMissionRequest struct {
	Name           string  `json:"name"`
	VehicleClass   string  `json:"satellite_type"`
	AltitudeKm     float64 `json:"altitude"`
	InclinationDeg float64 `json:"inclination"`
}

// CreateMissionResponse contains the result of creating a mission.
type CreateMissionResponse struct {
	MissionID string   `json:"mission_id"`
	Mission   *Mission `json:"mission"`
}

// Mission represents a mission entity at the port boundary.
type Mission struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	VehicleClass   string  `json:"satellite_type"`
	Status         string  `json:"status"`
	IsActive       bool    `json:"is_active"`
	Running        bool    `json:"running"`
	AltitudeKm     float64 `json:"altitude"`
	InclinationDeg float64 `json:"inclination"`
	CreatedAt      string  `json:"created_at"`
	StartedAt      string  `json:"start_time,omitempty"`
}

// MissionFilters contains filter options for listing missions.
type MissionFilters struct {
	ActiveOnly bool
	Limit      int
}

// Decision is a persisted decision at the port boundary.
type Decision struct {
	ID              int64                     `json:"id"`
	Timestamp       string                    `json:"timestamp"`
	AnomalyDetected string                    `json:"anomaly_detected"`
	ActionTaken     string                    `json:"action_taken"`
	Reasoning       string                    `json:"reasoning"`
	ConfidenceScore float64                   `json:"confidence_score"`
	RootCause       string                    `json:"root_cause,omitempty"`
	RecoveryOptions []decision.RecoveryOption `json:"recovery_options,omitempty"`
	OutcomeVerified *bool                     `json:"outcome_verified"`
}

// MissionReport is the decision summary of one mission.
type MissionReport struct {
	MissionID      string      `json:"mission_id"`
	Name           string      `json:"name"`
	VehicleClass   string      `json:"satellite_type"`
	Status         string      `json:"status"`
	TotalAnomalies int         `json:"total_anomalies"`
	Decisions      []*Decision `json:"decisions"`
}

// Battery provenance for a forecast.
const (
	BatteryFromLoop      = "live"
	BatteryFromTelemetry = "telemetry"
	BatteryDefault       = "default"
)

// DefaultForecastBattery is used when a mission has no telemetry yet.
const DefaultForecastBattery = 85.0

// ForecastResponse wraps a power forecast with its starting point.
type ForecastResponse struct {
	MissionID     string                 `json:"mission_id"`
	StartBattery  float64                `json:"start_battery"`
	BatterySource string                 `json:"battery_source"`
	Forecast      forecast.PowerForecast `json:"forecast"`
}

// VerifyDecisionRequest contains an auditor verdict.
type VerifyDecisionRequest struct {
	MissionID  string
	DecisionID int64
	Verified   bool
}

// GuardError is returned when a business guard rejects a request.
// NotFound is set when the rejection is a missing mission or decision.
type GuardError struct {
	Reason   string
	NotFound bool
}

func (e *GuardError) Error() string { return e.Reason }

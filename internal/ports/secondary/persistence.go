// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned (wrapped with the looked-up key) when a record
// does not exist. Callers test for it with errors.Is.
var ErrNotFound = errors.New("not found")

// PersistenceError reports a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// MissionRepository defines the secondary port for mission persistence.
type MissionRepository interface {
	// Create persists a new mission.
	Create(ctx context.Context, mission *MissionRecord) error

	// GetByID retrieves a mission by its ID.
	GetByID(ctx context.Context, id string) (*MissionRecord, error)

	// List retrieves missions matching the given filters.
	List(ctx context.Context, filters MissionFilters) ([]*MissionRecord, error)

	// SetActive updates the active flag. startedAt is written only when non-nil.
	SetActive(ctx context.Context, id string, active bool, startedAt *time.Time) error

	// GetNextID returns the next available mission ID.
	GetNextID(ctx context.Context) (string, error)
}

// MissionRecord represents a mission as stored in persistence.
type MissionRecord struct {
	ID             string
	Name           string
	VehicleClass   string
	Status         string
	IsActive       bool
	AltitudeKm     float64
	InclinationDeg float64
	CreatedAt      time.Time
	StartedAt      time.Time // zero until first start
}

// MissionFilters contains filter options for querying missions.
type MissionFilters struct {
	ActiveOnly bool
	Limit      int
}

// TelemetryRepository defines the secondary port for the telemetry log.
type TelemetryRepository interface {
	// Append stores one sample and sets its ID.
	Append(ctx context.Context, sample *TelemetryRecord) error

	// Latest returns the newest sample of a mission, or ErrNotFound.
	Latest(ctx context.Context, missionID string) (*TelemetryRecord, error)

	// ListByMission returns up to limit samples, newest first.
	ListByMission(ctx context.Context, missionID string, limit int) ([]*TelemetryRecord, error)
}

// TelemetryRecord is one persisted telemetry sample.
type TelemetryRecord struct {
	ID               int64
	MissionID        string
	Timestamp        time.Time
	BatteryLevel     float64
	ThermalState     float64
	OrientationRoll  float64
	OrientationPitch float64
	OrientationYaw   float64
	SignalLatency    float64
	IsStable         bool
}

// DecisionRepository defines the secondary port for the decision log.
// Decisions are append-only; only the outcome flag may change later.
type DecisionRepository interface {
	// Append stores one decision and sets its ID.
	Append(ctx context.Context, decision *DecisionRecord) error

	// GetByID retrieves a decision, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*DecisionRecord, error)

	// ListByMission returns a mission's decisions in insertion order.
	ListByMission(ctx context.Context, missionID string) ([]*DecisionRecord, error)

	// CountByMission returns the number of decisions recorded for a mission.
	CountByMission(ctx context.Context, missionID string) (int, error)

	// SetOutcomeVerified records the external auditor's verdict.
	SetOutcomeVerified(ctx context.Context, id int64, verified bool) error
}

// DecisionRecord is one persisted anomaly decision.
type DecisionRecord struct {
	ID              int64
	MissionID       string
	Timestamp       time.Time
	AnomalyDetected string
	ActionTaken     string
	Reasoning       string
	ConfidenceScore float64
	RootCause       string
	RecoveryOptions []RecoveryOptionRecord
	OutcomeVerified *bool // nil until audited
}

// RecoveryOptionRecord is one considered strategy stored with a decision.
type RecoveryOptionRecord struct {
	Strategy       string `json:"strategy"`
	RiskLevel      string `json:"risk_level"`
	ExpectedImpact string `json:"expected_impact"`
}

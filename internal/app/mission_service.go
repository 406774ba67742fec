package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/orbita/internal/core/decision"
	"github.com/example/orbita/internal/core/forecast"
	coremission "github.com/example/orbita/internal/core/mission"
	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ctxutil"
	"github.com/example/orbita/internal/ports/primary"
	"github.com/example/orbita/internal/ports/secondary"
)

// LoopController is the part of the Scheduler the mission service drives.
type LoopController interface {
	Start(missionID string, class telemetry.VehicleClass) (bool, error)
	Stop(missionID string) bool
	Running(missionID string) bool
	Current(missionID string) (telemetry.Snapshot, bool)
}

var _ LoopController = (*Scheduler)(nil)

// MissionServiceImpl implements the MissionService interface.
type MissionServiceImpl struct {
	missionRepo   secondary.MissionRepository
	telemetryRepo secondary.TelemetryRepository
	decisionRepo  secondary.DecisionRepository
	loops         LoopController
	logger        *slog.Logger
	now           func() time.Time

	// createMu serialises ID allocation with the insert that consumes it.
	createMu sync.Mutex
}

// NewMissionService creates a new MissionService with injected dependencies.
func NewMissionService(
	missionRepo secondary.MissionRepository,
	telemetryRepo secondary.TelemetryRepository,
	decisionRepo secondary.DecisionRepository,
	loops LoopController,
	logger *slog.Logger,
) *MissionServiceImpl {
	return &MissionServiceImpl{
		missionRepo:   missionRepo,
		telemetryRepo: telemetryRepo,
		decisionRepo:  decisionRepo,
		loops:         loops,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateMission creates a new mission and starts its autonomy loop.
func (s *MissionServiceImpl) CreateMission(ctx context.Context, req primary.CreateMissionRequest) (*primary.CreateMissionResponse, error) {
	// 1. Check guard
	guardCtx := coremission.CreateContext{
		Name:           req.Name,
		VehicleClass:   req.VehicleClass,
		AltitudeKm:     req.AltitudeKm,
		InclinationDeg: req.InclinationDeg,
	}
	if result := coremission.CanCreateMission(guardCtx); !result.Allowed {
		return nil, &primary.GuardError{Reason: result.Reason}
	}

	// 2. Allocate ID and persist, as one step
	activation := coremission.ApplyActivation(true, s.now())
	record, err := s.insertMission(ctx, req, activation)
	if err != nil {
		return nil, err
	}

	// 3. Launch the loop
	if _, err := s.loops.Start(record.ID, telemetry.VehicleClass(record.VehicleClass)); err != nil {
		return nil, fmt.Errorf("failed to start loop for %s: %w", record.ID, err)
	}
	ctxutil.Logger(ctx, s.logger).Info("mission created", "mission_id", record.ID, "vehicle_class", record.VehicleClass)

	return &primary.CreateMissionResponse{
		MissionID: record.ID,
		Mission:   s.recordToMission(record),
	}, nil
}

func (s *MissionServiceImpl) insertMission(ctx context.Context, req primary.CreateMissionRequest, activation coremission.ActivationResult) (*secondary.MissionRecord, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	nextID, err := s.missionRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mission ID: %w", err)
	}

	record := &secondary.MissionRecord{
		ID:             nextID,
		Name:           req.Name,
		VehicleClass:   req.VehicleClass,
		Status:         string(coremission.InitialStatus()),
		IsActive:       activation.IsActive,
		AltitudeKm:     req.AltitudeKm,
		InclinationDeg: req.InclinationDeg,
		CreatedAt:      *activation.StartedAt,
		StartedAt:      *activation.StartedAt,
	}
	if err := s.missionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}
	return record, nil
}

// GetMission retrieves a mission by ID.
func (s *MissionServiceImpl) GetMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	record, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return s.recordToMission(record), nil
}

// ListMissions lists missions with optional filters.
func (s *MissionServiceImpl) ListMissions(ctx context.Context, filters primary.MissionFilters) ([]*primary.Mission, error) {
	records, err := s.missionRepo.List(ctx, secondary.MissionFilters{
		ActiveOnly: filters.ActiveOnly,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	missions := make([]*primary.Mission, len(records))
	for i, r := range records {
		missions[i] = s.recordToMission(r)
	}
	return missions, nil
}

// StartMission (re)activates a mission and ensures its loop is running.
func (s *MissionServiceImpl) StartMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	// 1. Fetch state for guard
	record, err := s.lookupMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	// 2. Check guard
	guardCtx := coremission.MissionStateContext{
		MissionID:     missionID,
		MissionExists: record != nil,
	}
	if record != nil {
		guardCtx.IsActive = record.IsActive
	}
	if result := coremission.CanStartMission(guardCtx); !result.Allowed {
		return nil, &primary.GuardError{Reason: result.Reason, NotFound: !guardCtx.MissionExists}
	}

	// 3. Persist activation
	activation := coremission.ApplyActivation(true, s.now())
	if err := s.missionRepo.SetActive(ctx, missionID, activation.IsActive, activation.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to activate mission: %w", err)
	}
	record.IsActive = activation.IsActive
	record.StartedAt = *activation.StartedAt

	// 4. Ensure the loop runs
	started, err := s.loops.Start(missionID, telemetry.VehicleClass(record.VehicleClass))
	if err != nil {
		return nil, fmt.Errorf("failed to start loop for %s: %w", missionID, err)
	}
	if started {
		ctxutil.Logger(ctx, s.logger).Info("mission started", "mission_id", missionID)
	}

	return s.recordToMission(record), nil
}

// StopMission cancels a mission's loop and deactivates it.
func (s *MissionServiceImpl) StopMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	record, err := s.lookupMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	guardCtx := coremission.MissionStateContext{
		MissionID:     missionID,
		MissionExists: record != nil,
	}
	if record != nil {
		guardCtx.IsActive = record.IsActive
	}
	if result := coremission.CanStopMission(guardCtx); !result.Allowed {
		return nil, &primary.GuardError{Reason: result.Reason, NotFound: !guardCtx.MissionExists}
	}

	if s.loops.Stop(missionID) {
		ctxutil.Logger(ctx, s.logger).Info("mission stopped", "mission_id", missionID)
	}

	activation := coremission.ApplyActivation(false, s.now())
	if err := s.missionRepo.SetActive(ctx, missionID, activation.IsActive, activation.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to deactivate mission: %w", err)
	}
	record.IsActive = activation.IsActive

	return s.recordToMission(record), nil
}

// GetReport summarises the decisions taken for a mission.
func (s *MissionServiceImpl) GetReport(ctx context.Context, missionID string) (*primary.MissionReport, error) {
	record, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	decisions, err := s.decisionRepo.ListByMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}

	report := &primary.MissionReport{
		MissionID:      record.ID,
		Name:           record.Name,
		VehicleClass:   record.VehicleClass,
		Status:         record.Status,
		TotalAnomalies: len(decisions),
		Decisions:      make([]*primary.Decision, len(decisions)),
	}
	for i, d := range decisions {
		report.Decisions[i] = recordToDecision(d)
	}
	return report, nil
}

// ForecastPower projects a mission's battery over the next 24 hours.
// The starting battery comes from the running loop, else the latest
// persisted sample, else DefaultForecastBattery.
func (s *MissionServiceImpl) ForecastPower(ctx context.Context, missionID string) (*primary.ForecastResponse, error) {
	record, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	battery, source := primary.DefaultForecastBattery, primary.BatteryDefault
	if snap, ok := s.loops.Current(missionID); ok {
		battery, source = snap.BatteryLevel, primary.BatteryFromLoop
	} else {
		latest, err := s.telemetryRepo.Latest(ctx, missionID)
		switch {
		case err == nil:
			battery, source = latest.BatteryLevel, primary.BatteryFromTelemetry
		case !errors.Is(err, secondary.ErrNotFound):
			return nil, fmt.Errorf("failed to read latest telemetry: %w", err)
		}
	}

	return &primary.ForecastResponse{
		MissionID:     missionID,
		StartBattery:  battery,
		BatterySource: source,
		Forecast:      forecast.Power(battery, forecast.OrbitalPeriodMin(record.AltitudeKm), s.now()),
	}, nil
}

// Analyze runs the decision engine on a caller-supplied snapshot.
func (s *MissionServiceImpl) Analyze(ctx context.Context, snapshot telemetry.Snapshot) (*decision.View, error) {
	view := decision.NewView(decision.Assess(telemetry.Normalize(snapshot)))
	return &view, nil
}

// VerifyDecision records an external auditor's verdict on a decision.
func (s *MissionServiceImpl) VerifyDecision(ctx context.Context, req primary.VerifyDecisionRequest) error {
	d, err := s.decisionRepo.GetByID(ctx, req.DecisionID)
	if err != nil && !errors.Is(err, secondary.ErrNotFound) {
		return fmt.Errorf("failed to get decision: %w", err)
	}

	guardCtx := coremission.VerifyContext{
		DecisionID:     req.DecisionID,
		DecisionExists: d != nil && d.MissionID == req.MissionID,
		MissionID:      req.MissionID,
	}
	if result := coremission.CanVerifyDecision(guardCtx); !result.Allowed {
		return &primary.GuardError{Reason: result.Reason, NotFound: true}
	}

	if err := s.decisionRepo.SetOutcomeVerified(ctx, req.DecisionID, req.Verified); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// ResumeActive restarts loops for every mission flagged active.
// It returns the number of loops started.
func (s *MissionServiceImpl) ResumeActive(ctx context.Context) (int, error) {
	records, err := s.missionRepo.List(ctx, secondary.MissionFilters{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list active missions: %w", err)
	}

	resumed := 0
	for _, r := range records {
		started, err := s.loops.Start(r.ID, telemetry.VehicleClass(r.VehicleClass))
		if err != nil {
			return resumed, fmt.Errorf("failed to resume %s: %w", r.ID, err)
		}
		if started {
			resumed++
		}
	}
	if resumed > 0 {
		s.logger.Info("resumed active missions", "count", resumed)
	}
	return resumed, nil
}

// lookupMission returns nil, nil when the mission does not exist.
func (s *MissionServiceImpl) lookupMission(ctx context.Context, missionID string) (*secondary.MissionRecord, error) {
	record, err := s.missionRepo.GetByID(ctx, missionID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return record, nil
}

// Helper methods

func (s *MissionServiceImpl) recordToMission(r *secondary.MissionRecord) *primary.Mission {
	m := &primary.Mission{
		ID:             r.ID,
		Name:           r.Name,
		VehicleClass:   r.VehicleClass,
		Status:         r.Status,
		IsActive:       r.IsActive,
		Running:        s.loops.Running(r.ID),
		AltitudeKm:     r.AltitudeKm,
		InclinationDeg: r.InclinationDeg,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if !r.StartedAt.IsZero() {
		m.StartedAt = r.StartedAt.Format(time.RFC3339)
	}
	return m
}

func recordToDecision(r *secondary.DecisionRecord) *primary.Decision {
	d := &primary.Decision{
		ID:              r.ID,
		Timestamp:       r.Timestamp.Format(time.RFC3339),
		AnomalyDetected: r.AnomalyDetected,
		ActionTaken:     r.ActionTaken,
		Reasoning:       r.Reasoning,
		ConfidenceScore: r.ConfidenceScore,
		RootCause:       r.RootCause,
		OutcomeVerified: r.OutcomeVerified,
	}
	for _, o := range r.RecoveryOptions {
		d.RecoveryOptions = append(d.RecoveryOptions, decision.RecoveryOption{
			Strategy:       o.Strategy,
			RiskLevel:      o.RiskLevel,
			ExpectedImpact: o.ExpectedImpact,
		})
	}
	return d
}

// Ensure MissionServiceImpl implements the interface
var _ primary.MissionService = (*MissionServiceImpl)(nil)

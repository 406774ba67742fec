package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/orbita/internal/core/decision"
	"github.com/example/orbita/internal/core/forecast"
	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockMissionService implements primary.MissionService for testing
type mockMissionService struct {
	createMissionFn func(ctx context.Context, req primary.CreateMissionRequest) (*primary.CreateMissionResponse, error)
	listMissionsFn  func(ctx context.Context, filters primary.MissionFilters) ([]*primary.Mission, error)
	getMissionFn    func(ctx context.Context, missionID string) (*primary.Mission, error)
	startMissionFn  func(ctx context.Context, missionID string) (*primary.Mission, error)
	getReportFn     func(ctx context.Context, missionID string) (*primary.MissionReport, error)
	verifyFn        func(ctx context.Context, req primary.VerifyDecisionRequest) error

	// Track calls for verification
	lastCreateReq primary.CreateMissionRequest
	lastFilters   primary.MissionFilters
	lastVerifyReq primary.VerifyDecisionRequest
	stopped       []string
}

func (m *mockMissionService) CreateMission(ctx context.Context, req primary.CreateMissionRequest) (*primary.CreateMissionResponse, error) {
	m.lastCreateReq = req
	if m.createMissionFn != nil {
		return m.createMissionFn(ctx, req)
	}
	return &primary.CreateMissionResponse{
		MissionID: "MISSION-001",
		Mission:   &primary.Mission{ID: "MISSION-001", Name: req.Name, VehicleClass: req.VehicleClass},
	}, nil
}

func (m *mockMissionService) ListMissions(ctx context.Context, filters primary.MissionFilters) ([]*primary.Mission, error) {
	m.lastFilters = filters
	if m.listMissionsFn != nil {
		return m.listMissionsFn(ctx, filters)
	}
	return []*primary.Mission{}, nil
}

func (m *mockMissionService) GetMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	if m.getMissionFn != nil {
		return m.getMissionFn(ctx, missionID)
	}
	return &primary.Mission{ID: missionID, Name: "Test Mission", VehicleClass: "LEO", Status: "nominal"}, nil
}

func (m *mockMissionService) StartMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	if m.startMissionFn != nil {
		return m.startMissionFn(ctx, missionID)
	}
	return &primary.Mission{ID: missionID, IsActive: true, Running: true}, nil
}

func (m *mockMissionService) StopMission(ctx context.Context, missionID string) (*primary.Mission, error) {
	m.stopped = append(m.stopped, missionID)
	return &primary.Mission{ID: missionID}, nil
}

func (m *mockMissionService) GetReport(ctx context.Context, missionID string) (*primary.MissionReport, error) {
	if m.getReportFn != nil {
		return m.getReportFn(ctx, missionID)
	}
	return &primary.MissionReport{MissionID: missionID, Name: "Test Mission", VehicleClass: "LEO", Status: "nominal"}, nil
}

func (m *mockMissionService) ForecastPower(ctx context.Context, missionID string) (*primary.ForecastResponse, error) {
	return &primary.ForecastResponse{
		MissionID:     missionID,
		StartBattery:  5,
		BatterySource: primary.BatteryFromTelemetry,
		Forecast:      forecast.Power(5, 90, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}, nil
}

func (m *mockMissionService) Analyze(ctx context.Context, snapshot telemetry.Snapshot) (*decision.View, error) {
	view := decision.NewView(decision.Assess(snapshot))
	return &view, nil
}

func (m *mockMissionService) VerifyDecision(ctx context.Context, req primary.VerifyDecisionRequest) error {
	m.lastVerifyReq = req
	if m.verifyFn != nil {
		return m.verifyFn(ctx, req)
	}
	return nil
}

func (m *mockMissionService) ResumeActive(ctx context.Context) (int, error) {
	return 0, nil
}

// ============================================================================
// Create Tests
// ============================================================================

func TestMissionAdapter_Create_Success(t *testing.T) {
	mock := &mockMissionService{}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	_, err := adapter.Create(context.Background(), "Aurora", "LEO", 550, 53)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastCreateReq.Name != "Aurora" || mock.lastCreateReq.VehicleClass != "LEO" {
		t.Errorf("unexpected request %+v", mock.lastCreateReq)
	}
	if mock.lastCreateReq.AltitudeKm != 550 || mock.lastCreateReq.InclinationDeg != 53 {
		t.Errorf("orbit not forwarded: %+v", mock.lastCreateReq)
	}
	if !strings.Contains(buf.String(), "Created mission MISSION-001") {
		t.Errorf("expected output to contain 'Created mission MISSION-001', got '%s'", buf.String())
	}
}

func TestMissionAdapter_Create_ServiceError(t *testing.T) {
	mock := &mockMissionService{
		createMissionFn: func(ctx context.Context, req primary.CreateMissionRequest) (*primary.CreateMissionResponse, error) {
			return nil, &primary.GuardError{Reason: `unknown vehicle class "HEO"`}
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	_, err := adapter.Create(context.Background(), "Test", "HEO", 0, 0)

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unknown vehicle class") {
		t.Errorf("expected error to contain guard message, got '%s'", err.Error())
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got '%s'", buf.String())
	}
}

// ============================================================================
// List / Show Tests
// ============================================================================

func TestMissionAdapter_List_WithResults(t *testing.T) {
	mock := &mockMissionService{
		listMissionsFn: func(ctx context.Context, filters primary.MissionFilters) ([]*primary.Mission, error) {
			return []*primary.Mission{
				{ID: "MISSION-001", Name: "First", VehicleClass: "LEO", Status: "nominal", IsActive: true, Running: true},
				{ID: "MISSION-002", Name: "Second", VehicleClass: "GEO", Status: "nominal"},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	if err := adapter.List(context.Background(), true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !mock.lastFilters.ActiveOnly {
		t.Error("expected ActiveOnly filter to be forwarded")
	}
	out := buf.String()
	for _, want := range []string{"MISSION-001", "running", "MISSION-002", "stopped", "Second"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, out)
		}
	}
}

func TestMissionAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewMissionAdapter(&mockMissionService{}, &buf)

	if err := adapter.List(context.Background(), false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No missions found") {
		t.Errorf("expected 'No missions found', got '%s'", buf.String())
	}
}

func TestMissionAdapter_Show_NotFound(t *testing.T) {
	mock := &mockMissionService{
		getMissionFn: func(ctx context.Context, missionID string) (*primary.Mission, error) {
			return nil, errors.New("mission MISSION-999: not found")
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	_, err := adapter.Show(context.Background(), "MISSION-999")

	if err == nil || !strings.Contains(err.Error(), "failed to get mission") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestMissionAdapter_Show_Success(t *testing.T) {
	mock := &mockMissionService{
		getMissionFn: func(ctx context.Context, missionID string) (*primary.Mission, error) {
			return &primary.Mission{
				ID: missionID, Name: "Aurora", VehicleClass: "LEO", Status: "nominal",
				AltitudeKm: 550, InclinationDeg: 53, CreatedAt: "2026-03-01T00:00:00Z", StartedAt: "2026-03-01T00:05:00Z",
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	if _, err := adapter.Show(context.Background(), "MISSION-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Mission: MISSION-001", "Aurora", "550 km", "Started: 2026-03-01T00:05:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, out)
		}
	}
}

// ============================================================================
// Command Tests
// ============================================================================

func TestMissionAdapter_StartStop(t *testing.T) {
	mock := &mockMissionService{}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)
	ctx := context.Background()

	if err := adapter.Start(ctx, "MISSION-001"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := adapter.Stop(ctx, "MISSION-001"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if !strings.Contains(buf.String(), "✓ Mission MISSION-001 started") || !strings.Contains(buf.String(), "✓ Mission MISSION-001 stopped") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
	if len(mock.stopped) != 1 {
		t.Errorf("expected one stop call, got %d", len(mock.stopped))
	}
}

func TestMissionAdapter_Start_NotFound(t *testing.T) {
	mock := &mockMissionService{
		startMissionFn: func(ctx context.Context, missionID string) (*primary.Mission, error) {
			return nil, &primary.GuardError{Reason: "Mission MISSION-404 not found", NotFound: true}
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	err := adapter.Start(context.Background(), "MISSION-404")

	if err == nil || err.Error() != "Mission MISSION-404 not found" {
		t.Errorf("expected guard error, got %v", err)
	}
}

func TestMissionAdapter_Report(t *testing.T) {
	verified := true
	mock := &mockMissionService{
		getReportFn: func(ctx context.Context, missionID string) (*primary.MissionReport, error) {
			return &primary.MissionReport{
				MissionID:      missionID,
				Name:           "Aurora",
				VehicleClass:   "LEO",
				Status:         "nominal",
				TotalAnomalies: 1,
				Decisions: []*primary.Decision{{
					ID:              3,
					AnomalyDetected: "Battery cell impedance anomaly",
					ActionTaken:     "ACTIVATE: Emergency Load Shedding protocol",
					ConfidenceScore: 0.96,
					OutcomeVerified: &verified,
				}},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	if err := adapter.Report(context.Background(), "MISSION-001"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Anomalies: 1", "#3", "Emergency Load Shedding", "0.96", "[verified]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, out)
		}
	}
}

func TestMissionAdapter_Forecast_AtRisk(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewMissionAdapter(&mockMissionService{}, &buf)

	if err := adapter.Forecast(context.Background(), "MISSION-001"); err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "AT RISK") {
		t.Errorf("a 5%% start should be at risk, got '%s'", out)
	}
	if lines := strings.Count(out, "Sunlight") + strings.Count(out, "Eclipse"); lines != forecast.HorizonHours {
		t.Errorf("expected %d hourly lines, got %d", forecast.HorizonHours, lines)
	}
}

func TestMissionAdapter_Assess(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewMissionAdapter(&mockMissionService{}, &buf)

	err := adapter.Assess(context.Background(), telemetry.Snapshot{BatteryLevel: 90, ThermalState: 20, SignalLatency: 50, IsStable: false})
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Reaction Wheel Desaturation") {
		t.Errorf("expected attitude action, got '%s'", buf.String())
	}
}

func TestMissionAdapter_Verify(t *testing.T) {
	mock := &mockMissionService{}
	var buf bytes.Buffer
	adapter := NewMissionAdapter(mock, &buf)

	if err := adapter.Verify(context.Background(), "MISSION-001", 4, false); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if mock.lastVerifyReq.DecisionID != 4 || mock.lastVerifyReq.Verified {
		t.Errorf("unexpected request %+v", mock.lastVerifyReq)
	}
	if !strings.Contains(buf.String(), "[rejected]") {
		t.Errorf("expected rejected verdict, got '%s'", buf.String())
	}
}

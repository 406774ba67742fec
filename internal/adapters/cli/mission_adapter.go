// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ports/primary"
)

// MissionAdapter is a thin adapter that translates CLI operations to MissionService calls.
// It depends only on the MissionService interface, enabling easy testing with mocks.
type MissionAdapter struct {
	service primary.MissionService
	out     io.Writer
}

// NewMissionAdapter creates a new MissionAdapter with the given service.
func NewMissionAdapter(service primary.MissionService, out io.Writer) *MissionAdapter {
	return &MissionAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new mission and starts its loop.
func (a *MissionAdapter) Create(ctx context.Context, name, vehicleClass string, altitudeKm, inclinationDeg float64) (*primary.Mission, error) {
	resp, err := a.service.CreateMission(ctx, primary.CreateMissionRequest{
		Name:           name,
		VehicleClass:   vehicleClass,
		AltitudeKm:     altitudeKm,
		InclinationDeg: inclinationDeg,
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created mission %s: %s (%s)\n", resp.MissionID, resp.Mission.Name, resp.Mission.VehicleClass)
	return resp.Mission, nil
}

// List lists missions, optionally only the active ones.
func (a *MissionAdapter) List(ctx context.Context, activeOnly bool) error {
	missions, err := a.service.ListMissions(ctx, primary.MissionFilters{
		ActiveOnly: activeOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to list missions: %w", err)
	}

	if len(missions) == 0 {
		fmt.Fprintln(a.out, "No missions found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-13s %-5s %-9s %-8s %s\n", "ID", "CLASS", "STATUS", "STATE", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, m := range missions {
		fmt.Fprintf(a.out, "%-13s %-5s %-9s %-8s %s\n", m.ID, m.VehicleClass, m.Status, activityLabel(m), m.Name)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single mission.
func (a *MissionAdapter) Show(ctx context.Context, missionID string) (*primary.Mission, error) {
	mission, err := a.service.GetMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}

	fmt.Fprintf(a.out, "\nMission: %s\n", mission.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", mission.Name)
	fmt.Fprintf(a.out, "Class:   %s\n", mission.VehicleClass)
	fmt.Fprintf(a.out, "Status:  %s\n", mission.Status)
	fmt.Fprintf(a.out, "State:   %s\n", activityLabel(mission))
	if mission.AltitudeKm > 0 {
		fmt.Fprintf(a.out, "Orbit:   %.0f km @ %.1f°\n", mission.AltitudeKm, mission.InclinationDeg)
	}
	fmt.Fprintf(a.out, "Created: %s\n", mission.CreatedAt)
	if mission.StartedAt != "" {
		fmt.Fprintf(a.out, "Started: %s\n", mission.StartedAt)
	}
	fmt.Fprintln(a.out)

	return mission, nil
}

// Start (re)activates a mission.
func (a *MissionAdapter) Start(ctx context.Context, missionID string) error {
	if _, err := a.service.StartMission(ctx, missionID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Mission %s started\n", missionID)
	return nil
}

// Stop deactivates a mission.
func (a *MissionAdapter) Stop(ctx context.Context, missionID string) error {
	if _, err := a.service.StopMission(ctx, missionID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Mission %s stopped\n", missionID)
	return nil
}

// Report prints the decision log of a mission.
func (a *MissionAdapter) Report(ctx context.Context, missionID string) error {
	report, err := a.service.GetReport(ctx, missionID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	fmt.Fprintf(a.out, "\nMission:   %s (%s)\n", report.Name, report.MissionID)
	fmt.Fprintf(a.out, "Satellite: %s\n", report.VehicleClass)
	fmt.Fprintf(a.out, "Status:    %s\n", report.Status)
	fmt.Fprintf(a.out, "Anomalies: %d\n", report.TotalAnomalies)

	if len(report.Decisions) == 0 {
		fmt.Fprintln(a.out)
		return nil
	}

	fmt.Fprintln(a.out, "\nDecisions:")
	for _, d := range report.Decisions {
		fmt.Fprintf(a.out, "  #%-4d %s  %s\n", d.ID, d.Timestamp, d.AnomalyDetected)
		fmt.Fprintf(a.out, "        → %s (confidence %.2f)%s\n", d.ActionTaken, d.ConfidenceScore, verdictLabel(d.OutcomeVerified))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Forecast prints the 24-hour power projection, one line per hour.
func (a *MissionAdapter) Forecast(ctx context.Context, missionID string) error {
	resp, err := a.service.ForecastPower(ctx, missionID)
	if err != nil {
		return fmt.Errorf("failed to forecast power: %w", err)
	}

	f := resp.Forecast
	fmt.Fprintf(a.out, "\nPower forecast for %s (start %.1f%% from %s)\n\n", resp.MissionID, resp.StartBattery, resp.BatterySource)
	for i, p := range f.Points {
		if i%4 != 0 {
			continue
		}
		fmt.Fprintf(a.out, "  %s  %6.2f%%  %s\n", p.Timestamp.Format("15:04"), p.BatteryLevel, p.Phase)
	}

	verdict := color.New(color.FgGreen).Sprint("SURVIVES")
	if !f.Survives {
		verdict = color.New(color.FgRed).Sprint("AT RISK")
	}
	fmt.Fprintf(a.out, "\nMinimum %.2f%%: %s\n\n", f.MinBatteryLevel, verdict)
	return nil
}

// Assess runs the decision engine on a hand-entered snapshot.
func (a *MissionAdapter) Assess(ctx context.Context, snapshot telemetry.Snapshot) error {
	view, err := a.service.Analyze(ctx, snapshot)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nState:      %s\n", view.GlobalSpaceState)
	fmt.Fprintf(a.out, "Anomaly:    %s\n", view.AnomalyType)
	fmt.Fprintf(a.out, "Risk:       %s\n", view.RiskAssessment)
	fmt.Fprintf(a.out, "Action:     %s\n", view.SelectedAction)
	fmt.Fprintf(a.out, "Confidence: %.2f (%s)\n", view.Confidence, view.AutonomyMode)
	for _, e := range view.PredictedEvents {
		fmt.Fprintf(a.out, "  • %s  p=%.2f  %s\n", e.Event, e.Probability, e.TimeHorizon)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Verify records an auditor verdict on a decision.
func (a *MissionAdapter) Verify(ctx context.Context, missionID string, decisionID int64, verified bool) error {
	err := a.service.VerifyDecision(ctx, primary.VerifyDecisionRequest{
		MissionID:  missionID,
		DecisionID: decisionID,
		Verified:   verified,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Decision %d of %s marked%s\n", decisionID, missionID, verdictLabel(&verified))
	return nil
}

func activityLabel(m *primary.Mission) string {
	switch {
	case m.Running:
		return color.New(color.FgGreen).Sprint("running")
	case m.IsActive:
		return color.New(color.FgYellow).Sprint("active")
	default:
		return "stopped"
	}
}

func verdictLabel(verified *bool) string {
	switch {
	case verified == nil:
		return ""
	case *verified:
		return " " + color.New(color.FgGreen).Sprint("[verified]")
	default:
		return " " + color.New(color.FgRed).Sprint("[rejected]")
	}
}

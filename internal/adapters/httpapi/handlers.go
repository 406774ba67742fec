package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ctxutil"
	"github.com/example/orbita/internal/ports/primary"
	"github.com/example/orbita/internal/ports/secondary"
	"github.com/example/orbita/internal/version"
)

// messageResponse is the body of command endpoints with nothing to return.
type messageResponse struct {
	Message string           `json:"message"`
	Mission *primary.Mission `json:"mission,omitempty"`
}

// analyzeRequest mirrors telemetry.Snapshot with every field required.
type analyzeRequest struct {
	BatteryLevel     *float64 `json:"battery_level"`
	ThermalState     *float64 `json:"thermal_state"`
	OrientationRoll  *float64 `json:"orientation_roll"`
	OrientationPitch *float64 `json:"orientation_pitch"`
	OrientationYaw   *float64 `json:"orientation_yaw"`
	SignalLatency    *float64 `json:"signal_latency"`
	IsStable         *bool    `json:"is_stable"`
}

func (r analyzeRequest) snapshot() (telemetry.Snapshot, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"battery_level", r.BatteryLevel},
		{"thermal_state", r.ThermalState},
		{"orientation_roll", r.OrientationRoll},
		{"orientation_pitch", r.OrientationPitch},
		{"orientation_yaw", r.OrientationYaw},
		{"signal_latency", r.SignalLatency},
	}
	for _, f := range fields {
		if f.v == nil {
			return telemetry.Snapshot{}, fmt.Errorf("%s is required", f.name)
		}
	}
	if r.IsStable == nil {
		return telemetry.Snapshot{}, errors.New("is_stable is required")
	}

	return telemetry.Snapshot{
		BatteryLevel:     *r.BatteryLevel,
		ThermalState:     *r.ThermalState,
		OrientationRoll:  *r.OrientationRoll,
		OrientationPitch: *r.OrientationPitch,
		OrientationYaw:   *r.OrientationYaw,
		SignalLatency:    *r.SignalLatency,
		IsStable:         *r.IsStable,
	}, nil
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": version.Banner(),
		"version": version.String(),
	})
}

// handleCreateMission handles POST /mission/create
func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req primary.CreateMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	resp, err := s.missions.CreateMission(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp.Mission)
}

// handleGetMission handles GET /mission/{missionID}
func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	mission, err := s.missions.GetMission(r.Context(), chi.URLParam(r, "missionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mission)
}

// handleStartMission handles POST /mission/{missionID}/start
func (s *Server) handleStartMission(w http.ResponseWriter, r *http.Request) {
	mission, err := s.missions.StartMission(r.Context(), chi.URLParam(r, "missionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Mission started", Mission: mission})
}

// handleStopMission handles POST /mission/{missionID}/stop
func (s *Server) handleStopMission(w http.ResponseWriter, r *http.Request) {
	mission, err := s.missions.StopMission(r.Context(), chi.URLParam(r, "missionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Mission stopped", Mission: mission})
}

// handleReport handles GET /mission/{missionID}/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.missions.GetReport(r.Context(), chi.URLParam(r, "missionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleForecast handles GET /mission/{missionID}/forecast
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	resp, err := s.missions.ForecastPower(r.Context(), chi.URLParam(r, "missionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"mission_id":           resp.MissionID,
		"start_battery":        resp.StartBattery,
		"battery_source":       resp.BatterySource,
		"timestamps":           resp.Forecast.Timestamps(),
		"battery_levels":       resp.Forecast.BatteryLevels(),
		"phases":               resp.Forecast.Phases(),
		"survival_probability": resp.Forecast.SurvivalProbability,
		"survives":             resp.Forecast.Survives,
		"min_battery_level":    resp.Forecast.MinBatteryLevel,
	})
}

// handleVerifyDecision handles POST /mission/{missionID}/decisions/{decisionID}/verify
func (s *Server) handleVerifyDecision(w http.ResponseWriter, r *http.Request) {
	decisionID, err := strconv.ParseInt(chi.URLParam(r, "decisionID"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "decision id must be an integer")
		return
	}

	var body verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	err = s.missions.VerifyDecision(r.Context(), primary.VerifyDecisionRequest{
		MissionID:  chi.URLParam(r, "missionID"),
		DecisionID: decisionID,
		Verified:   body.Verified,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Outcome recorded"})
}

// handleAnalyze handles POST /ai/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	snap, err := req.snapshot()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.missions.Analyze(r.Context(), snap)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// writeServiceError maps service errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var guardErr *primary.GuardError
	switch {
	case errors.As(err, &guardErr) && guardErr.NotFound:
		s.writeError(w, http.StatusNotFound, guardErr.Reason)
	case errors.As(err, &guardErr):
		s.writeError(w, http.StatusBadRequest, guardErr.Reason)
	case errors.Is(err, secondary.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		ctxutil.Logger(r.Context(), s.logger).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

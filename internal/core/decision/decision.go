// Package decision contains the autonomy decision engine.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Rules are evaluated top-down; the first rule whose predicate matches a
// snapshot supplies the whole Assessment. The nominal rule always matches
// and must stay last.
package decision

import (
	"math"

	"github.com/example/orbita/internal/core/telemetry"
)

// Thresholds used by the rule predicates.
const (
	PowerDeficitBattery  = 20.0
	ThermalLimit         = 80.0
	AttitudeRollLimitDeg = 10.0
)

// Correction is the corrective feedback category attached to an outcome.
type Correction string

const (
	CorrectionNone       Correction = "none"
	CorrectionLoadShed   Correction = "load_shed"
	CorrectionRadiator   Correction = "radiator"
	CorrectionStabilize  Correction = "stabilize"
	CorrectionSolarAngle Correction = "solar_angle"
)

// Values written by corrective feedback.
const (
	RecoveredBattery      = 80.0
	NominalThermal        = 20.0
	SolarAngleBatteryGain = 5.0
)

// PredictedEvent is a forecast consequence of the current state.
type PredictedEvent struct {
	Event       string  `json:"event"`
	Probability float64 `json:"probability"`
	TimeHorizon string  `json:"time_horizon"`
}

// Assessment is the engine's structured judgment about one snapshot.
type Assessment struct {
	GlobalSpaceState            string           `json:"global_space_state"`
	DetectedPatterns            []string         `json:"detected_patterns"`
	PredictedEvents             []PredictedEvent `json:"predicted_events"`
	RiskAssessment              string           `json:"risk_assessment"`
	CoordinationRecommendations []string         `json:"coordination_recommendations"`
	CounterfactualInsights      string           `json:"counterfactual_insights"`
	Confidence                  float64          `json:"confidence"`
	Explanation                 string           `json:"explanation"`
	Correction                  Correction       `json:"correction"`
}

// Anomalous reports whether at least one pattern was detected.
func (a Assessment) Anomalous() bool {
	return len(a.DetectedPatterns) > 0
}

// AnomalyType returns the first detected pattern, or "Nominal".
func (a Assessment) AnomalyType() string {
	if len(a.DetectedPatterns) > 0 {
		return a.DetectedPatterns[0]
	}
	return "Nominal"
}

// SelectedAction returns the first recommendation, or "None".
func (a Assessment) SelectedAction() string {
	if len(a.CoordinationRecommendations) > 0 {
		return a.CoordinationRecommendations[0]
	}
	return "None"
}

// RootCauseHypothesis returns the causal explanation.
func (a Assessment) RootCauseHypothesis() string {
	return a.Explanation
}

// AutonomyMode grades how much human oversight the confidence warrants.
func (a Assessment) AutonomyMode() string {
	switch {
	case a.Confidence > 0.8:
		return "autonomous"
	case a.Confidence > 0.5:
		return "supervisory"
	default:
		return "human_required"
	}
}

// DigitalTwinPrediction returns the most likely next event description.
func (a Assessment) DigitalTwinPrediction() string {
	if len(a.PredictedEvents) > 0 {
		return a.PredictedEvents[0].Event
	}
	return "Nominal state predicted"
}

// VerificationResult describes how the decision was validated.
func (a Assessment) VerificationResult() string {
	return "Validated via Counterfactual Analysis"
}

// RecoveryOption is one candidate response considered for an anomaly.
type RecoveryOption struct {
	Strategy       string `json:"strategy"`
	RiskLevel      string `json:"risk_level"`
	ExpectedImpact string `json:"expected_impact"`
}

// RecoveryOptions lists every recommendation as a considered option.
// The first option is the one the engine selected.
func (a Assessment) RecoveryOptions() []RecoveryOption {
	if !a.Anomalous() {
		return nil
	}
	opts := make([]RecoveryOption, len(a.CoordinationRecommendations))
	for i, rec := range a.CoordinationRecommendations {
		impact := "Supporting action"
		if i == 0 {
			impact = "Selected: " + a.CounterfactualInsights
		}
		opts[i] = RecoveryOption{
			Strategy:       rec,
			RiskLevel:      riskLevel(a.RiskAssessment),
			ExpectedImpact: impact,
		}
	}
	return opts
}

// riskLevel extracts the leading severity word, e.g. "CRITICAL".
func riskLevel(risk string) string {
	for i, r := range risk {
		if r == ':' {
			return risk[:i]
		}
	}
	return risk
}

// Rule pairs a predicate with the assessment it produces.
type Rule struct {
	Name    string
	Match   func(telemetry.Snapshot) bool
	Outcome Assessment
}

// Rules returns the ordered rule list. Callers get a fresh copy.
func Rules() []Rule {
	return []Rule{
		{
			Name:  "power_deficit",
			Match: func(s telemetry.Snapshot) bool { return s.BatteryLevel < PowerDeficitBattery },
			Outcome: Assessment{
				GlobalSpaceState: "SATELLITE ENERGY DEFICIT DETECTED. Local sector power availability compromised.",
				DetectedPatterns: []string{
					"Cyclic power drop correlated with eclipse entry",
					"Battery cell impedance anomaly",
				},
				PredictedEvents: []PredictedEvent{
					{Event: "Critical Bus Failure / Power Outage", Probability: 0.92, TimeHorizon: "T+45 mins"},
					{Event: "Payload thermal threshold violation", Probability: 0.75, TimeHorizon: "T+60 mins"},
				},
				RiskAssessment: "CRITICAL: Potential loss of node in planetary constellation.",
				CoordinationRecommendations: []string{
					"ACTIVATE: Emergency Load Shedding protocol",
					"Prioritize TT&C bus over payload systems",
				},
				CounterfactualInsights: "Without load shedding, battery depth-of-discharge would reach 100% in 42 minutes, resulting in permanent hardware degradation.",
				Confidence:             0.96,
				Explanation:            "Voltage drop detected below baseline behavioral fingerprint. Causal link identified: Solar occultation during high-draw payload cycle.",
				Correction:             CorrectionLoadShed,
			},
		},
		{
			Name:  "thermal_instability",
			Match: func(s telemetry.Snapshot) bool { return s.ThermalState > ThermalLimit },
			Outcome: Assessment{
				GlobalSpaceState: "THERMAL INSTABILITY - Subsystem heat signature exceeding safety margins.",
				DetectedPatterns: []string{
					"Non-linear thermal climb on core processor",
					"Radiator efficiency degradation signature",
				},
				PredictedEvents: []PredictedEvent{
					{Event: "Compute Module Thermal Shutdown", Probability: 0.88, TimeHorizon: "T+15 mins"},
					{Event: "Coolant loop mechanical fatigue", Probability: 0.40, TimeHorizon: "T+24 hrs"},
				},
				RiskAssessment: "HIGH: Thermal runaway risk to core avionics.",
				CoordinationRecommendations: []string{
					"INITIATE: Redundant Radiator Loop B activation",
					"Perform BBQ roll for passive thermal distribution",
				},
				CounterfactualInsights: "Passive cooling alone would result in an automated safety shutdown by T+20 mins, leading to 2 hours of telemetry blackout.",
				Confidence:             0.94,
				Explanation:            "Digital Twin detects radiator flow restriction. Thermal gradients deviating from expected physics model.",
				Correction:             CorrectionRadiator,
			},
		},
		{
			Name: "attitude_divergence",
			Match: func(s telemetry.Snapshot) bool {
				return !s.IsStable || math.Abs(s.OrientationRoll) > AttitudeRollLimitDeg
			},
			Outcome: Assessment{
				GlobalSpaceState: "ATTITUDE DIVERGENCE - Planetary state correlation error.",
				DetectedPatterns: []string{
					"Momentum saturation signature in Z-axis",
					"Attitude drift exceeding 1.2 deg/sec",
				},
				PredictedEvents: []PredictedEvent{
					{Event: "Loss of Signal (LOS) due to antenna misalignment", Probability: 0.70, TimeHorizon: "T+10 mins"},
					{Event: "Reaction Wheel saturation limit reach", Probability: 0.95, TimeHorizon: "T+5 mins"},
				},
				RiskAssessment: "MODERATE: Pointing accuracy loss affecting global coordination.",
				CoordinationRecommendations: []string{
					"EXECUTE: Reaction Wheel Desaturation (Magnetorquers)",
					"Align solar arrays to Sun-Point during maneuver",
				},
				CounterfactualInsights: "Unchecked momentum accumulation would force a Safe Mode entry by T+15 mins, requiring manual human recovery.",
				Confidence:             0.91,
				Explanation:            "Attitude control laws approaching singularity. Behavioral fingerprinting identifies external disturbance torque accumulation.",
				Correction:             CorrectionStabilize,
			},
		},
		{
			Name:  "nominal",
			Match: func(telemetry.Snapshot) bool { return true },
			Outcome: Assessment{
				GlobalSpaceState:            "Orbital shells nominal. No large-scale debris cascades detected in current sector.",
				DetectedPatterns:            []string{},
				PredictedEvents:             []PredictedEvent{},
				RiskAssessment:              "Operational Risk: LOW. Environment stability: 99.8%",
				CoordinationRecommendations: []string{"Continue standard orbital maintenance."},
				CounterfactualInsights:      "Without intervention, the system would remain in a passive monitoring state with no loss of mission life.",
				Confidence:                  1.0,
				Explanation:                 "Telemetry cross-correlated with planetary state. Variance within 1-sigma of behavioral fingerprint.",
				Correction:                  CorrectionNone,
			},
		},
	}
}

var defaultRules = Rules()

// Assess evaluates the default rule list against s.
func Assess(s telemetry.Snapshot) Assessment {
	a, _ := Evaluate(defaultRules, s)
	return a
}

// Evaluate returns the outcome of the first matching rule and its name.
// The returned Assessment never aliases the rule's slices.
func Evaluate(rules []Rule, s telemetry.Snapshot) (Assessment, string) {
	for _, r := range rules {
		if r.Match(s) {
			return clone(r.Outcome), r.Name
		}
	}
	return Assessment{DetectedPatterns: []string{}, PredictedEvents: []PredictedEvent{}, Correction: CorrectionNone}, ""
}

func clone(a Assessment) Assessment {
	a.DetectedPatterns = append([]string{}, a.DetectedPatterns...)
	a.PredictedEvents = append([]PredictedEvent{}, a.PredictedEvents...)
	a.CoordinationRecommendations = append([]string{}, a.CoordinationRecommendations...)
	return a
}

// ApplyCorrection returns s adjusted by the corrective feedback category.
func ApplyCorrection(s telemetry.Snapshot, c Correction) telemetry.Snapshot {
	switch c {
	case CorrectionLoadShed:
		s.BatteryLevel = RecoveredBattery
	case CorrectionRadiator:
		s.ThermalState = NominalThermal
	case CorrectionStabilize:
		s.IsStable = true
		s.OrientationRoll = 0
	case CorrectionSolarAngle:
		s.BatteryLevel = math.Min(100, s.BatteryLevel+SolarAngleBatteryGain)
	}
	return s
}

// View is an Assessment flattened together with its derived fields, in
// the shape observers and API clients consume.
type View struct {
	Assessment
	AnomalyType           string           `json:"anomaly_type"`
	SelectedAction        string           `json:"selected_action"`
	RootCauseHypothesis   string           `json:"root_cause_hypothesis"`
	AutonomyMode          string           `json:"autonomy_mode"`
	DigitalTwinPrediction string           `json:"digital_twin_prediction"`
	VerificationResult    string           `json:"verification_result"`
	RecoveryOptions       []RecoveryOption `json:"recovery_options"`
}

// NewView computes the derived fields of a.
func NewView(a Assessment) View {
	return View{
		Assessment:            a,
		AnomalyType:           a.AnomalyType(),
		SelectedAction:        a.SelectedAction(),
		RootCauseHypothesis:   a.RootCauseHypothesis(),
		AutonomyMode:          a.AutonomyMode(),
		DigitalTwinPrediction: a.DigitalTwinPrediction(),
		VerificationResult:    a.VerificationResult(),
		RecoveryOptions:       a.RecoveryOptions(),
	}
}

// Package forecast predicts a spacecraft's battery over the next day.
// This is part of the Functional Core - no I/O, only pure functions.
//
// The model is a two-phase orbit: the first 60% of each period is
// sunlight (charging), the remainder eclipse (base-load discharge).
package forecast

import (
	"math"
	"time"
)

const (
	HorizonHours     = 24
	StepsPerHour     = 4
	Steps            = HorizonHours * StepsPerHour
	ChargeRate       = 2.5  // % per step in sunlight
	DischargeRate    = 1.0  // % per step in eclipse
	EclipseStart     = 0.6  // orbit fraction where eclipse begins
	SurvivalFloor    = 10.0 // minimum battery for survival
	DefaultPeriodMin = 90.0

	EarthRadiusKm = 6371.0
	EarthMuKm3S2  = 398600.4418 // standard gravitational parameter
)

// Phase labels.
const (
	PhaseSunlight = "Sunlight"
	PhaseEclipse  = "Eclipse"
)

// Point is one sample of the projected battery series.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	BatteryLevel float64   `json:"battery_level"`
	Phase        string    `json:"phase"`
}

// PowerForecast is a projected battery series and its survival verdict.
type PowerForecast struct {
	Points              []Point `json:"points"`
	Survives            bool    `json:"survives"`
	SurvivalProbability float64 `json:"survival_probability"`
	MinBatteryLevel     float64 `json:"min_battery_level"`
}

// Timestamps returns the sample times as RFC 3339 strings.
func (f PowerForecast) Timestamps() []string {
	out := make([]string, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Timestamp.Format(time.RFC3339)
	}
	return out
}

// BatteryLevels returns the projected battery values.
func (f PowerForecast) BatteryLevels() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.BatteryLevel
	}
	return out
}

// Phases returns the phase label of each sample.
func (f PowerForecast) Phases() []string {
	out := make([]string, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Phase
	}
	return out
}

// Power projects battery from startBattery over the horizon at 15-minute
// resolution. A non-positive period falls back to DefaultPeriodMin.
func Power(startBattery, orbitalPeriodMin float64, now time.Time) PowerForecast {
	if orbitalPeriodMin <= 0 {
		orbitalPeriodMin = DefaultPeriodMin
	}

	stepMin := 60.0 / StepsPerHour
	level := startBattery
	minLevel := math.Inf(1)
	points := make([]Point, Steps)

	for step := 0; step < Steps; step++ {
		offset := float64(step) * stepMin
		orbitPhase := math.Mod(offset, orbitalPeriodMin) / orbitalPeriodMin

		phase := PhaseSunlight
		if orbitPhase > EclipseStart {
			phase = PhaseEclipse
			level -= DischargeRate
		} else {
			level += ChargeRate
		}
		level = math.Max(0, math.Min(100, level))

		rounded := math.Round(level*100) / 100
		minLevel = math.Min(minLevel, rounded)
		points[step] = Point{
			Timestamp:    now.Add(time.Duration(offset * float64(time.Minute))),
			BatteryLevel: rounded,
			Phase:        phase,
		}
	}

	survives := minLevel > SurvivalFloor
	probability := 0.0
	if survives {
		probability = 1.0
	}

	return PowerForecast{
		Points:              points,
		Survives:            survives,
		SurvivalProbability: probability,
		MinBatteryLevel:     minLevel,
	}
}

// OrbitalPeriodMin returns the circular-orbit period at altitudeKm from
// Kepler's third law. Non-positive altitudes yield DefaultPeriodMin.
func OrbitalPeriodMin(altitudeKm float64) float64 {
	if altitudeKm <= 0 {
		return DefaultPeriodMin
	}
	a := EarthRadiusKm + altitudeKm
	return 2 * math.Pi * math.Sqrt(a*a*a/EarthMuKm3S2) / 60
}

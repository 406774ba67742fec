// Package telemetry contains the pure telemetry state model for simulated spacecraft.
// This is part of the Functional Core - no I/O, only pure functions.
package telemetry

import (
	"math"
	"math/rand"
)

// VehicleClass identifies the orbital regime of a mission's spacecraft.
type VehicleClass string

const (
	// ClassLEO is a near-Earth (low Earth orbit) vehicle.
	ClassLEO VehicleClass = "LEO"
	// ClassMEO is a mid-Earth orbit vehicle.
	ClassMEO VehicleClass = "MEO"
	// ClassGEO is a geostationary vehicle.
	ClassGEO VehicleClass = "GEO"
)

// DefaultAnomalyProbability is the per-tick chance of an injected anomaly.
const DefaultAnomalyProbability = 0.05

// MinLatency is the floor applied to signal latency (ms).
const MinLatency = 10.0

// Snapshot is the instantaneous telemetry state of one spacecraft.
type Snapshot struct {
	BatteryLevel     float64 `json:"battery_level"`
	ThermalState     float64 `json:"thermal_state"`
	OrientationRoll  float64 `json:"orientation_roll"`
	OrientationPitch float64 `json:"orientation_pitch"`
	OrientationYaw   float64 `json:"orientation_yaw"`
	SignalLatency    float64 `json:"signal_latency"`
	IsStable         bool    `json:"is_stable"`
}

// Baseline holds the class-specific starting parameters.
type Baseline struct {
	Battery float64
	Thermal float64
	Latency float64
}

var baselines = map[VehicleClass]Baseline{
	ClassLEO: {Battery: 90, Thermal: 20, Latency: 50},
	ClassMEO: {Battery: 85, Thermal: 10, Latency: 150},
	ClassGEO: {Battery: 95, Thermal: -50, Latency: 250},
}

// Classes returns the closed set of supported vehicle classes.
func Classes() []VehicleClass {
	return []VehicleClass{ClassLEO, ClassMEO, ClassGEO}
}

// Valid reports whether c is one of the supported vehicle classes.
func (c VehicleClass) Valid() bool {
	_, ok := baselines[c]
	return ok
}

// BaselineFor returns the baseline for a class. Unknown classes use LEO.
func BaselineFor(class VehicleClass) Baseline {
	if b, ok := baselines[class]; ok {
		return b
	}
	return baselines[ClassLEO]
}

// AnomalyKind is the type of fault injected into a tick.
type AnomalyKind int

const (
	AnomalyNone AnomalyKind = iota
	AnomalyThermalSpike
	AnomalyPowerDrop
	AnomalyOrientationJolt
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyThermalSpike:
		return "thermal_spike"
	case AnomalyPowerDrop:
		return "power_drop"
	case AnomalyOrientationJolt:
		return "orientation_jolt"
	default:
		return "none"
	}
}

// Model evolves snapshots. The zero value is not usable; use NewModel.
type Model struct {
	AnomalyProbability float64
}

// NewModel returns a Model with the given anomaly probability.
// A negative probability selects DefaultAnomalyProbability.
func NewModel(anomalyProbability float64) Model {
	if anomalyProbability < 0 {
		anomalyProbability = DefaultAnomalyProbability
	}
	return Model{AnomalyProbability: anomalyProbability}
}

// Initialize returns the starting snapshot for a vehicle class.
func Initialize(class VehicleClass) Snapshot {
	b := BaselineFor(class)
	return Snapshot{
		BatteryLevel:  b.Battery,
		ThermalState:  b.Thermal,
		SignalLatency: b.Latency,
		IsStable:      true,
	}
}

// Evolve advances prev by one tick using the package default anomaly rate.
func Evolve(prev Snapshot, class VehicleClass, rng *rand.Rand) Snapshot {
	next, _ := NewModel(DefaultAnomalyProbability).Evolve(prev, class, rng)
	return next
}

// Evolve advances prev by one tick. It applies bounded random drift and,
// with probability m.AnomalyProbability, exactly one injected anomaly.
// The injected kind is returned for logging; AnomalyNone otherwise.
// Drift magnitudes are the same for every vehicle class.
func (m Model) Evolve(prev Snapshot, class VehicleClass, rng *rand.Rand) (Snapshot, AnomalyKind) {
	next := Snapshot{
		BatteryLevel:     clamp(prev.BatteryLevel+uniform(rng, -0.5, 0.1), 0, 100),
		ThermalState:     prev.ThermalState + uniform(rng, -1.0, 1.0),
		SignalLatency:    math.Max(MinLatency, prev.SignalLatency+uniform(rng, -5, 5)),
		OrientationRoll:  WrapAngle(prev.OrientationRoll + uniform(rng, -0.1, 0.1)),
		OrientationPitch: WrapAngle(prev.OrientationPitch + uniform(rng, -0.1, 0.1)),
		OrientationYaw:   WrapAngle(prev.OrientationYaw + uniform(rng, -0.1, 0.1)),
		IsStable:         true,
	}

	if rng.Float64() >= m.AnomalyProbability {
		return next, AnomalyNone
	}

	kind := AnomalyKind(rng.Intn(3) + 1)
	return Inject(next, kind, rng), kind
}

// Inject applies a single anomaly of the given kind to s.
func Inject(s Snapshot, kind AnomalyKind, rng *rand.Rand) Snapshot {
	switch kind {
	case AnomalyThermalSpike:
		s.ThermalState += uniform(rng, 20, 40)
	case AnomalyPowerDrop:
		s.BatteryLevel = math.Max(0, s.BatteryLevel-uniform(rng, 5, 10))
	case AnomalyOrientationJolt:
		s.OrientationRoll = WrapAngle(s.OrientationRoll + uniform(rng, 15, 30))
		s.IsStable = false
	}
	return s
}

// WrapAngle maps any angle in degrees into [0, 360).
func WrapAngle(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if w >= 360 {
		w = 0
	}
	return w
}

// Normalize enforces the documented bounds on an externally sourced snapshot.
func Normalize(s Snapshot) Snapshot {
	s.BatteryLevel = clamp(s.BatteryLevel, 0, 100)
	s.SignalLatency = math.Max(MinLatency, s.SignalLatency)
	s.OrientationRoll = WrapAngle(s.OrientationRoll)
	s.OrientationPitch = WrapAngle(s.OrientationPitch)
	s.OrientationYaw = WrapAngle(s.OrientationYaw)
	return s
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

package forecast

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPower_Shape(t *testing.T) {
	f := Power(85, 90, epoch)

	if len(f.Points) != 96 {
		t.Fatalf("points = %d, want 96", len(f.Points))
	}
	for i, p := range f.Points {
		if p.Phase != PhaseSunlight && p.Phase != PhaseEclipse {
			t.Errorf("point %d: phase = %q", i, p.Phase)
		}
		if p.BatteryLevel < 0 || p.BatteryLevel > 100 {
			t.Errorf("point %d: battery = %v out of range", i, p.BatteryLevel)
		}
	}
	if !f.Points[0].Timestamp.Equal(epoch) {
		t.Errorf("first timestamp = %v, want %v", f.Points[0].Timestamp, epoch)
	}
	if got := f.Points[95].Timestamp.Sub(epoch); got != 95*15*time.Minute {
		t.Errorf("last offset = %v, want %v", got, 95*15*time.Minute)
	}
	if len(f.Timestamps()) != 96 || len(f.BatteryLevels()) != 96 || len(f.Phases()) != 96 {
		t.Error("column views must match point count")
	}
}

func TestPower_PhaseModel(t *testing.T) {
	f := Power(50, 90, epoch)

	// 90-minute orbit sampled every 15 minutes: offsets 0..45 are sunlight
	// (phase <= 0.6), 60 and 75 are eclipse.
	want := []string{PhaseSunlight, PhaseSunlight, PhaseSunlight, PhaseSunlight, PhaseEclipse, PhaseEclipse}
	for i, w := range want {
		if f.Points[i].Phase != w {
			t.Errorf("step %d: phase = %q, want %q", i, f.Points[i].Phase, w)
		}
	}
	if f.Points[0].BatteryLevel != 52.5 {
		t.Errorf("step 0 battery = %v, want 52.5", f.Points[0].BatteryLevel)
	}
	if f.Points[5].BatteryLevel != 58 {
		t.Errorf("step 5 battery = %v, want 58", f.Points[5].BatteryLevel)
	}
}

func TestPower_Survival(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		period    float64
		wantAlive bool
	}{
		{"healthy start", 85, 90, true},
		{"empty battery", 0, 90, false},
		{"first sample exactly at floor", 7.5, 90, false},
		{"first sample just above floor", 8, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Power(tt.start, tt.period, epoch)

			anyLow := false
			for _, p := range f.Points {
				if p.BatteryLevel <= SurvivalFloor {
					anyLow = true
				}
			}

			if f.Survives != tt.wantAlive {
				t.Errorf("Survives = %v, want %v (min %v)", f.Survives, tt.wantAlive, f.MinBatteryLevel)
			}
			if (f.SurvivalProbability == 0) != anyLow {
				t.Errorf("SurvivalProbability = %v but anyLow = %v", f.SurvivalProbability, anyLow)
			}
		})
	}
}

func TestPower_DefaultPeriod(t *testing.T) {
	a := Power(60, 0, epoch)
	b := Power(60, DefaultPeriodMin, epoch)
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestOrbitalPeriodMin(t *testing.T) {
	tests := []struct {
		name     string
		altitude float64
		lo, hi   float64
	}{
		{"unknown altitude", 0, DefaultPeriodMin, DefaultPeriodMin},
		{"negative altitude", -5, DefaultPeriodMin, DefaultPeriodMin},
		{"ISS-like LEO", 400, 92, 93},
		{"geostationary", 35786, 1435, 1437},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrbitalPeriodMin(tt.altitude)
			if got < tt.lo || got > tt.hi {
				t.Errorf("OrbitalPeriodMin(%v) = %v, want in [%v, %v]", tt.altitude, got, tt.lo, tt.hi)
			}
		})
	}
}

package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with one inactive demo mission per
// vehicle class plus a short telemetry history for each, so forecasts and
// reports have something to show before any loop has run.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()

	missions := []struct {
		id, name, class           string
		altitude, incl            float64
		battery, thermal, latency float64
	}{
		{"MISSION-001", "Aurora Pathfinder", "LEO", 550, 97.6, 90, 20, 50},
		{"MISSION-002", "Meridian Nav", "MEO", 20200, 55, 85, 10, 150},
		{"MISSION-003", "Beacon Relay", "GEO", 35786, 0.1, 95, -50, 250},
	}

	for _, m := range missions {
		if _, err := database.Exec(
			"INSERT INTO missions (id, name, satellite_type, status, is_active, altitude, inclination, created_at) VALUES (?, ?, ?, 'nominal', 0, ?, ?, ?)",
			m.id, m.name, m.class, m.altitude, m.incl, now,
		); err != nil {
			return fmt.Errorf("seed missions: %w", err)
		}

		for i := 0; i < 3; i++ {
			ts := now.Add(time.Duration(i-3) * time.Minute)
			if _, err := database.Exec(
				`INSERT INTO telemetry_logs (mission_id, timestamp, battery_level, thermal_state,
					orientation_roll, orientation_pitch, orientation_yaw, signal_latency, is_stable)
				VALUES (?, ?, ?, ?, 0, 0, 0, ?, 1)`,
				m.id, ts, m.battery-float64(i)*0.3, m.thermal, m.latency,
			); err != nil {
				return fmt.Errorf("seed telemetry: %w", err)
			}
		}
	}

	return nil
}

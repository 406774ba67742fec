package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it
// through GetSchemaSQL() so that a repository referencing a column that does
// not exist fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to the migrations list
//  2. Update SchemaSQL here
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS missions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	satellite_type TEXT NOT NULL CHECK (satellite_type IN ('LEO', 'MEO', 'GEO')),
	status TEXT NOT NULL DEFAULT 'nominal' CHECK (status IN ('nominal', 'warning', 'critical')),
	is_active INTEGER NOT NULL DEFAULT 1,
	altitude REAL NOT NULL DEFAULT 0,
	inclination REAL NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	start_time DATETIME
);

CREATE INDEX IF NOT EXISTS idx_missions_active ON missions(is_active);

CREATE TABLE IF NOT EXISTS telemetry_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	battery_level REAL NOT NULL,
	thermal_state REAL NOT NULL,
	orientation_roll REAL NOT NULL,
	orientation_pitch REAL NOT NULL,
	orientation_yaw REAL NOT NULL,
	signal_latency REAL NOT NULL,
	is_stable INTEGER NOT NULL,
	FOREIGN KEY (mission_id) REFERENCES missions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_telemetry_mission_time ON telemetry_logs(mission_id, timestamp);

CREATE TABLE IF NOT EXISTS decision_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	anomaly_detected TEXT NOT NULL,
	action_taken TEXT NOT NULL,
	reasoning TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	root_cause TEXT,
	recovery_options TEXT,
	outcome_verified INTEGER,
	FOREIGN KEY (mission_id) REFERENCES missions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_decisions_mission ON decision_logs(mission_id);
`

// InitSchema brings the schema of database up to date.
// A fresh database gets SchemaSQL directly and is marked as fully migrated;
// an existing one runs any pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to mark migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

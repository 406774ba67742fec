package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_mission_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_mission_orbit_and_start_time",
		Up:      migrationV2,
	},
}

func createVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(database *sql.DB) error {
	if err := createVersionTable(database); err != nil {
		return err
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the original three tables without orbit parameters.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS missions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			satellite_type TEXT NOT NULL CHECK (satellite_type IN ('LEO', 'MEO', 'GEO')),
			status TEXT NOT NULL DEFAULT 'nominal' CHECK (status IN ('nominal', 'warning', 'critical')),
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

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

		CREATE INDEX IF NOT EXISTS idx_telemetry_mission_time ON telemetry_logs(mission_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_decisions_mission ON decision_logs(mission_id);
	`)
	return err
}

// migrationV2 adds orbit parameters and the start timestamp to missions.
func migrationV2(tx *sql.Tx) error {
	stmts := []string{
		"ALTER TABLE missions ADD COLUMN altitude REAL NOT NULL DEFAULT 0",
		"ALTER TABLE missions ADD COLUMN inclination REAL NOT NULL DEFAULT 0",
		"ALTER TABLE missions ADD COLUMN start_time DATETIME",
		"CREATE INDEX IF NOT EXISTS idx_missions_active ON missions(is_active)",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func tableNames(t *testing.T, database *sql.DB) map[string]bool {
	t.Helper()
	rows, err := database.Query("SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer rows.Close()

	names := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names[name] = true
	}
	return names
}

func TestOpen_Memory(t *testing.T) {
	database, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	tables := tableNames(t, database)
	for _, want := range []string{"missions", "telemetry_logs", "decision_logs", "schema_version"} {
		if !tables[want] {
			t.Errorf("missing table %q", want)
		}
	}

	var version int
	if err := database.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestOpen_FileIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orbita.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := first.Exec("INSERT INTO missions (id, name, satellite_type) VALUES ('MISSION-001', 'A', 'LEO')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer second.Close()

	var count int
	if err := second.QueryRow("SELECT COUNT(*) FROM missions").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("missions = %d, want 1", count)
	}
}

func TestRunMigrations_UpgradesV1Database(t *testing.T) {
	database, err := sql.Open("sqlite3", MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	database.SetMaxOpenConns(1)
	defer database.Close()

	if err := createVersionTable(database); err != nil {
		t.Fatal(err)
	}
	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err := migrationV1(tx); err != nil {
		t.Fatalf("migrationV1: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := InitSchema(database); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	if _, err := database.Exec("INSERT INTO missions (id, name, satellite_type, altitude, inclination) VALUES ('MISSION-001', 'A', 'GEO', 35786, 0)"); err != nil {
		t.Errorf("orbit columns missing after upgrade: %v", err)
	}
}

func TestSeedFixtures(t *testing.T) {
	database, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	if err := SeedFixtures(database); err != nil {
		t.Fatalf("SeedFixtures failed: %v", err)
	}

	var missions, samples int
	database.QueryRow("SELECT COUNT(*) FROM missions WHERE is_active = 0").Scan(&missions)
	database.QueryRow("SELECT COUNT(*) FROM telemetry_logs").Scan(&samples)
	if missions != 3 {
		t.Errorf("inactive missions = %d, want 3", missions)
	}
	if samples != 9 {
		t.Errorf("telemetry samples = %d, want 9", samples)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/orbita/internal/ports/secondary"
)

// TelemetryRepository implements secondary.TelemetryRepository with SQLite.
type TelemetryRepository struct {
	db *sql.DB
}

// NewTelemetryRepository creates a new SQLite telemetry repository.
func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

const telemetryColumns = `id, mission_id, timestamp, battery_level, thermal_state,
	orientation_roll, orientation_pitch, orientation_yaw, signal_latency, is_stable`

// Append stores one sample and sets its ID.
func (r *TelemetryRepository) Append(ctx context.Context, sample *secondary.TelemetryRecord) error {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO telemetry_logs (mission_id, timestamp, battery_level, thermal_state,
			orientation_roll, orientation_pitch, orientation_yaw, signal_latency, is_stable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.MissionID, sample.Timestamp, sample.BatteryLevel, sample.ThermalState,
		sample.OrientationRoll, sample.OrientationPitch, sample.OrientationYaw,
		sample.SignalLatency, sample.IsStable,
	)
	if err != nil {
		return &secondary.PersistenceError{Op: "append telemetry", Err: err}
	}

	sample.ID, _ = result.LastInsertId()
	return nil
}

// Latest returns the newest sample of a mission.
func (r *TelemetryRepository) Latest(ctx context.Context, missionID string) (*secondary.TelemetryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+telemetryColumns+" FROM telemetry_logs WHERE mission_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1",
		missionID,
	)

	record, err := scanTelemetry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("telemetry for mission %s: %w", missionID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "get latest telemetry", Err: err}
	}

	return record, nil
}

// ListByMission returns up to limit samples, newest first.
// A non-positive limit returns every sample.
func (r *TelemetryRepository) ListByMission(ctx context.Context, missionID string, limit int) ([]*secondary.TelemetryRecord, error) {
	query := "SELECT " + telemetryColumns + " FROM telemetry_logs WHERE mission_id = ? ORDER BY timestamp DESC, id DESC"
	args := []any{missionID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "list telemetry", Err: err}
	}
	defer rows.Close()

	var samples []*secondary.TelemetryRecord
	for rows.Next() {
		record, err := scanTelemetry(rows)
		if err != nil {
			return nil, &secondary.PersistenceError{Op: "scan telemetry", Err: err}
		}
		samples = append(samples, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &secondary.PersistenceError{Op: "list telemetry", Err: err}
	}

	return samples, nil
}

func scanTelemetry(row rowScanner) (*secondary.TelemetryRecord, error) {
	var record secondary.TelemetryRecord
	err := row.Scan(&record.ID, &record.MissionID, &record.Timestamp,
		&record.BatteryLevel, &record.ThermalState,
		&record.OrientationRoll, &record.OrientationPitch, &record.OrientationYaw,
		&record.SignalLatency, &record.IsStable)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

var _ secondary.TelemetryRepository = (*TelemetryRepository)(nil)

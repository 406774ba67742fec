// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	coremission "github.com/example/orbita/internal/core/mission"
	"github.com/example/orbita/internal/ports/secondary"
)

// MissionRepository implements secondary.MissionRepository with SQLite.
type MissionRepository struct {
	db *sql.DB
}

// NewMissionRepository creates a new SQLite mission repository.
func NewMissionRepository(db *sql.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

const missionColumns = "id, name, satellite_type, status, is_active, altitude, inclination, created_at, start_time"

// Create persists a new mission.
// The record must have ID and Status pre-populated by the service layer.
func (r *MissionRepository) Create(ctx context.Context, mission *secondary.MissionRecord) error {
	if mission.ID == "" {
		return fmt.Errorf("mission ID must be pre-populated by service layer")
	}
	if mission.Status == "" {
		return fmt.Errorf("mission Status must be pre-populated by service layer")
	}

	createdAt := mission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var startedAt sql.NullTime
	if !mission.StartedAt.IsZero() {
		startedAt = sql.NullTime{Time: mission.StartedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO missions ("+missionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		mission.ID, mission.Name, mission.VehicleClass, mission.Status, mission.IsActive,
		mission.AltitudeKm, mission.InclinationDeg, createdAt, startedAt,
	)
	if err != nil {
		return &secondary.PersistenceError{Op: "create mission", Err: err}
	}

	mission.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a mission by its ID.
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*secondary.MissionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+missionColumns+" FROM missions WHERE id = ?", id)

	record, err := scanMission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mission %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "get mission", Err: err}
	}

	return record, nil
}

// List retrieves missions matching the given filters, oldest first.
func (r *MissionRepository) List(ctx context.Context, filters secondary.MissionFilters) ([]*secondary.MissionRecord, error) {
	query := "SELECT " + missionColumns + " FROM missions"
	args := []any{}

	if filters.ActiveOnly {
		query += " WHERE is_active = 1"
	}

	query += " ORDER BY id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "list missions", Err: err}
	}
	defer rows.Close()

	var missions []*secondary.MissionRecord
	for rows.Next() {
		record, err := scanMission(rows)
		if err != nil {
			return nil, &secondary.PersistenceError{Op: "scan mission", Err: err}
		}
		missions = append(missions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &secondary.PersistenceError{Op: "list missions", Err: err}
	}

	return missions, nil
}

// SetActive updates the active flag and, when given, the start time.
func (r *MissionRepository) SetActive(ctx context.Context, id string, active bool, startedAt *time.Time) error {
	query := "UPDATE missions SET is_active = ?"
	args := []any{active}

	if startedAt != nil {
		query += ", start_time = ?"
		args = append(args, *startedAt)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &secondary.PersistenceError{Op: "update mission", Err: err}
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("mission %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// GetNextID returns the next available mission ID.
// Uses core function for ID format to keep business logic in the functional core.
func (r *MissionRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 9) AS INTEGER)), 0) FROM missions",
	).Scan(&maxID)
	if err != nil {
		return "", &secondary.PersistenceError{Op: "get next mission ID", Err: err}
	}

	return coremission.GenerateMissionID(maxID), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMission(row rowScanner) (*secondary.MissionRecord, error) {
	var (
		record    secondary.MissionRecord
		createdAt sql.NullTime
		startedAt sql.NullTime
	)

	err := row.Scan(&record.ID, &record.Name, &record.VehicleClass, &record.Status, &record.IsActive,
		&record.AltitudeKm, &record.InclinationDeg, &createdAt, &startedAt)
	if err != nil {
		return nil, err
	}

	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	if startedAt.Valid {
		record.StartedAt = startedAt.Time
	}

	return &record, nil
}

var _ secondary.MissionRepository = (*MissionRepository)(nil)

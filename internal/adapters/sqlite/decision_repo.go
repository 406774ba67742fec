package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/orbita/internal/ports/secondary"
)

// DecisionRepository implements secondary.DecisionRepository with SQLite.
// Recovery options are stored as a JSON array in a TEXT column.
type DecisionRepository struct {
	db *sql.DB
}

// NewDecisionRepository creates a new SQLite decision repository.
func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

const decisionColumns = `id, mission_id, timestamp, anomaly_detected, action_taken, reasoning,
	confidence_score, root_cause, recovery_options, outcome_verified`

// Append stores one decision and sets its ID.
func (r *DecisionRepository) Append(ctx context.Context, decision *secondary.DecisionRecord) error {
	if decision.Timestamp.IsZero() {
		decision.Timestamp = time.Now().UTC()
	}

	var rootCause sql.NullString
	if decision.RootCause != "" {
		rootCause = sql.NullString{String: decision.RootCause, Valid: true}
	}

	var options sql.NullString
	if len(decision.RecoveryOptions) > 0 {
		data, err := json.Marshal(decision.RecoveryOptions)
		if err != nil {
			return &secondary.PersistenceError{Op: "encode recovery options", Err: err}
		}
		options = sql.NullString{String: string(data), Valid: true}
	}

	var verified sql.NullBool
	if decision.OutcomeVerified != nil {
		verified = sql.NullBool{Bool: *decision.OutcomeVerified, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_logs (mission_id, timestamp, anomaly_detected, action_taken, reasoning,
			confidence_score, root_cause, recovery_options, outcome_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		decision.MissionID, decision.Timestamp, decision.AnomalyDetected, decision.ActionTaken,
		decision.Reasoning, decision.ConfidenceScore, rootCause, options, verified,
	)
	if err != nil {
		return &secondary.PersistenceError{Op: "append decision", Err: err}
	}

	decision.ID, _ = result.LastInsertId()
	return nil
}

// GetByID retrieves a decision by its ID.
func (r *DecisionRepository) GetByID(ctx context.Context, id int64) (*secondary.DecisionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+decisionColumns+" FROM decision_logs WHERE id = ?", id)

	record, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decision %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "get decision", Err: err}
	}

	return record, nil
}

// ListByMission returns a mission's decisions in insertion order.
func (r *DecisionRepository) ListByMission(ctx context.Context, missionID string) ([]*secondary.DecisionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+decisionColumns+" FROM decision_logs WHERE mission_id = ? ORDER BY id",
		missionID,
	)
	if err != nil {
		return nil, &secondary.PersistenceError{Op: "list decisions", Err: err}
	}
	defer rows.Close()

	var decisions []*secondary.DecisionRecord
	for rows.Next() {
		record, err := scanDecision(rows)
		if err != nil {
			return nil, &secondary.PersistenceError{Op: "scan decision", Err: err}
		}
		decisions = append(decisions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &secondary.PersistenceError{Op: "list decisions", Err: err}
	}

	return decisions, nil
}

// CountByMission returns the number of decisions recorded for a mission.
func (r *DecisionRepository) CountByMission(ctx context.Context, missionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM decision_logs WHERE mission_id = ?",
		missionID,
	).Scan(&count)
	if err != nil {
		return 0, &secondary.PersistenceError{Op: "count decisions", Err: err}
	}

	return count, nil
}

// SetOutcomeVerified records the external auditor's verdict.
func (r *DecisionRepository) SetOutcomeVerified(ctx context.Context, id int64, verified bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE decision_logs SET outcome_verified = ? WHERE id = ?",
		verified, id,
	)
	if err != nil {
		return &secondary.PersistenceError{Op: "verify decision", Err: err}
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("decision %d: %w", id, secondary.ErrNotFound)
	}

	return nil
}

func scanDecision(row rowScanner) (*secondary.DecisionRecord, error) {
	var (
		record    secondary.DecisionRecord
		rootCause sql.NullString
		options   sql.NullString
		verified  sql.NullBool
	)

	err := row.Scan(&record.ID, &record.MissionID, &record.Timestamp, &record.AnomalyDetected,
		&record.ActionTaken, &record.Reasoning, &record.ConfidenceScore, &rootCause, &options, &verified)
	if err != nil {
		return nil, err
	}

	record.RootCause = rootCause.String
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &record.RecoveryOptions); err != nil {
			return nil, fmt.Errorf("failed to decode recovery options: %w", err)
		}
	}
	if verified.Valid {
		v := verified.Bool
		record.OutcomeVerified = &v
	}

	return &record, nil
}

var _ secondary.DecisionRepository = (*DecisionRepository)(nil)

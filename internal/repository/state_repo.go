package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cleaning_robot/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

var _ StateRepo = (*StateSQLite)(nil)

const (
	robotStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO robot_state (id, status, progress, is_cleaning, obstacle_detected,
			current_mode, pause_reason, start_time, obstacle_since, pending_command, command_seq, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			progress=excluded.progress,
			is_cleaning=excluded.is_cleaning,
			obstacle_detected=excluded.obstacle_detected,
			current_mode=excluded.current_mode,
			pause_reason=excluded.pause_reason,
			start_time=excluded.start_time,
			obstacle_since=excluded.obstacle_since,
			pending_command=excluded.pending_command,
			command_seq=excluded.command_seq,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, status, progress, is_cleaning, obstacle_detected,
			current_mode, pause_reason, start_time, obstacle_since, pending_command, command_seq, updated_at
		FROM robot_state WHERE id=?
	`
)

// toNullTime converts an optional timestamp to its SQL representation in UTC.
func toNullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// fromNullTime converts a scanned nullable timestamp back to a pointer.
func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// Save updates or inserts the robot_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.RobotState) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		robotStateRowID,
		state.Status,
		state.Progress,
		state.IsCleaning,
		state.ObstacleDetected,
		state.CurrentMode,
		state.PauseReason,
		toNullTime(state.StartTime),
		toNullTime(state.ObstacleSince),
		state.PendingCommand,
		state.CommandSeq,
		tsUTC,
	)
	return err
}

// Load fetches the single robot_state row (id=1).
func (r *StateSQLite) Load(ctx context.Context) (models.RobotState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, robotStateRowID)

	var (
		s             models.RobotState
		startTime     sql.NullTime
		obstacleSince sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.Status,
		&s.Progress,
		&s.IsCleaning,
		&s.ObstacleDetected,
		&s.CurrentMode,
		&s.PauseReason,
		&startTime,
		&obstacleSince,
		&s.PendingCommand,
		&s.CommandSeq,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RobotState{}, nil // no state yet
		}
		return models.RobotState{}, err
	}

	s.StartTime = fromNullTime(startTime)
	s.ObstacleSince = fromNullTime(obstacleSince)
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"cleaning_robot/internal/models"

	"github.com/google/uuid"
)

type CleaningLogSQLite struct {
	db *sql.DB
}

func NewCleaningLogSQLite(db *sql.DB) *CleaningLogSQLite { return &CleaningLogSQLite{db: db} }

var _ CleaningLogRepo = (*CleaningLogSQLite)(nil)

const defaultLogLimit = 100

// Append inserts a new session entry. If ID is empty it is generated.
func (r *CleaningLogSQLite) Append(ctx context.Context, l models.CleaningLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cleaning_logs (id, mode, status, start_time, end_time, duration_s, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID,
		l.Mode,
		strings.ToLower(strings.TrimSpace(l.Status)),
		l.StartTime.UTC(),
		l.EndTime.UTC(),
		l.DurationSec,
		l.Progress,
	)
	return err
}

// List returns entries filtered by [from, to] (inclusive, on start_time)
// and/or outcome status, most recent first.
func (r *CleaningLogSQLite) List(ctx context.Context, from, to time.Time, status string, limit int) ([]models.CleaningLog, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "start_time >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "start_time <= ?")
		args = append(args, to.UTC())
	}
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}

	q := `SELECT id, mode, status, start_time, end_time, duration_s, progress FROM cleaning_logs`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY start_time DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CleaningLog, 0, 16)
	for rows.Next() {
		var l models.CleaningLog
		if err := rows.Scan(&l.ID, &l.Mode, &l.Status, &l.StartTime, &l.EndTime, &l.DurationSec, &l.Progress); err != nil {
			return nil, err
		}
		l.StartTime = l.StartTime.UTC()
		l.EndTime = l.EndTime.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package models

import "time"

// Cleaning session outcomes.
const (
	SessionCompleted   = "completed"
	SessionInterrupted = "interrupted"
)

// CleaningLog is one start-to-stop cleaning session. Entries are
// append-only: written once when a session ends, immutable afterwards.
type CleaningLog struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"` // completed | interrupted
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec int       `json:"duration"` // seconds
	Progress    int       `json:"progress"` // final progress at session end
}

package models

import "time"

// Robot statuses.
const (
	StatusIdle    = "idle"
	StatusMopping = "mopping"
	StatusSpray   = "spraying"
	StatusUV      = "uv_disinfecting"
	StatusPaused  = "paused"
)

// Cleaning modes selectable from the panel.
const (
	ModeFullClean = "full_clean"
	ModeMopOnly   = "mop_only"
	ModeSprayOnly = "spray_only"
	ModeUVOnly    = "uv_only"
)

// Pause reasons.
const (
	PauseUserRequest = "user_request"
	PauseObstacle    = "obstacle_detected"
)

// RobotState is the current snapshot of the robot. A single row (id=1)
// is persisted and mutated in place; it is never deleted.
type RobotState struct {
	ID               int        `json:"-"`
	Status           string     `json:"status"` // idle | mopping | spraying | uv_disinfecting | paused
	Progress         int        `json:"progress"`
	IsCleaning       bool       `json:"is_cleaning"`
	ObstacleDetected bool       `json:"obstacle_detected"`
	CurrentMode      string     `json:"current_mode,omitempty"` // empty while idle
	PauseReason      string     `json:"pause_reason,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	ObstacleSince    *time.Time `json:"-"`
	PendingCommand   string     `json:"-"` // awaiting pickup by the agent
	CommandSeq       int        `json:"-"` // bumped per accepted command; agents echo it back
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ActivePhase maps a cleaning mode to the status the robot runs in while
// that mode is active. full_clean maps to a single phase; it does not
// sequence through mop/spray/UV automatically.
func ActivePhase(mode string) string {
	switch mode {
	case ModeSprayOnly:
		return StatusSpray
	case ModeUVOnly:
		return StatusUV
	case ModeFullClean, ModeMopOnly:
		return StatusMopping
	default:
		return StatusMopping
	}
}

// ValidMode reports whether mode is one of the selectable cleaning modes.
func ValidMode(mode string) bool {
	switch mode {
	case ModeFullClean, ModeMopOnly, ModeSprayOnly, ModeUVOnly:
		return true
	}
	return false
}

// ValidStatus reports whether status is a known robot status.
func ValidStatus(status string) bool {
	switch status {
	case StatusIdle, StatusMopping, StatusSpray, StatusUV, StatusPaused:
		return true
	}
	return false
}

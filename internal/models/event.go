package models

// Realtime event types pushed to connected viewers.
const (
	EventStatusUpdate     = "status_update"
	EventInfo             = "info"
	EventAlert            = "alert"
	EventCleaningComplete = "cleaning_complete"
)

// Event is a single realtime message broadcast to all viewers.
// Delivery is best-effort, at-most-once; disconnected viewers re-sync
// via GET /api/robot/status.
type Event struct {
	Type        string      `json:"type"` // status_update | info | alert | cleaning_complete
	Message     string      `json:"message,omitempty"`
	RobotState  *RobotState `json:"robot_state,omitempty"`
	DurationSec int         `json:"duration,omitempty"` // set on cleaning_complete
}

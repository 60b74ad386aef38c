package service

import (
	"time"

	"cleaning_robot/internal/models"
)

// Commands accepted by the gateway.
const (
	CommandStart  = "start"
	CommandStop   = "stop"
	CommandPause  = "pause"
	CommandResume = "resume"
)

// CommandParams is a user command from the panel. Mode is only consulted
// for "start"; empty mode falls back to full_clean.
type CommandParams struct {
	Command string
	Mode    string
}

// CommandResult is what the panel renders after a command. Success=false
// carries a human-readable rejection; State is the (possibly unchanged)
// snapshot either way.
type CommandResult struct {
	Success bool
	Message string
	State   models.RobotState
}

// LogFilter narrows the session history query.
type LogFilter struct {
	From   time.Time // inclusive on start_time; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Status string    // "", "completed", "interrupted"
	Limit  int       // max entries; <=0 uses the repository default
}

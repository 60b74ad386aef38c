package models

// Telemetry is a status report posted by the robot agent. The agent
// pushes these on its own cadence, independent of command polling, so
// CommandAck carries the last command sequence the agent has observed:
// a report acking an older sequence predates the pending command and
// must not overwrite it.
type Telemetry struct {
	RobotID          string             `json:"robot_id"`
	Status           string             `json:"status"`
	Progress         int                `json:"progress"`
	IsCleaning       bool               `json:"is_cleaning"`
	ObstacleDetected bool               `json:"obstacle_detected"`
	CurrentMode      string             `json:"current_mode,omitempty"`
	CommandAck       int                `json:"command_ack"`
	UptimeSec        int                `json:"uptime,omitempty"`
	Sensors          map[string]float64 `json:"sensors,omitempty"`
}

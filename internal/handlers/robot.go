package handlers

import (
	"errors"
	"net/http"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errExecuteCommand  = "failed to execute command"
	errGetState        = "failed to load robot state"
	errIngestTelemetry = "failed to store telemetry"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for robot commands.
type commandRequest struct {
	Command string `json:"command" binding:"required"` // start | stop | pause | resume
	Mode    string `json:"mode,omitempty"`             // full_clean | mop_only | spray_only | uv_only
}

// CommandRequest is an exported model for Swagger docs of the command payload.
type CommandRequest struct {
	// Command to run. Allowed: start, stop, pause, resume
	Command string `json:"command" example:"start"`
	// Cleaning mode, consulted for start only. Allowed: full_clean, mop_only, spray_only, uv_only
	Mode string `json:"mode,omitempty" example:"mop_only"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Send robot command
// @Description  Validates start/stop/pause/resume against the current state. A rejected precondition still returns 200 with success=false and an explanation.
// @Tags         robot
// @Accept       json
// @Produce      json
// @Param        body  body   CommandRequest  true  "Command payload"
// @Success      200   {object}  map[string]interface{}  "success, message, robot_state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/robot/command [post]
func (h *Handler) robotCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	res, err := h.services.Robot.Execute(ctx, service.CommandParams{
		Command: req.Command,
		Mode:    req.Mode,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errExecuteCommand, "robot_command_failed", err, "command", req.Command)
		return
	}
	if h.log != nil && !res.Success {
		h.log.Infow("robot_command_rejected", "command", req.Command, "reason", res.Message)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     res.Success,
		"message":     res.Message,
		"robot_state": res.State,
	})
}

// @Summary      Get robot status
// @Description  Current state plus any command still waiting for agent pickup. Agents echo command_seq back as command_ack in telemetry.
// @Tags         robot
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "robot_state, pending_command, command_seq"
// @Failure      500  {object}  map[string]string
// @Router       /api/robot/status [get]
func (h *Handler) robotStatus(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "robot_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"robot_state":     st,
		"pending_command": st.PendingCommand,
		"command_seq":     st.CommandSeq,
	})
}

// @Summary      Submit agent telemetry
// @Description  Overwrites the stored state with the agent's report and clears the pending command. Malformed reports are rejected.
// @Tags         robot
// @Accept       json
// @Produce      json
// @Param        body  body   models.Telemetry  true  "Telemetry payload"
// @Success      200   {object}  map[string]interface{}  "status, robot_state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/robot/status [post]
func (h *Handler) submitTelemetry(c *gin.Context) {
	var t models.Telemetry
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	st, err := h.services.Robot.IngestTelemetry(ctx, t)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTelemetry) {
			if h.log != nil {
				h.log.Warnw("telemetry_rejected", "err", err, "robot_id", t.RobotID)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestTelemetry, "telemetry_ingest_failed", err, "robot_id", t.RobotID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      statusOK,
		"robot_state": st,
	})
}

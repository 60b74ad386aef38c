package handlers

import (
	"net/http"

	"cleaning_robot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsConnect upgrades the connection and hands it to the hub. The hub
// pushes the current snapshot first, then every subsequent event in
// commit order; a viewer that missed events re-syncs via GET
// /api/robot/status.
func (h *Handler) wsConnect(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "ws_get_state_failed", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}

	h.hub.ServeConn(conn, models.Event{
		Type:       models.EventStatusUpdate,
		RobotState: &st,
	})
}

package ws

import (
	"context"
	"encoding/json"
	"time"

	"cleaning_robot/internal/logger"
	"cleaning_robot/internal/models"

	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// Per-client outbound buffer. A viewer that cannot drain this many
	// events is dropped; it re-syncs via GET /api/robot/status after
	// reconnecting.
	clientSendBuffer = 16

	hubQueueSize = 256
)

// Hub fans realtime events out to connected viewers. Registration,
// removal and broadcast all go through channels consumed by Run, so the
// client set has a single owner goroutine. Delivery is best-effort,
// at-most-once: there is no queue for disconnected viewers.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan models.Event
	clients    map[*client]bool
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan models.Event, hubQueueSize),
		clients:    make(map[*client]bool),
		log:        log,
	}
}

// Broadcast queues an event for delivery to every connected viewer.
// It never blocks the mutation path: if the hub queue is full the event
// is dropped (viewers re-sync from the status endpoint).
func (h *Hub) Broadcast(e models.Event) {
	select {
	case h.broadcast <- e:
	default:
		if h.log != nil {
			h.log.Warnw("ws_broadcast_dropped", "type", e.Type)
		}
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case e := <-h.broadcast:
			h.fanOut(e)
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

// fanOut marshals once and pushes to each client's buffer. Clients that
// cannot keep up are dropped rather than allowed to stall the others.
func (h *Hub) fanOut(e models.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_event_marshal_failed", "err", err, "type", e.Type)
		}
		return
	}
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			if h.log != nil {
				h.log.Infow("ws_client_too_slow", "type", e.Type)
			}
			h.drop(c)
		}
	}
}

// ServeConn attaches an upgraded connection to the hub and sends the
// initial snapshot so a new viewer renders current state immediately.
func (h *Hub) ServeConn(conn *websocket.Conn, initial models.Event) {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}
	if payload, err := json.Marshal(initial); err == nil {
		c.send <- payload
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// client is one connected viewer session.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump drains incoming frames to service control messages and detect
// disconnects. The panel never sends application data.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers buffered events and keeps the connection alive with
// pings. A closed send channel means the hub dropped this client.
func (c *client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

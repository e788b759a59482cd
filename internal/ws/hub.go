package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fossabot/chatJS-main/internal/observability"
)

// client pairs a connection with its write lock. Lifecycle operations fan
// out from separate goroutines, so writes to one connection must be
// serialized.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub is the live-connection registry: it maps session ids to open websocket
// connections. The gateway mutates it on connect/disconnect; fan-out only
// looks sessions up and writes to them.
type Hub struct {
	clients map[string]*client
	info    map[string]ConnInfo
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		info:    make(map[string]ConnInfo),
	}
}

// Register binds a session id to a connection.
func (h *Hub) Register(sid string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[sid] = &client{conn: conn}
	h.info[sid] = info
}

// Unregister drops a session's connection.
func (h *Hub) Unregister(sid string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, sid)
	delete(h.info, sid)
}

// Has reports whether a session currently holds a live connection.
func (h *Hub) Has(sid string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sid]
	return ok
}

// Send writes a serialized payload to the session's connection. Writes to
// one connection are serialized; a dead connection is closed and dropped
// from the registry.
func (h *Hub) Send(sid string, payload []byte) error {
	h.mu.RLock()
	cl, ok := h.clients[sid]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := cl.write(payload); err != nil {
		log.Printf("websocket write error: %v", err)
		cl.conn.Close()
		h.publishWSError(sid, err)
		h.Unregister(sid)
		return err
	}
	return nil
}

func (h *Hub) publishWSError(sid string, err error) {
	info, ok := h.connInfo(sid)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": observability.WSEvent{
			Event:      "ws_error",
			ConnID:     info.ConnID,
			SID:        sid,
			UID:        info.UID,
			IP:         info.IP,
			DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
			Reason:     err.Error(),
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.messaging", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) connInfo(sid string) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.info[sid]
	return info, ok
}

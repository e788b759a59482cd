package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/fossabot/chatJS-main/internal/messaging"
	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/observability"
	"github.com/fossabot/chatJS-main/internal/session"
)

// Frame codes on the inbound websocket protocol. Code 5 carries the message
// operation family; code 6 carries read receipts.
const (
	CodeMessageOps  = 5
	CodeReadReceipt = 6
)

// Gateway upgrades client connections, binds them to verified sessions and
// feeds inbound frames to the operation dispatcher.
type Gateway struct {
	hub        *Hub
	resolver   *session.Resolver
	dispatcher *messaging.Dispatcher
	svc        *messaging.Service
}

// NewGateway constructs a Gateway.
func NewGateway(hub *Hub, resolver *session.Resolver, dispatcher *messaging.Dispatcher, svc *messaging.Service) *Gateway {
	return &Gateway{hub: hub, resolver: resolver, dispatcher: dispatcher, svc: svc}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type frame struct {
	Type int             `json:"type"`
	Code int             `json:"code"`
	Op   int             `json:"op"`
	Data json.RawMessage `json:"data"`
}

type readReceipt struct {
	DMID string `json:"dmid"`
}

// Handle upgrades the connection and runs the read loop. The handler blocks
// for the lifetime of the connection; returning earlier would cancel the
// request context the awaited operations run on. The token must correspond
// to a session issued by the identity layer; the uid prefix alone is never
// trusted.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chatjs/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	uid, err := g.resolver.Verify(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UID:         uid,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	g.hub.Register(token, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	g.publishEvent(ctx, "ws_connect", token, info, "")

	g.readLoop(ctx, token, uid, conn, info)
}

func (g *Gateway) readLoop(ctx context.Context, sid, uid string, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		g.hub.Unregister(sid)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		g.publishEvent(ctx, "ws_disconnect", sid, info, closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				g.publishEvent(ctx, "ws_error", sid, info, closeReason)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}

		switch f.Code {
		case CodeMessageOps:
			g.dispatcher.Dispatch(ctx, f.Op, models.Author{UID: uid}, f.Data)
		case CodeReadReceipt:
			var receipt readReceipt
			if err := json.Unmarshal(f.Data, &receipt); err != nil {
				continue
			}
			g.svc.MarkRead(ctx, uid, receipt.DMID)
		}
	}
}

func (g *Gateway) publishEvent(ctx context.Context, name, sid string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.messaging", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload: map[string]interface{}{
			"ws": observability.WSEvent{
				Event:      name,
				ConnID:     info.ConnID,
				SID:        sid,
				UID:        info.UID,
				IP:         info.IP,
				DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
				Reason:     reason,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return header
	}
	return c.Query("token")
}

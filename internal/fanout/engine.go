package fanout

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/observability"
	"github.com/fossabot/chatJS-main/internal/repositories"
)

// Registry is the live-connection lookup consumed by the engine. It is owned
// by the connection-management layer; the engine never mutates it.
type Registry interface {
	Has(sid string) bool
	Send(sid string, payload []byte) error
}

// Engine delivers one event to every live session of a participant set.
type Engine struct {
	sessions repositories.SessionRepository
	registry Registry
}

// NewEngine constructs an Engine.
func NewEngine(sessions repositories.SessionRepository, registry Registry) *Engine {
	return &Engine{sessions: sessions, registry: registry}
}

// Broadcast serializes the envelope once and delivers it to every registered
// session of every participant. Participants with no live session are
// skipped. A failure enumerating one participant's shard is logged and does
// not stop fan-out to the remaining participants; it is reported in the
// return value, which is false only on such infrastructure failures.
func (e *Engine) Broadcast(ctx context.Context, participantIDs []string, event models.Envelope) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("fanout marshal failed: %v", err)
		return false
	}

	ok := true
	for _, uid := range participantIDs {
		sessions, err := e.sessions.ListByUID(ctx, uid)
		if err != nil {
			log.Printf("fanout: list sessions for %s failed: %v", uid, err)
			observability.IncFanout("shard_error")
			ok = false
			continue
		}

		for _, session := range sessions {
			if !e.registry.Has(session.SID) {
				observability.IncFanout("skipped")
				continue
			}
			if err := e.registry.Send(session.SID, payload); err != nil {
				log.Printf("fanout: send to %s failed: %v", session.SID, err)
				observability.IncFanout("send_error")
				continue
			}
			observability.IncFanout("delivered")
		}
	}
	return ok
}

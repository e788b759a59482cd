package messaging

import (
	"context"
	"encoding/json"

	"github.com/fossabot/chatJS-main/internal/models"
)

// Dispatcher routes inbound operation codes to lifecycle handlers. Create,
// delete and edit are detached from the caller and run in the background;
// upload is awaited because its outcome must reach the caller.
type Dispatcher struct {
	ops map[int]operation
}

type operation struct {
	handler func(ctx context.Context, sender models.Author, payload json.RawMessage) bool
	await   bool
}

// NewDispatcher builds the op table over a Service.
func NewDispatcher(svc *Service) *Dispatcher {
	return &Dispatcher{ops: map[int]operation{
		models.OpCreate: {handler: svc.handleCreate},
		models.OpDelete: {handler: svc.handleDelete},
		models.OpEdit:   {handler: svc.handleEdit},
		models.OpUpload: {handler: svc.handleUpload, await: true},
	}}
}

// Dispatch routes one inbound frame. The sender identity comes from the
// session layer, never from the payload. Unknown codes return false.
func (d *Dispatcher) Dispatch(ctx context.Context, op int, sender models.Author, payload json.RawMessage) bool {
	entry, ok := d.ops[op]
	if !ok {
		return false
	}
	if entry.await {
		return entry.handler(ctx, sender, payload)
	}
	go entry.handler(context.WithoutCancel(ctx), sender, payload)
	return true
}

func (s *Service) handleCreate(ctx context.Context, sender models.Author, payload json.RawMessage) bool {
	var msg models.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return false
	}
	msg.Author.UID = sender.UID
	if msg.Author.Username == "" {
		msg.Author.Username = sender.Username
	}
	return s.Create(ctx, msg, false)
}

func (s *Service) handleDelete(ctx context.Context, sender models.Author, payload json.RawMessage) bool {
	var req DeleteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}
	req.User.UID = sender.UID
	return s.Delete(ctx, req)
}

func (s *Service) handleEdit(ctx context.Context, sender models.Author, payload json.RawMessage) bool {
	var req EditRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}
	req.User.UID = sender.UID
	return s.Edit(ctx, req)
}

func (s *Service) handleUpload(ctx context.Context, sender models.Author, payload json.RawMessage) bool {
	var req UploadRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return false
	}
	req.User.UID = sender.UID
	if req.User.Username == "" {
		req.User.Username = sender.Username
	}
	return s.Upload(ctx, req)
}

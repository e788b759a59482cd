package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/observability"
	"github.com/fossabot/chatJS-main/internal/repositories"
	"github.com/fossabot/chatJS-main/internal/telemetry"
)

// MaxUploadBytes caps attachment uploads at 10 MB.
const MaxUploadBytes = 10 * 1000 * 1000

// Broadcaster delivers an event to every live session of a participant set.
type Broadcaster interface {
	Broadcast(ctx context.Context, participantIDs []string, event models.Envelope) bool
}

// ObjectStorage stores attachment blobs. Implemented by the CDN collaborator.
type ObjectStorage interface {
	UploadFile(ctx context.Context, channelID, filename string, data []byte) error
}

// Service orchestrates the message lifecycle: it validates requests, mutates
// the message store, updates per-participant shard metadata and invokes
// fan-out. All failures are swallowed into boolean results; the live channel
// is fire-and-forget, so nothing useful could be reported to a sender anyway.
type Service struct {
	keys     repositories.ChannelKeyRepository
	messages repositories.MessageRepository
	fanout   Broadcaster
	storage  ObjectStorage
	audit    *telemetry.AuditEmitter
}

// NewService builds a Service. The audit emitter may be nil.
func NewService(keys repositories.ChannelKeyRepository, messages repositories.MessageRepository, fanout Broadcaster, storage ObjectStorage, audit *telemetry.AuditEmitter) *Service {
	return &Service{keys: keys, messages: messages, fanout: fanout, storage: storage, audit: audit}
}

func namespaceFor(isGroup bool) string {
	if isGroup {
		return models.NamespaceGroup
	}
	return models.NamespaceDirect
}

// Create persists a new message and fans it out to every participant,
// including the author's other sessions. A channel that does not resolve
// from the author's shard is silently ignored.
func (s *Service) Create(ctx context.Context, msg models.Message, system bool) bool {
	if msg.ChannelID == "" || msg.Author.UID == "" {
		return false
	}

	rec, err := s.keys.Resolve(ctx, msg.Author.UID, msg.ChannelID)
	if err != nil {
		if !errors.Is(err, repositories.ErrChannelKeyNotFound) {
			log.Printf("create: resolve channel %s failed: %v", msg.ChannelID, err)
		}
		return false
	}

	participants := rec.Participants(msg.Author.UID)
	if !system && lo.Contains(participants, models.BlockedUID) {
		return false
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	// Open the channel for every recipient. Best effort per shard; a failed
	// shard update must not block delivery to the rest.
	for _, uid := range participants {
		if uid == msg.Author.UID {
			continue
		}
		recipient := models.ChannelKeyRecord{ChannelID: msg.ChannelID, IsGroup: rec.IsGroup, Members: rec.Members}
		if !rec.IsGroup {
			recipient.Members = msg.Author.UID
		}
		if err := s.keys.MarkOpenUnread(ctx, uid, recipient); err != nil {
			log.Printf("create: mark unread for %s failed: %v", uid, err)
		}
	}

	channelID := msg.ChannelID
	msg.ChannelID = ""
	if err := s.messages.Insert(ctx, namespaceFor(rec.IsGroup), channelID, msg); err != nil {
		// Fan-out proceeds regardless of the write outcome.
		log.Printf("create: insert into %s failed: %v", channelID, err)
	}
	msg.ChannelID = channelID

	observability.IncOp("create")
	s.audit.Emit(ctx, "info", "create", "message created in "+channelID, &msg.Author.UID)
	return s.fanout.Broadcast(ctx, participants, models.MessageEvent(models.OpCreate, msg))
}

// EditRequest identifies a message and its replacement content.
type EditRequest struct {
	ChatID  string          `json:"chatid"`
	MsgID   string          `json:"msgid"`
	Content json.RawMessage `json:"content"`
	User    models.Author   `json:"user"`
}

// Edit replaces a message's content. Only the author may edit; a mismatch is
// indistinguishable from a missing message. Soft-deleted messages are not
// editable.
func (s *Service) Edit(ctx context.Context, req EditRequest) bool {
	if req.ChatID == "" || len(req.Content) == 0 || req.User.UID == "" {
		return false
	}

	rec, err := s.keys.Resolve(ctx, req.User.UID, req.ChatID)
	if err != nil {
		return false
	}
	ns := namespaceFor(rec.IsGroup)

	msg, err := s.messages.FindByID(ctx, ns, req.ChatID, req.MsgID)
	if err != nil || msg.Author.UID != req.User.UID || msg.Deleted {
		return false
	}

	if err := s.messages.UpdateContent(ctx, ns, req.ChatID, req.MsgID, req.Content); err != nil {
		log.Printf("edit: update %s failed: %v", req.MsgID, err)
		return false
	}

	observability.IncOp("edit")
	s.audit.Emit(ctx, "info", "edit", "message edited in "+req.ChatID, &req.User.UID)
	return s.fanout.Broadcast(ctx, rec.Participants(req.User.UID), models.MessageEvent(models.OpEdit, models.EditEventData{
		ChannelID: req.ChatID,
		MsgID:     req.MsgID,
		Content:   req.Content,
		Author:    req.User,
	}))
}

// DeleteRequest identifies a message to soft-delete.
type DeleteRequest struct {
	ChatID string        `json:"chatid"`
	MsgID  string        `json:"msgid"`
	User   models.Author `json:"user"`
}

// Delete soft-deletes a message: the row is retained with the deleted flag
// set. Author-only, idempotent. The event payload carries no content.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) bool {
	if req.ChatID == "" || req.User.UID == "" {
		return false
	}

	rec, err := s.keys.Resolve(ctx, req.User.UID, req.ChatID)
	if err != nil {
		return false
	}
	ns := namespaceFor(rec.IsGroup)

	msg, err := s.messages.FindByID(ctx, ns, req.ChatID, req.MsgID)
	if err != nil || msg.Author.UID != req.User.UID {
		return false
	}

	if err := s.messages.MarkDeleted(ctx, ns, req.ChatID, req.MsgID); err != nil {
		log.Printf("delete: mark %s failed: %v", req.MsgID, err)
		return false
	}

	observability.IncOp("delete")
	s.audit.Emit(ctx, "info", "delete", "message deleted in "+req.ChatID, &req.User.UID)
	return s.fanout.Broadcast(ctx, rec.Participants(req.User.UID), models.MessageEvent(models.OpDelete, models.DeleteEventData{
		ChannelID: req.ChatID,
		MsgID:     req.MsgID,
	}))
}

// MarkRead clears the unread flag on the requester's own channel-key records
// for every other member encoded in the channel id. Local-state only; no
// event is emitted and other members' shards are untouched.
func (s *Service) MarkRead(ctx context.Context, uid, channelID string) bool {
	if uid == "" || channelID == "" {
		return false
	}

	ok := true
	for _, other := range models.SplitMembers(channelID) {
		if other == uid {
			continue
		}
		if err := s.keys.ClearUnread(ctx, uid, other); err != nil {
			log.Printf("mark read: clear unread %s/%s failed: %v", uid, other, err)
			ok = false
		}
	}
	return ok
}

// UploadRequest carries an attachment destined for a channel.
type UploadRequest struct {
	ChannelID string        `json:"channelid"`
	Filename  string        `json:"filename"`
	Data      []byte        `json:"buf"`
	User      models.Author `json:"user"`
}

// Upload stores an attachment with the CDN collaborator and synthesizes a
// create whose content references the stored filename. Rejected above the
// size ceiling. Unlike the other operations its outcome is awaited, so the
// caller can distinguish a storage failure.
func (s *Service) Upload(ctx context.Context, req UploadRequest) bool {
	if req.ChannelID == "" || req.Filename == "" || len(req.Data) == 0 || req.User.UID == "" {
		return false
	}
	if len(req.Data) > MaxUploadBytes {
		return false
	}

	if err := s.storage.UploadFile(ctx, req.ChannelID, req.Filename, req.Data); err != nil {
		log.Printf("upload: store %s failed: %v", req.Filename, err)
		return false
	}

	content, err := json.Marshal(map[string]string{"filename": req.Filename})
	if err != nil {
		return false
	}

	observability.IncOp("upload")
	return s.Create(ctx, models.Message{
		ID:        uuid.NewString(),
		ChannelID: req.ChannelID,
		Author:    req.User,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Content:   content,
	}, false)
}

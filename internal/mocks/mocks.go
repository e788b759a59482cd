package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/repositories"
)

type ChannelKeyRepositoryMock struct {
	mock.Mock
}

func (m *ChannelKeyRepositoryMock) Resolve(ctx context.Context, shardUID, channelID string) (models.ChannelKeyRecord, error) {
	args := m.Called(ctx, shardUID, channelID)
	var rec models.ChannelKeyRecord
	if val := args.Get(0); val != nil {
		rec = val.(models.ChannelKeyRecord)
	}
	return rec, args.Error(1)
}

func (m *ChannelKeyRepositoryMock) FindByCounterpart(ctx context.Context, shardUID, counterpart string) (models.ChannelKeyRecord, error) {
	args := m.Called(ctx, shardUID, counterpart)
	var rec models.ChannelKeyRecord
	if val := args.Get(0); val != nil {
		rec = val.(models.ChannelKeyRecord)
	}
	return rec, args.Error(1)
}

func (m *ChannelKeyRepositoryMock) MarkOpenUnread(ctx context.Context, shardUID string, rec models.ChannelKeyRecord) error {
	args := m.Called(ctx, shardUID, rec)
	return args.Error(0)
}

func (m *ChannelKeyRepositoryMock) ClearUnread(ctx context.Context, shardUID, counterpart string) error {
	args := m.Called(ctx, shardUID, counterpart)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Insert(ctx context.Context, namespace, channelID string, msg models.Message) error {
	args := m.Called(ctx, namespace, channelID, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) FindByID(ctx context.Context, namespace, channelID, messageID string) (models.Message, error) {
	args := m.Called(ctx, namespace, channelID, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListActive(ctx context.Context, namespace, channelID string) ([]models.Message, error) {
	args := m.Called(ctx, namespace, channelID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkDeleted(ctx context.Context, namespace, channelID, messageID string) error {
	args := m.Called(ctx, namespace, channelID, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UpdateContent(ctx context.Context, namespace, channelID, messageID string, content json.RawMessage) error {
	args := m.Called(ctx, namespace, channelID, messageID, content)
	return args.Error(0)
}

func (m *MessageRepositoryMock) FindConfig(ctx context.Context, namespace, channelID string) (json.RawMessage, error) {
	args := m.Called(ctx, namespace, channelID)
	var raw json.RawMessage
	if val := args.Get(0); val != nil {
		raw = val.(json.RawMessage)
	}
	return raw, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) ListByUID(ctx context.Context, uid string) ([]models.Session, error) {
	args := m.Called(ctx, uid)
	var sessions []models.Session
	if val := args.Get(0); val != nil {
		sessions = val.([]models.Session)
	}
	return sessions, args.Error(1)
}

func (m *SessionRepositoryMock) FindBySID(ctx context.Context, sid string) (models.Session, error) {
	args := m.Called(ctx, sid)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Broadcast(ctx context.Context, participantIDs []string, event models.Envelope) bool {
	args := m.Called(ctx, participantIDs, event)
	return args.Bool(0)
}

type ObjectStorageMock struct {
	mock.Mock
}

func (m *ObjectStorageMock) UploadFile(ctx context.Context, channelID, filename string, data []byte) error {
	args := m.Called(ctx, channelID, filename, data)
	return args.Error(0)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Has(sid string) bool {
	args := m.Called(sid)
	return args.Bool(0)
}

func (m *RegistryMock) Send(sid string, payload []byte) error {
	args := m.Called(sid, payload)
	return args.Error(0)
}

var _ repositories.ChannelKeyRepository = (*ChannelKeyRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)

package fanout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/chatJS-main/internal/mocks"
	"github.com/fossabot/chatJS-main/internal/models"
)

func TestBroadcastDeliversToEveryLiveSession(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	registry := new(mocks.RegistryMock)
	engine := NewEngine(sessions, registry)

	sessions.On("ListByUID", mock.Anything, "alice").
		Return([]models.Session{{SID: "s1", UID: "alice"}, {SID: "s2", UID: "alice"}}, nil).Once()
	sessions.On("ListByUID", mock.Anything, "bob").
		Return([]models.Session{{SID: "s3", UID: "bob"}}, nil).Once()

	registry.On("Has", "s1").Return(true).Once()
	registry.On("Has", "s2").Return(false).Once()
	registry.On("Has", "s3").Return(true).Once()
	registry.On("Send", "s1", mock.MatchedBy(validEnvelope)).Return(nil).Once()
	registry.On("Send", "s3", mock.MatchedBy(validEnvelope)).Return(nil).Once()

	ok := engine.Broadcast(context.Background(), []string{"alice", "bob"},
		models.MessageEvent(models.OpCreate, models.Message{ID: "m1", ChannelID: "ch1"}))

	require.True(t, ok)
	registry.AssertExpectations(t)
	registry.AssertNotCalled(t, "Send", "s2", mock.Anything)
}

func validEnvelope(payload []byte) bool {
	var env struct {
		Type int             `json:"type"`
		Code int             `json:"code"`
		Op   int             `json:"op"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	return env.Type == 0 && env.Code == 5 && len(env.Data) > 0
}

func TestBroadcastSkipsParticipantsWithoutSessions(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	registry := new(mocks.RegistryMock)
	engine := NewEngine(sessions, registry)

	sessions.On("ListByUID", mock.Anything, "offline").Return([]models.Session(nil), nil).Once()

	ok := engine.Broadcast(context.Background(), []string{"offline"},
		models.MessageEvent(models.OpCreate, models.Message{ID: "m1"}))

	assert.True(t, ok)
	registry.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestBroadcastIsolatesShardFailures(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	registry := new(mocks.RegistryMock)
	engine := NewEngine(sessions, registry)

	sessions.On("ListByUID", mock.Anything, "alice").
		Return([]models.Session(nil), assert.AnError).Once()
	sessions.On("ListByUID", mock.Anything, "bob").
		Return([]models.Session{{SID: "s3", UID: "bob"}}, nil).Once()

	registry.On("Has", "s3").Return(true).Once()
	registry.On("Send", "s3", mock.Anything).Return(nil).Once()

	// One broken shard must not stop delivery to the rest, but it is an
	// infrastructure failure and the result reflects it.
	ok := engine.Broadcast(context.Background(), []string{"alice", "bob"},
		models.MessageEvent(models.OpDelete, models.DeleteEventData{ChannelID: "ch1", MsgID: "m1"}))

	assert.False(t, ok)
	registry.AssertExpectations(t)
}

func TestBroadcastContinuesPastSendErrors(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	registry := new(mocks.RegistryMock)
	engine := NewEngine(sessions, registry)

	sessions.On("ListByUID", mock.Anything, "alice").
		Return([]models.Session{{SID: "s1", UID: "alice"}, {SID: "s2", UID: "alice"}}, nil).Once()

	registry.On("Has", "s1").Return(true).Once()
	registry.On("Has", "s2").Return(true).Once()
	registry.On("Send", "s1", mock.Anything).Return(assert.AnError).Once()
	registry.On("Send", "s2", mock.Anything).Return(nil).Once()

	ok := engine.Broadcast(context.Background(), []string{"alice"},
		models.MessageEvent(models.OpEdit, models.EditEventData{ChannelID: "ch1", MsgID: "m1"}))

	assert.True(t, ok)
	registry.AssertExpectations(t)
}

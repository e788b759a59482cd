package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/chatJS-main/internal/mocks"
	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/repositories"
)

func TestUIDFromToken(t *testing.T) {
	uid, err := UIDFromToken("alice.abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	_, err = UIDFromToken("no-delimiter")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = UIDFromToken(".secret-only")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRegisteredSession(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	resolver := NewResolver(sessions)

	sessions.On("FindBySID", mock.Anything, "alice.abc").
		Return(models.Session{SID: "alice.abc", UID: "alice"}, nil).Once()

	uid, err := resolver.Verify(context.Background(), "alice.abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
}

func TestVerifyUnknownSession(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	resolver := NewResolver(sessions)

	sessions.On("FindBySID", mock.Anything, "alice.abc").
		Return(models.Session{}, repositories.ErrSessionNotFound).Once()

	_, err := resolver.Verify(context.Background(), "alice.abc")
	assert.Error(t, err)
}

func TestVerifyShardMismatch(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	resolver := NewResolver(sessions)

	sessions.On("FindBySID", mock.Anything, "alice.abc").
		Return(models.Session{SID: "alice.abc", UID: "mallory"}, nil).Once()

	_, err := resolver.Verify(context.Background(), "alice.abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

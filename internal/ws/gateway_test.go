package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/chatJS-main/internal/messaging"
	"github.com/fossabot/chatJS-main/internal/mocks"
	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/repositories"
	"github.com/fossabot/chatJS-main/internal/session"
)

func newTestGateway(sessions *mocks.SessionRepositoryMock, keys *mocks.ChannelKeyRepositoryMock) (*Gateway, *Hub) {
	hub := NewHub()
	svc := messaging.NewService(keys, new(mocks.MessageRepositoryMock), new(mocks.BroadcasterMock), new(mocks.ObjectStorageMock), nil)
	gateway := NewGateway(hub, session.NewResolver(sessions), messaging.NewDispatcher(svc), svc)
	return gateway, hub
}

func dialGateway(t *testing.T, gateway *Gateway, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", gateway.Handle)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestGatewayReadReceiptRunsOnLiveContext(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	keys := new(mocks.ChannelKeyRepositoryMock)
	gateway, _ := newTestGateway(sessions, keys)

	sessions.On("FindBySID", mock.Anything, "alice.tok").
		Return(models.Session{SID: "alice.tok", UID: "alice"}, nil).Once()

	ctxErr := make(chan error, 1)
	keys.On("ClearUnread", mock.Anything, "alice", "bob").
		Run(func(args mock.Arguments) { ctxErr <- args.Get(0).(context.Context).Err() }).
		Return(nil).Once()

	conn, _, err := dialGateway(t, gateway, "alice.tok")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": 0,
		"code": CodeReadReceipt,
		"data": map[string]string{"dmid": "alice|bob"},
	}))

	// The receipt must reach the store on a context that is still alive;
	// the handler holds the connection open rather than returning after
	// the handshake.
	select {
	case err := <-ctxErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("read receipt never reached the store")
	}
	keys.AssertExpectations(t)
}

func TestGatewayRejectsUnregisteredToken(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	gateway, hub := newTestGateway(sessions, new(mocks.ChannelKeyRepositoryMock))

	sessions.On("FindBySID", mock.Anything, "victim.forged").
		Return(models.Session{}, repositories.ErrSessionNotFound).Once()

	_, resp, err := dialGateway(t, gateway, "victim.forged")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, hub.Has("victim.forged"))
}

func TestGatewayRejectsShardMismatchToken(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	gateway, hub := newTestGateway(sessions, new(mocks.ChannelKeyRepositoryMock))

	sessions.On("FindBySID", mock.Anything, "victim.stolen").
		Return(models.Session{SID: "victim.stolen", UID: "mallory"}, nil).Once()

	_, resp, err := dialGateway(t, gateway, "victim.stolen")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, hub.Has("victim.stolen"))
}

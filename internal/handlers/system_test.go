package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/chatJS-main/internal/models"
)

type creatorFunc func(ctx context.Context, msg models.Message, system bool) bool

func (f creatorFunc) Create(ctx context.Context, msg models.Message, system bool) bool {
	return f(ctx, msg, system)
}

func setupSystemRouter(creator MessageCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/messages", NewSystemHandler(creator).PostMessage)
	return r
}

func TestPostSystemMessage(t *testing.T) {
	var gotSystem bool
	var gotChannel string
	router := setupSystemRouter(creatorFunc(func(_ context.Context, msg models.Message, system bool) bool {
		gotSystem = system
		gotChannel = msg.ChannelID
		return true
	}))

	body := `{"channelID":"ch1","author":{"uid":"system"},"content":"bob joined"}`
	req := httptest.NewRequest(http.MethodPost, "/internal/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, gotSystem)
	assert.Equal(t, "ch1", gotChannel)
}

func TestPostSystemMessageRejected(t *testing.T) {
	router := setupSystemRouter(creatorFunc(func(context.Context, models.Message, bool) bool {
		return false
	}))

	body := `{"channelID":"stale","author":{"uid":"system"},"content":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/internal/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostSystemMessageBadBody(t *testing.T) {
	router := setupSystemRouter(creatorFunc(func(context.Context, models.Message, bool) bool {
		t.Fatal("creator must not run on an invalid body")
		return false
	}))

	req := httptest.NewRequest(http.MethodPost, "/internal/messages", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

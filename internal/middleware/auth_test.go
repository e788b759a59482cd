package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/chatJS-main/internal/mocks"
	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/repositories"
	"github.com/fossabot/chatJS-main/internal/session"
)

func setupAuthRouter(sessions *mocks.SessionRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionAuth(session.NewResolver(sessions)))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString("uid")})
	})
	return r
}

func TestSessionAuthMissingHeader(t *testing.T) {
	router := setupAuthRouter(new(mocks.SessionRepositoryMock))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthUnknownSession(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	sessions.On("FindBySID", mock.Anything, "alice.abc").
		Return(models.Session{}, repositories.ErrSessionNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer alice.abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthValidToken(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	sessions.On("FindBySID", mock.Anything, "alice.abc").
		Return(models.Session{SID: "alice.abc", UID: "alice"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer alice.abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"alice"}`, rec.Body.String())
}

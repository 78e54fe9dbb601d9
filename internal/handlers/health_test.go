package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faisd405/ayomabar-be/internal/testutil"
	ws "github.com/Faisd405/ayomabar-be/internal/websocket"
)

func getHealth(t *testing.T, h *HealthHandler) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health", h.Check)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHealthReportsOnlineUsers(t *testing.T) {
	db := testutil.NewDatabase(t)
	hub := ws.NewHub(testutil.Logger())
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := NewHealthHandler(db.Ping, hub.OnlineCount)

	code, env := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	var data struct {
		Online int `json:"online"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, 0, data.Online)

	// Two tabs of one user count once.
	userID := uuid.New()
	hub.Register(ws.NewClient(hub, nil, userID))
	hub.Register(ws.NewClient(hub, nil, userID))
	hub.Register(ws.NewClient(hub, nil, uuid.New()))
	require.Eventually(t, func() bool { return hub.OnlineCount() == 2 }, time.Second, 10*time.Millisecond)

	_, env = getHealth(t, h)
	decodeData(t, env, &data)
	assert.Equal(t, 2, data.Online)
}

func TestHealthDatabaseDown(t *testing.T) {
	h := NewHealthHandler(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}, func() int { return 3 })

	code, env := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Database unavailable", env.Message)
	assert.NotContains(t, string(env.Data), "connection refused")
}

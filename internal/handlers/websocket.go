package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Faisd405/ayomabar-be/internal/services"
	ws "github.com/Faisd405/ayomabar-be/internal/websocket"
)

// WebSocketHandler upgrades clients onto the live room feed.
type WebSocketHandler struct {
	hub      *ws.Hub
	guard    ws.RoomGuard
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewWebSocketHandler(hub *ws.Hub, rooms *services.RoomService, allowedOrigins []string, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		guard: roomGuard{rooms: rooms},
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.guard)
}

// originChecker allows any origin when none are configured.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

type roomGuard struct {
	rooms *services.RoomService
}

func (g roomGuard) CanWatch(ctx context.Context, userID, roomID uuid.UUID) error {
	_, err := g.rooms.GetRoom(ctx, roomID)
	return err
}

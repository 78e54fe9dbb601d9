package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports database reachability and how many users hold a live
// websocket connection.
type HealthHandler struct {
	ping   func(ctx context.Context) error
	online func() int
}

func NewHealthHandler(ping func(ctx context.Context) error, online func() int) *HealthHandler {
	return &HealthHandler{ping: ping, online: online}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		_ = c.Error(err)
		respond(c, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}
	ok(c, "OK", gin.H{"online": h.online()})
}

package handler

import (
	"context"
	"time"

	"barber-queue/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// UpgradeOnly rejects plain HTTP requests on websocket routes.
func UpgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SessionWS subscribes the connection to its session's state pushes.
func (h *Handler) SessionWS(c *websocket.Conn) {
	sid, _ := c.Locals("session_id").(string)
	if sid == "" {
		c.Close()
		return
	}

	h.hub.Register(sid, c)
	defer h.hub.Unregister(sid, c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	st, err := h.ctrl.State(ctx, sid)
	cancel()
	if err != nil {
		logger.Error("ws initial state", zap.String("session_id", sid), zap.Error(err))
		return
	}
	// The page reloads only when this key differs from the one it rendered.
	// Sent through the hub so writes stay on one goroutine.
	h.hub.Publish(sid, st)

	// listen client
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

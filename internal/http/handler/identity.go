package handler

import (
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MatchIdentity runs after JWTAuth. The token must belong to the identity
// this session authenticated with.
func (h *Handler) MatchIdentity(c *fiber.Ctx) error {
	sid := middleware.SessionID(c)
	st, err := h.ctrl.State(c.UserContext(), sid)
	if err != nil {
		return err
	}

	userID, _ := c.Locals("user_id").(string)
	if st.Identity == nil || st.Identity.UserID != userID {
		logger.Debug("identity does not match session",
			zap.String("session_id", sid),
			zap.String("user_id", userID),
		)
		return middleware.Unauthorized(c, "Please sign in to continue.")
	}

	return c.Next()
}

package handler

import (
	"context"
	"time"

	"barber-queue/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": status == fiber.StatusOK,
		"checks":  checks,
	})
}

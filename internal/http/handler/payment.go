package handler

import (
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/monitoring"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) OpenPayment(c *fiber.Ctx) error {
	st, err := h.ctrl.OpenPayment(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, st)
}

// ConfirmPayment answers as soon as the charge has started; the overlay
// advances through websocket pushes.
func (h *Handler) ConfirmPayment(c *fiber.Ctx) error {
	st, err := h.ctrl.ConfirmPayment(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, st)
}

func (h *Handler) ClosePayment(c *fiber.Ctx) error {
	st, err := h.ctrl.ClosePayment(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	monitoring.TrackPayment("dismissed")
	return h.respond(c, st)
}

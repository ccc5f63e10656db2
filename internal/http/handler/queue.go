package handler

import (
	"barber-queue/internal/http/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) JoinQueue(c *fiber.Ctx) error {
	st, err := h.ctrl.SelectService(c.UserContext(), middleware.SessionID(c), c.Params("serviceId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, st)
}

func (h *Handler) CancelSpot(c *fiber.Ctx) error {
	st, err := h.ctrl.Cancel(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, st)
}

func (h *Handler) Services(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": h.ctrl.Catalog().List(),
	})
}

package handler

import (
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/http/view"
	"barber-queue/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Index renders the active screen. A pending notice is consumed here.
func (h *Handler) Index(c *fiber.Ctx) error {
	sid := middleware.SessionID(c)
	st, err := h.ctrl.TakeNotice(c.UserContext(), sid)
	if err != nil {
		return err
	}

	page := view.NewPage(st, h.ctrl.Catalog().List())
	page.PhoneGate = c.Query("gate") == "phone"
	if page.PhoneGate && h.phones != nil {
		phone, ok, err := h.phones.Phone(c.UserContext(), sid)
		switch {
		case err != nil:
			logger.Warn("load cached phone", zap.String("session_id", sid), zap.Error(err))
		case ok:
			page.Phone = phone
		}
	}

	c.Type("html", "utf-8")
	return view.Render(c, page)
}

func (h *Handler) State(c *fiber.Ctx) error {
	st, err := h.ctrl.TakeNotice(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(newStateResponse(st))
}

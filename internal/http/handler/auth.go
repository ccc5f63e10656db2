package handler

import (
	"time"

	"barber-queue/internal/gate"
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/models"
	"barber-queue/internal/monitoring"

	"github.com/gofiber/fiber/v2"
)

const (
	modeSignUp = "signup"
	modeSignIn = "signin"
	modePhone  = "phone"
)

func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req gate.SignUpInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	profile, id, err := h.gate.SignUp(c.UserContext(), req)
	return h.authenticated(c, modeSignUp, profile, id, err)
}

func (h *Handler) SignIn(c *fiber.Ctx) error {
	var req gate.SignInInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	profile, id, err := h.gate.SignIn(c.UserContext(), req)
	return h.authenticated(c, modeSignIn, profile, id, err)
}

func (h *Handler) EnterWithPhone(c *fiber.Ctx) error {
	var req gate.PhoneInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	profile, id, err := h.gate.EnterWithPhone(c.UserContext(), middleware.SessionID(c), req)
	return h.authenticated(c, modePhone, profile, id, err)
}

// authenticated hands a gate result to the controller and stores the
// identity token in a cookie for the guarded routes.
func (h *Handler) authenticated(c *fiber.Ctx, mode string, profile models.Profile, id models.Identity, err error) error {
	if err != nil {
		monitoring.TrackAuth(mode, "rejected")
		return h.fail(c, err)
	}

	notice := gate.SuccessNotice(mode, profile)
	st, err := h.ctrl.Authenticate(c.UserContext(), middleware.SessionID(c), &id, &profile, &notice)
	if err != nil {
		monitoring.TrackAuth(mode, "error")
		return h.fail(c, err)
	}
	monitoring.TrackAuth(mode, "ok")

	c.Cookie(&fiber.Cookie{
		Name:     middleware.IdentityCookie,
		Value:    id.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if middleware.WantsJSON(c) {
		// the notice travels in this response, so it is not shown again
		if _, err := h.ctrl.TakeNotice(c.UserContext(), middleware.SessionID(c)); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{
			"token": id.Token,
			"state": newStateResponse(st),
		})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	st, err := h.ctrl.SignOut(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.IdentityCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return h.respond(c, st)
}

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookie = "sid"
	sessionLocal  = "session_id"
)

// Session makes sure every request carries a browser session id, issuing a
// new cookie when the current one is missing or malformed.
func Session(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(SessionCookie)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(sessionLocal, sid)
		return c.Next()
	}
}

func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionLocal).(string)
	return sid
}

package middleware

import (
	"strings"

	"barber-queue/internal/config"

	"github.com/gofiber/fiber/v2"
)

const IdentityCookie = "identity"

// JWTAuth accepts the identity token from the Authorization header or the
// identity cookie set at sign-in.
func JWTAuth(tokens *config.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(IdentityCookie)

		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return Unauthorized(c, "Invalid authorization format")
			}
			token = tokenParts[1]
		}

		if token == "" {
			return Unauthorized(c, "Please sign in to continue.")
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("anonymous", claims.Anonymous)

		return c.Next()
	}
}

// Unauthorized answers JSON clients with 401 and sends browsers back to the
// sign-in screen.
func Unauthorized(c *fiber.Ctx, message string) error {
	if WantsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": message,
		})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func WantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/services"
)

const sessionCookie = "sid"

// tokenFrom reads a bearer token, falling back to the session cookie.
func tokenFrom(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(sessionCookie)
}

func authenticate(c *fiber.Ctx, auth *services.AuthService) bool {
	tok := tokenFrom(c)
	if tok == "" {
		return false
	}
	claims, err := auth.Verify(tok)
	if err != nil {
		applog.Security(c, "auth.token.invalid", nil)
		return false
	}
	c.Locals("user_id", claims.Subject)
	c.Locals("user", claims)
	return true
}

// RequireAPIUser rejects unauthenticated API calls with 401.
func RequireAPIUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authenticate(c, auth) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authenticate(c, auth) {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// userID is empty when the route is not behind RequireUser/RequireAPIUser;
// the services turn that into ErrUnauthenticated.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

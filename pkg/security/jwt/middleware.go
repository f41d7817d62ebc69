package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the middleware.
const (
	LocalsUserID = "userId"
	LocalsEmail  = "email"
)

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// A request without Authorization passes through untouched unless required is
// set; a present but invalid token is always rejected. On success the subject
// and email are stored in c.Locals.
func NewAuthMiddleware(secret, expectedIssuer string, required bool) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			if required {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing Authorization header"})
			}
			return c.Next()
		}
		// Support both "Bearer <token>" and "<token>" (no prefix).
		tokenStr := authHeader
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		}
		if tokenStr == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "empty token"})
		}
		claims, err := Parse(tokenStr, secretBytes, expectedIssuer)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		c.Locals(LocalsUserID, claims.Subject)
		c.Locals(LocalsEmail, claims.Email)
		return c.Next()
	}
}

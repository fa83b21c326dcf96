package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"license-key-server/internal/service"
	"license-key-server/internal/util"
)

const AdminSessionKey = "adminSession"

// AdminAuth validates the bearer session token and stores the resulting
// AdminSession in the request context. Handlers pass it to the mutation
// service as the required capability.
func AdminAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session token",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization format",
			})
		}

		loginAt, err := util.ValidateSessionToken(secret, tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid session token",
			})
		}

		c.Locals(AdminSessionKey, &service.AdminSession{LoginAt: loginAt})
		return c.Next()
	}
}

// SessionFrom pulls the AdminSession placed by AdminAuth, nil if absent.
func SessionFrom(c *fiber.Ctx) *service.AdminSession {
	session, _ := c.Locals(AdminSessionKey).(*service.AdminSession)
	return session
}

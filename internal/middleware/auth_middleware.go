package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/utils/jwt"
)

// AuthMiddleware validates the bearer token and attaches the claims to
// the request context.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No token provided",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// UserClaims pulls the authenticated user's claims off the request, if
// the auth middleware ran for this route.
func UserClaims(c *fiber.Ctx) (*jwt.Claims, bool) {
	claims, ok := c.Locals("user").(*jwt.Claims)
	return claims, ok
}

// AdminOnly allows only users with the Admin role past.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		if claims.Role != string(model.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied. Admin only.",
			})
		}

		return c.Next()
	}
}

package middleware

import (
	"log"

	"shopsmart/internal/models"
	"shopsmart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HeaderName is the custom header carrying the auth token.
const HeaderName = "x-auth-token"

// AuthRequired is a Fiber middleware to check for a valid JWT token in the
// x-auth-token header. On success it stores the caller's identity and role
// in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Get(HeaderName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "No token, authorization denied",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token is not valid",
			})
		}

		userID, _ := claims["user_id"].(string)
		roleClaim, _ := claims["role"].(string)
		role := models.Role(roleClaim)
		if userID == "" || !role.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token is not valid",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)

		return c.Next()
	}
}

// AdminRequired gates a route to callers holding the admin role. It must run
// after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(models.Role)
		if !role.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"msg": "Authorization denied, admin access required",
			})
		}
		return c.Next()
	}
}

package middleware

import (
	"strings"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"landkit/internal/auth"
)

// UserIDKey is the request-locals key carrying the authenticated user id.
const UserIDKey = "user_id"

// RequireAuth validates the bearer token and stores the caller's user
// id in request locals. Handlers read it with CurrentUserID.
func RequireAuth(jwtSecret string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return unauthorized(c, "Invalid authorization header")
		}

		claims, err := auth.VerifyToken(jwtSecret, parts[1])
		if err != nil {
			logger.Debug("Rejected bearer token", slog.Any("error", err))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// CurrentUserID reads the authenticated user id set by RequireAuth.
// Returns 0 when the request never passed the middleware.
func CurrentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDKey).(uint); ok {
		return id
	}
	return 0
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

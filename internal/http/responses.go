package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"landkit/internal/http/middleware"
)

// All JSON responses share one envelope: {success, data?, message?, errors?}.

func respondData(ctx *cartridge.Context, status int, data any) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondMessage(ctx *cartridge.Context, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

func respondError(ctx *cartridge.Context, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func respondValidationErrors(ctx *cartridge.Context, errors map[string]string) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errors,
	})
}

// currentUserID reads the authenticated caller set by the bearer
// middleware.
func currentUserID(ctx *cartridge.Context) uint {
	return middleware.CurrentUserID(ctx.Ctx)
}

// queryInt parses an integer query parameter, falling back to def on
// absence or garbage.
func queryInt(ctx *cartridge.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

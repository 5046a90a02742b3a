package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
)

// Responses share one envelope: {success, data?, message?, errors?}.

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

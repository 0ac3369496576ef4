package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

// statusFor maps an application error kind to an HTTP status code.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindFileNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation, apperr.KindUnsupportedFormat:
		return fiber.StatusBadRequest
	case apperr.KindInvalidStateTransition:
		return fiber.StatusConflict
	case apperr.KindExternalService:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

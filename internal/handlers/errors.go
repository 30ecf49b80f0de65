package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/services"
)

func statusForError(err error) int {
	switch services.ErrorKind(err) {
	case services.ErrUnsupportedFormat:
		return fiber.StatusUnsupportedMediaType
	case services.ErrExtractionFailed:
		return fiber.StatusUnprocessableEntity
	case services.ErrUnknownRole:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// writeScoringError maps an engine error to a response. Internal errors are
// not echoed to the client.
func writeScoringError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"kind":  services.KindCode(err),
	})
}

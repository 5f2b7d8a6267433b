package api

import (
	"errors"
	"log"
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/services"
)

var errInvalidBody = &services.Error{Kind: services.ErrValidation, Message: "invalid request body"}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError writes err with the status of its kind. Unclassified errors
// are logged with a stack and hidden behind "internal error".
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("api: %s %s failed: %v\n%s", c.Method(), c.Path(), err, debug.Stack())
	}
	return apiError(c, status, services.PublicMessage(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrPermission):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors that escape the handlers, such as unmatched
// routes or a recovered panic, as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError(c, fiberErr.Code, strings.ToLower(fiberErr.Message))
	}
	return respondError(c, err)
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/catalogapi/internal/services"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {"success": false, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := errorResponse(err)
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func errorResponse(err error) (int, string) {
	var se *services.ServiceError
	if errors.As(err, &se) {
		switch se.Kind {
		case services.KindValidation, services.KindConflict:
			return fiber.StatusBadRequest, se.Message
		case services.KindAuth:
			switch {
			case errors.Is(se, services.ErrMissingToken):
				return fiber.StatusUnauthorized, se.Message
			case errors.Is(se, services.ErrInvalidToken):
				return fiber.StatusForbidden, se.Message
			default:
				return fiber.StatusBadRequest, se.Message
			}
		default:
			return fiber.StatusInternalServerError, services.ErrUpstream.Message
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	return fiber.StatusInternalServerError, services.ErrUpstream.Message
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Route not exists"})
}

// Health reports liveness.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

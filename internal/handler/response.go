package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/store"
)

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrUnknownSection),
		errors.Is(err, domain.ErrNoProfile):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrNoActivePlan):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedCapability):
		return fiber.StatusNotImplemented
	case errors.Is(err, domain.ErrConfiguration):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrParse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func failErr(c *fiber.Ctx, err error) error {
	return fail(c, errorStatus(err), err.Error())
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// sessionStore returns the state store opened for the authenticated session
func sessionStore(c *fiber.Ctx) (*store.Store, bool) {
	st := middleware.GetStore(c)
	return st, st != nil
}

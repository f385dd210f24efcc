package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/gym-finder/internal/service"
)

// respondError maps a service error to its HTTP status and writes {"error": message}.
// Unclassified errors are 500s; their message is passed to the client as-is.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrAuth):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = fiber.StatusNotFound
	default:
		var se *service.StorageError
		if errors.As(err, &se) {
			zap.L().Error("storage error", zap.String("op", se.Op), zap.Error(se.Err))
		} else {
			zap.L().Error("unexpected error", zap.Error(err))
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parseID reads the ":id" path parameter. Only unsigned integers are accepted, so
// "/api/gym/abc" is a 400 rather than a lookup.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

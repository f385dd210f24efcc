package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/gym-finder/internal/service"
)

// CreateLocationRequest is the JSON body for POST /api/location.
// Token is consumed by the RequireToken middleware when write gating is on.
type CreateLocationRequest struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// ListLocations returns a handler for GET /api/location.
func ListLocations(locations *service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := locations.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// GetLocation returns a handler for GET /api/location/:id.
func GetLocation(locations *service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return badRequest(c, "Invalid ID format.")
		}

		loc, err := locations.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(loc)
	}
}

// CreateLocation returns a handler for POST /api/location.
// 201 {id, name}; 400 when name is missing; 409 when it already exists.
func CreateLocation(locations *service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		loc, err := locations.Create(c.UserContext(), req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}

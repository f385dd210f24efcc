package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/gym-finder/internal/metrics"
	"github.com/trentd187/gym-finder/internal/service"
)

// CreateGymRequest is the JSON body we expect on POST /api/gym.
// Older clients send the gym's name as "nama"; either key works, "name" wins if both are set.
type CreateGymRequest struct {
	Name      string   `json:"name"`
	Nama      string   `json:"nama"`
	Location  string   `json:"location"`  // Required: free-text location, e.g. "Malang"
	Latitude  *float64 `json:"latitude"`  // Optional; without both coordinates the gym gets no map link
	Longitude *float64 `json:"longitude"` // Optional
	Address   *string  `json:"address"`   // Optional
	PhotoURL  *string  `json:"photoUrl"`  // Optional
	Token     string   `json:"token,omitempty"`
}

func (r *CreateGymRequest) input() service.CreateGymInput {
	name := r.Name
	if name == "" {
		name = r.Nama
	}
	return service.CreateGymInput{
		Name:      name,
		Location:  r.Location,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Address:   r.Address,
		PhotoURL:  r.PhotoURL,
	}
}

// ListGyms returns a handler for GET /api/gym.
// Only gyms with both coordinates are listed, each with its gmaps_url.
func ListGyms(gyms *service.GymService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := gyms.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// SearchGyms returns a handler for GET /api/gym/search/:location.
// An unknown location is an empty array, never a 404.
func SearchGyms(gyms *service.GymService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := gyms.SearchByLocation(c.UserContext(), c.Params("location"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// GetGym returns a handler for GET /api/gym/:id.
// 400 for a non-numeric id; 404 when the gym is missing or lacks coordinates.
func GetGym(gyms *service.GymService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return badRequest(c, "Invalid ID format.")
		}

		gym, err := gyms.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(gym)
	}
}

// CreateGym returns a handler for POST /api/gym.
// Returns the created gym with HTTP 201, including gmaps_url when both coordinates were given.
func CreateGym(gyms *service.GymService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateGymRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		gym, err := gyms.Create(c.UserContext(), req.input())
		if err != nil {
			return respondError(c, err)
		}
		metrics.GymsCreatedTotal.Inc()
		return c.Status(fiber.StatusCreated).JSON(gym)
	}
}

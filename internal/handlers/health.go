// Package handlers contains the HTTP route handler functions for the Gym Finder API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the matching service, and writing a response.
//
// Each exported function follows the "handler factory" pattern: it takes the service it
// needs and returns a fiber.Handler. This lets us inject dependencies without globals.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive and reachable.
// No database queries, no authentication; load balancers and the hosting platform's
// health probe call it.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

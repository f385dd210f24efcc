package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/gym-finder/internal/metrics"
	"github.com/trentd187/gym-finder/internal/service"
)

// CredentialsRequest is the JSON body of both POST /api/auth/register and /api/auth/login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register returns a handler for POST /api/auth/register.
// 201 {id, username} on success, 400 on missing fields, 409 when the username is taken.
func Register(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CredentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		res, err := auth.Register(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login returns a handler for POST /api/auth/login.
// 200 {message, token} on success, 400 on missing fields, 401 on bad credentials.
func Login(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CredentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		res, err := auth.Login(c.UserContext(), req.Username, req.Password)
		switch {
		case err == nil:
			metrics.LoginsTotal.WithLabelValues("success").Inc()
		case errors.Is(err, service.ErrAuth):
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return respondError(c, err)
		case errors.Is(err, service.ErrValidation):
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return respondError(c, err)
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// Package middleware contains HTTP middleware functions for the Gym Finder API.
// Middleware sits between the HTTP server and route handlers — it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication, logging, and rate limiting.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/gym-finder/internal/models"
	"github.com/trentd187/gym-finder/internal/service"
)

// TokenAuthenticator resolves a login token to the user it was issued to.
// *service.AuthService satisfies it.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireToken returns a middleware that only lets a request through when it carries the
// token from the caller's most recent login. The token is read from:
//  1. the "Authorization: Bearer <token>" header, or
//  2. a "token" field in the JSON body (what the older web client sends)
//
// A missing, forged or superseded token is answered with 403 Forbidden.
// On success the user's ID and username are stored in c.Locals for the handler.
func RequireToken(auth TokenAuthenticator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = bodyToken(c)
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Invalid or missing token",
				})
			}
			log.Error("token lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)
		return c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// bodyToken peeks at the JSON body without consuming it; the handler parses it again.
func bodyToken(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.App().Config().JSONDecoder(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

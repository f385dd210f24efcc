// Package server builds the Fiber application: global middleware, the route table, and
// the services each route group needs.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	// cors lets the web and mobile clients call the API from other origins.
	"github.com/gofiber/fiber/v2/middleware/cors"
	// recover turns a panicking handler into a 500 instead of killing the process.
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/config"
	"github.com/trentd187/gym-finder/internal/handlers"
	"github.com/trentd187/gym-finder/internal/metrics"
	"github.com/trentd187/gym-finder/internal/middleware"
	"github.com/trentd187/gym-finder/internal/service"
)

// Server owns the Fiber app and the background pieces that must stop with it.
type Server struct {
	App     *fiber.App
	limiter *middleware.RateLimiter
}

// New wires services, middleware and routes around an already-migrated database handle.
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Server {
	authSvc := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	locationSvc := service.NewLocationService(db)
	gymSvc := service.NewGymService(db)

	app := fiber.New(fiber.Config{
		AppName: "Gym Finder API",
		// Location names can contain spaces: /api/gym/search/Kota%20Batu
		UnescapePath: true,
		ErrorHandler: errorHandler,
	})

	// --- Global middleware ---
	// These run on every request before any route handler.
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// --- Public routes ---
	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", metrics.Handler())

	s := &Server{App: app}

	api := app.Group("/api")

	// Auth routes
	// POST /api/auth/register — create an account
	// POST /api/auth/login    — exchange credentials for a token
	auth := api.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, 2*time.Minute)
		go s.limiter.Run(30 * time.Second)
		auth.Use(middleware.RateLimit(s.limiter))
	}
	auth.Post("/register", handlers.Register(authSvc))
	auth.Post("/login", handlers.Login(authSvc))

	// guarded puts RequireToken in front of a write handler when gating is enabled.
	guarded := func(h fiber.Handler) []fiber.Handler {
		if !cfg.RequireWriteToken {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{middleware.RequireToken(authSvc, log), h}
	}

	// Location routes
	api.Get("/location", handlers.ListLocations(locationSvc))
	api.Get("/location/:id", handlers.GetLocation(locationSvc))
	api.Post("/location", guarded(handlers.CreateLocation(locationSvc))...)

	// Gym routes
	// GET  /api/gym                   — gyms with coordinates, with map links
	// GET  /api/gym/search/:location  — exact match on the location string
	// GET  /api/gym/:id               — one gym; id must be numeric
	// POST /api/gym                   — create a gym
	api.Get("/gym", handlers.ListGyms(gymSvc))
	api.Get("/gym/search/:location", handlers.SearchGyms(gymSvc))
	api.Get("/gym/:id", handlers.GetGym(gymSvc))
	api.Post("/gym", guarded(handlers.CreateGym(gymSvc))...)

	return s
}

// Listen blocks serving HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections, waits up to timeout for in-flight requests,
// and stops the rate limiter's eviction loop.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.App.ShutdownWithTimeout(timeout)
}

// errorHandler renders errors that reach Fiber (unknown routes, wrong methods, panics
// caught by recover) in the same {"error": ...} shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

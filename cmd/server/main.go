// cmd/server/main.go
// This is the entry point for the Gym Finder API server.
// The "cmd/server" directory follows the usual Go layout: cmd/ holds executables,
// internal/ holds the packages they are built from.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trentd187/gym-finder/internal/config"
	"github.com/trentd187/gym-finder/internal/database"
	"github.com/trentd187/gym-finder/internal/logger"
	"github.com/trentd187/gym-finder/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gym-finder:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (and optionally a .env file).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	// Handlers log storage failures through zap.L().
	zap.ReplaceGlobals(log)

	// Open the database: SQLite under DATA_DIR by default, PostgreSQL if DATABASE_URL is set.
	// The handle is created once here and shared by every handler through the services.
	db, err := database.Connect(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("closing database", zap.Error(err))
		}
	}()

	// Create the tables if they don't exist yet. This runs before the server accepts
	// any request, and before seeding, which needs the gyms table.
	if err := database.RunMigrations(db, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if cfg.SeedData {
		if _, err := database.Seed(context.Background(), db, log); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	srv := server.New(cfg, db, log)

	// Listen in a goroutine so main can wait for SIGINT/SIGTERM and shut down cleanly:
	// in-flight requests finish, then the deferred database close runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- srv.Listen(":" + cfg.Port)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return srv.Shutdown(10 * time.Second)
}

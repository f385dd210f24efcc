// Package config handles loading and validating runtime configuration for the Gym Finder API.
// Configuration values (like the listening port and where the database lives) are read from
// environment variables rather than being hardcoded, so the same binary runs locally, on a
// PaaS with a persistent disk, or against a managed PostgreSQL database.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Handy in development; in production real env vars are used instead.
	"github.com/joho/godotenv"
	// viper gives us typed lookups (bool, int, duration) with defaults on top of the environment.
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "5000")
	Env  string // "development" or "production"; reported in the startup log

	// DatabaseURL is a PostgreSQL connection string. When it is empty the API falls back
	// to a SQLite file at DataDir/DBFile.
	DatabaseURL string
	DataDir     string // Directory holding the SQLite file; created on demand. Empty = working directory
	DBFile      string // SQLite file name inside DataDir
	SeedData    bool   // Insert the fixture locations and gyms when the gyms table is empty

	LogLevel  string // zap level: debug, info, warn, error
	LogFormat string // "json" or "console"

	JWTSecret string        // HMAC secret used to sign login tokens
	TokenTTL  time.Duration // 0 means login tokens never expire

	// RequireWriteToken gates POST /api/location and POST /api/gym behind a valid login token.
	RequireWriteToken bool

	AuthRateLimit float64 // Allowed requests per second per client IP on /api/auth; 0 disables the limiter
	AuthRateBurst int

	CORSOrigins string // Comma-separated list passed to the CORS middleware
}

// IsPostgres reports whether the API should talk to PostgreSQL instead of SQLite.
func (c *Config) IsPostgres() bool {
	return c.DatabaseURL != ""
}

// Load reads configuration from environment variables and returns a populated Config.
// It first tries to load a .env file for local development. The error from godotenv.Load
// is discarded: a missing .env file is normal in production.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults mirror what the service has always done: port 5000 and a persistent
	// SQLite file under /var/data.
	v.SetDefault("port", "5000")
	v.SetDefault("app_env", "development")
	v.SetDefault("database_url", "")
	v.SetDefault("data_dir", "/var/data")
	v.SetDefault("db_file", "gym_finder.db")
	v.SetDefault("seed_data", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("token_ttl", "0s")
	v.SetDefault("require_write_token", false)
	v.SetDefault("auth_rate_limit", 5.0)
	v.SetDefault("auth_rate_burst", 10)
	v.SetDefault("cors_origins", "*")

	// AutomaticEnv maps each key to its upper-cased environment variable: "port" -> PORT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:              v.GetString("port"),
		Env:               v.GetString("app_env"),
		DatabaseURL:       v.GetString("database_url"),
		DataDir:           v.GetString("data_dir"),
		DBFile:            v.GetString("db_file"),
		SeedData:          v.GetBool("seed_data"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		RequireWriteToken: v.GetBool("require_write_token"),
		AuthRateLimit:     v.GetFloat64("auth_rate_limit"),
		AuthRateBurst:     v.GetInt("auth_rate_burst"),
		CORSOrigins:       v.GetString("cors_origins"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("config: PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if !c.IsPostgres() && c.DBFile == "" {
		return fmt.Errorf("config: DB_FILE must not be empty when DATABASE_URL is unset")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("config: TOKEN_TTL must not be negative")
	}
	if c.AuthRateLimit < 0 {
		return fmt.Errorf("config: AUTH_RATE_LIMIT must not be negative")
	}
	return nil
}

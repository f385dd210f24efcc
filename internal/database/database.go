// Package database provides helpers for connecting to the store, running migrations
// and seeding the demo data.
//
// Two backends are supported:
//  1. SQLite (default): a single file, by default under /var/data so it survives restarts
//     on hosts that mount a persistent disk there
//  2. PostgreSQL: used whenever DATABASE_URL is set
//
// Both are driven through GORM, so the services above this package never care which one
// is in use.
package database

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	// The migrate package reads and applies versioned SQL migration files.
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	// iofs lets migrate read the .sql files we embed into the binary below.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/config"
)

// Dialector names as reported by gorm's Dialector.Name().
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// migrationsFS holds one directory of migrations per dialect. Embedding them means the
// binary doesn't depend on the working directory to find its schema.
//
//go:embed migrations
var migrationsFS embed.FS

// Connect opens the database described by cfg and returns the GORM handle.
// For SQLite, the data directory is created first if it doesn't exist yet.
//
// TranslateError makes both drivers report unique-constraint violations as
// gorm.ErrDuplicatedKey, which the services turn into 409 Conflict. Query logging goes
// through log.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	}

	if cfg.IsPostgres() {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("connected to postgres database")
		return db, nil
	}

	path, err := SQLitePath(cfg.DataDir, cfg.DBFile)
	if err != nil {
		return nil, err
	}

	// _busy_timeout makes a writer wait for the file lock instead of failing with
	// SQLITE_BUSY when two requests write at once.
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	log.Info("connected to sqlite database", zap.String("path", path))
	return db, nil
}

// SQLitePath returns the database file path, creating dir when it is set and missing.
// An empty dir means "relative to the working directory".
func SQLitePath(dir, file string) (string, error) {
	if dir == "" {
		return file, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return filepath.Join(dir, file), nil
}

// RunMigrations applies any pending "up" migrations for the connected dialect.
// The migrate library records applied versions in schema_migrations, and the SQL itself
// uses CREATE TABLE IF NOT EXISTS, so running this on every start is safe even against
// a file created before migrations were tracked.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	dialect := db.Dialector.Name()
	source, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}

	var m *migrate.Migrate
	switch dialect {
	case DialectPostgres:
		driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
		if err != nil {
			return fmt.Errorf("create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "postgres", driver)
		if err != nil {
			return fmt.Errorf("init migrate: %w", err)
		}
	case DialectSQLite:
		driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("init migrate: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	// m.Close() is not called here: the database driver would close the shared
	// *sql.DB that the rest of the process keeps using.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		log.Warn("database migration is dirty", zap.Uint("version", version))
	} else {
		log.Info("database migrations applied", zap.Uint("version", version))
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

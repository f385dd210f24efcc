package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/config"
	"github.com/trentd187/gym-finder/internal/database"
)

// newTestDB opens a migrated SQLite file in a per-test temp directory.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir(), DBFile: "test.db"}
	db, err := database.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func ptr[T any](v T) *T { return &v }

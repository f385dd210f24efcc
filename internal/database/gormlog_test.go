package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/config"
	"github.com/trentd187/gym-finder/internal/models"
)

func openObservedDB(t *testing.T) (*gorm.DB, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	db, err := Connect(&config.Config{DataDir: t.TempDir(), DBFile: "gym_finder.db"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, RunMigrations(db, log))
	return db, logs
}

func TestGormLogger_SkipsDuplicateKey(t *testing.T) {
	db, logs := openObservedDB(t)

	require.NoError(t, db.Create(&models.User{Username: "dup", Password: "$2a$10$hash"}).Error)
	err := db.Create(&models.User{Username: "dup", Password: "$2a$10$hash"}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	var missing models.Gym
	require.ErrorIs(t, db.First(&missing, 999).Error, gorm.ErrRecordNotFound)

	assert.Zero(t, logs.FilterMessage("query failed").Len())
	for _, entry := range logs.All() {
		sql, _ := entry.ContextMap()["sql"].(string)
		assert.NotContains(t, sql, "$2a$10$hash")
	}
}

func TestGormLogger_FailedQueryOmitsValues(t *testing.T) {
	db, logs := openObservedDB(t)

	var n int64
	err := db.Raw("SELECT COUNT(*) FROM no_such_table WHERE secret = ?", "hunter2").Scan(&n).Error
	require.Error(t, err)

	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "gorm", failed[0].LoggerName)
	sql, ok := failed[0].ContextMap()["sql"].(string)
	require.True(t, ok)
	assert.Contains(t, sql, "secret = ?")
	assert.NotContains(t, sql, "hunter2")
}

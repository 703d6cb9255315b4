package bootstrap

import (
	"path/filepath"
	"testing"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:        "test",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "blog.db"),
		JWTTTL:     time.Hour,
	}
}

func TestInitRuntime_SeedsEmptyDatabaseOnce(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.SeedPreset = "small"

	db, rdb, err := InitRuntime(cfg, Options{SkipRedis: true})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Positive(t, users)
	require.NoError(t, database.Close(db))

	db, _, err = InitRuntime(cfg, Options{SkipRedis: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var again int64
	require.NoError(t, db.Model(&models.User{}).Count(&again).Error)
	assert.Equal(t, users, again)
}

func TestInitRuntime_NoSeedByDefault(t *testing.T) {
	db, _, err := InitRuntime(sqliteConfig(t), Options{SkipRedis: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestInitRuntime_UnknownPreset(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.SeedPreset = "nope"

	_, _, err := InitRuntime(cfg, Options{SkipRedis: true})
	assert.ErrorContains(t, err, `unknown preset "nope"`)
}

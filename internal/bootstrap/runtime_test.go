package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"puppytalk/internal/config"
	"puppytalk/internal/database"
	"puppytalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:          "test",
		DBDriver:     database.DriverSQLite,
		DBSQLitePath: filepath.Join(t.TempDir(), "runtime.db"),
		DBSchemaMode: database.SchemaModeHybrid,
		BcryptCost:   bcrypt.MinCost,
	}
}

func TestInitRuntimeSeedsOnce(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	db, rdb, err := InitRuntime(ctx, cfg, Options{ApplySchema: true, SeedPreset: "tiny"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	assert.Nil(t, rdb, "no REDIS_URL means no client")

	var first int64
	require.NoError(t, db.Model(&models.Post{}).Count(&first).Error)
	assert.Positive(t, first)
	require.NoError(t, database.Close(db))

	db, _, err = InitRuntime(ctx, cfg, Options{ApplySchema: true, SeedPreset: "tiny"})
	require.NoError(t, err)
	var second int64
	require.NoError(t, db.Model(&models.Post{}).Count(&second).Error)
	assert.Equal(t, first, second, "a populated database is left alone")
}

func TestInitRuntimeErrors(t *testing.T) {
	ctx := context.Background()

	cfg := sqliteConfig(t)
	cfg.DBDriver = "oracle"
	_, _, err := InitRuntime(ctx, cfg, Options{})
	assert.ErrorContains(t, err, "database connection failed")

	cfg = sqliteConfig(t)
	cfg.DBSchemaMode = database.SchemaModeSQL
	_, _, err = InitRuntime(ctx, cfg, Options{ApplySchema: true})
	assert.ErrorContains(t, err, "apply schema")

	cfg = sqliteConfig(t)
	cfg.Env = "production"
	_, _, err = InitRuntime(ctx, cfg, Options{ApplySchema: true, SeedPreset: "tiny"})
	assert.ErrorContains(t, err, "refusing to seed")

	cfg = sqliteConfig(t)
	_, _, err = InitRuntime(ctx, cfg, Options{ApplySchema: true, SeedPreset: "enormous"})
	assert.ErrorContains(t, err, "unknown preset")
}

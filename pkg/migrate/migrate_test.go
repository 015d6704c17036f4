package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/angelmondragon/fest-cart/pkg/config"
	"github.com/angelmondragon/fest-cart/pkg/db"
	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.Wrap(conn, config.StorageDriverSQLite)
}

func TestEmbeddedMigrationsApplyAndRollBack(t *testing.T) {
	client := openSQLite(t)
	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, RunEmbedded(ctx, sqlDB, client.Dialect(), "up"))
	require.True(t, client.DB().Migrator().HasTable("cart_snapshots"))

	version, err := Version(ctx, sqlDB, client.Dialect())
	require.NoError(t, err)
	require.Equal(t, int64(20250301090000), version)

	require.NoError(t, client.DB().Exec(
		"INSERT INTO cart_snapshots (cart_key, payload) VALUES (?, ?)", "sess", "[]").Error)

	require.NoError(t, RunEmbedded(ctx, sqlDB, client.Dialect(), "down"))
	require.False(t, client.DB().Migrator().HasTable("cart_snapshots"))
}

func TestMigrateToVersion(t *testing.T) {
	client := openSQLite(t)
	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, MigrateToVersion(ctx, sqlDB, client.Dialect(), EmbeddedDir, "20250301090000"))
	require.True(t, client.DB().Migrator().HasTable("cart_snapshots"))
	require.NoError(t, MigrateToVersion(ctx, sqlDB, client.Dialect(), EmbeddedDir, "20250301090000"))

	require.Error(t, MigrateToVersion(ctx, sqlDB, client.Dialect(), EmbeddedDir, "latest"))
	require.Error(t, MigrateToVersion(ctx, sqlDB, client.Dialect(), EmbeddedDir, ""))
}

func TestMaybeRunDevRespectsFlags(t *testing.T) {
	client := openSQLite(t)
	ctx := context.Background()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "dev"},
		Storage: config.StorageConfig{Driver: config.StorageDriverSQLite},
	}

	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client))
	require.False(t, client.DB().Migrator().HasTable("cart_snapshots"))

	cfg.FeatureFlags.AutoMigrate = true
	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client))
	require.True(t, client.DB().Migrator().HasTable("cart_snapshots"))
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	require.NoError(t, ValidateFS(Embedded(), EmbeddedDir))
	require.NoError(t, ValidateDir("migrations"))
}

func TestCartSnapshotMigrationShape(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_snapshots.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS cart_snapshots",
		"cart_key   VARCHAR(128) PRIMARY KEY",
		"payload    TEXT NOT NULL DEFAULT '[]'",
		"DROP TABLE IF EXISTS cart_snapshots",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateFSRejectsBadMigrations(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {"m/create.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}},
		"no down":  {"m/20250101000000_x.sql": {Data: []byte("-- +goose Up\n")}},
		"unbalanced": {"m/20250101000000_x.sql": {Data: []byte(
			"-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")}},
		"duplicate version": {
			"m/20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"m/20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, ValidateFS(fsys, "m"))
		})
	}
}

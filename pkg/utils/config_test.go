package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty temp dir so no stray .env or config file is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("PORT", "")
	t.Setenv("CATALOG_PORT", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "products.json", cfg.CatalogPath)
	assert.Equal(t, "products.json.bak", cfg.BackupPath)
	assert.Equal(t, filepath.Join("public", "images"), cfg.ImagesDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.CORSOrigins)
	assert.True(t, cfg.WatchImages)
	assert.Equal(t, "history.db", filepath.Base(cfg.HistoryDB))
}

func TestLoadConfigEnv(t *testing.T) {
	chdir(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CATALOG_PORT", "")
	t.Setenv("CATALOG_CATALOG_PATH", "data/items.json")
	t.Setenv("CATALOG_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CATALOG_WATCH_IMAGES", "false")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/items.json", cfg.CatalogPath)
	assert.Equal(t, "data/items.json.bak", cfg.BackupPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.WatchImages)
}

func TestPrefixedPortWinsOverPlainPort(t *testing.T) {
	chdir(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CATALOG_PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdir(t)
	t.Setenv("PORT", "")
	t.Setenv("CATALOG_PORT", "")
	content := "port: 7000\nimages_dir: assets\ncors_origins:\n  - https://shop.example\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".productcatalog.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "assets", cfg.ImagesDir)
	assert.Equal(t, []string{"https://shop.example"}, cfg.CORSOrigins)
	assert.NotEmpty(t, cfg.ConfigFile)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	dir := chdir(t)
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestInvalidPort(t *testing.T) {
	chdir(t)
	t.Setenv("CATALOG_PORT", "http")

	_, err := LoadConfig("")
	require.Error(t, err)
}

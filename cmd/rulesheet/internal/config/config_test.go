package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "rulesheet.yaml", `
server:
  port: 9000
  watch: true
styles:
  definitions: [styles/avatar.yaml]
  rtl: true
  maxEntries: 500
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, []string{"styles/avatar.yaml"}, cfg.Styles.Definitions)
	assert.True(t, cfg.Styles.RTL)
	assert.Equal(t, 500, cfg.Styles.MaxEntries)
	assert.Equal(t, "default", cfg.Styles.DefaultSheet)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "dist/styles.css", cfg.Build.Output)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "rulesheet.toml", `
[log]
level = "debug"

[styles]
defaultSheet = "app"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "app", cfg.Styles.DefaultSheet)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	path := write(t, dir, "bad.yaml", `
log:
  level: loud
server:
  port: 70000
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Log.Level")
	assert.Contains(t, err.Error(), "Config.Server.Port")

	_, err = LoadFile(write(t, dir, "bad.json", `{}`))
	assert.Error(t, err)

	_, err = LoadFile(write(t, dir, "broken.yaml", "server: [\n"))
	assert.Error(t, err)
}

func TestLoad_ArtifactCache(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFile(write(t, dir, "defaults.yaml", "build:\n  output: out.css\n"))
	require.NoError(t, err)
	assert.Equal(t, "lru", cfg.Build.CacheStrategy)
	age, err := cfg.Build.MaxAge()
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, age)
	assert.Equal(t, int64(64<<20), cfg.Build.CacheMaxSize)

	cfg, err = LoadFile(write(t, dir, "set.toml", `
[build]
cacheStrategy = "fifo"
cacheMaxAge = "30m"
cacheMaxSize = 1024
`))
	require.NoError(t, err)
	assert.Equal(t, "fifo", cfg.Build.CacheStrategy)
	age, err = cfg.Build.MaxAge()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, age)
	assert.Equal(t, int64(1024), cfg.Build.CacheMaxSize)

	_, err = LoadFile(write(t, dir, "strategy.yaml", "build:\n  cacheStrategy: random\n"))
	assert.ErrorContains(t, err, "Config.Build.CacheStrategy")

	_, err = LoadFile(write(t, dir, "age.yaml", "build:\n  cacheMaxAge: a week\n"))
	assert.ErrorContains(t, err, "Config.Build.CacheMaxAge")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulesheet.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = 7070

	require.NoError(t, Save(cfg, path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, loaded.Server.Port)
}

package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validKey() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Autosave.DebounceDuration())
	assert.Equal(t, 30*time.Second, cfg.Autosave.IntervalDuration())
	assert.Equal(t, 50, cfg.History.Depth)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultPath)

	original := DefaultConfig()
	original.Store.Driver = DriverSQLite
	original.Store.DSN = "file:test.db"
	original.Autosave.Debounce = "500ms"
	original.Grid.Size = 8
	original.Server.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	original.Versions.Schedule = "@hourly"
	original.Redact.Patterns = []string{"(?i)email"}

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
	assert.Equal(t, 500*time.Millisecond, loaded.Autosave.DebounceDuration())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: memory\nhistory:\n  depth: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 10, cfg.History.Depth)
	assert.Equal(t, "2s", cfg.Autosave.Debounce)
	assert.True(t, cfg.Grid.SnapToGrid)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAGECRAFT_LOG_LEVEL", "debug")
	t.Setenv("PAGECRAFT_STORE__DRIVER", "redis")
	t.Setenv("PAGECRAFT_STORE__DSN", "redis://localhost:6379/0")
	t.Setenv("PAGECRAFT_SERVER__PORT", "9090")
	t.Setenv("PAGECRAFT_AUTOSAVE__ENABLED", "false")
	t.Setenv("PAGECRAFT_SERVER__ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.DSN)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Autosave.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "reading config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "cassandra" }, "invalid store.driver"},
		{"missing driver", func(c *Config) { c.Store.Driver = "" }, "store.driver is required"},
		{"redis without dsn", func(c *Config) { c.Store.Driver = DriverRedis }, "store.dsn is required"},
		{"file without dir", func(c *Config) { c.Store.Dir = "" }, "store.dir is required"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad duration", func(c *Config) { c.Autosave.Debounce = "soon" }, "autosave.debounce"},
		{"negative duration", func(c *Config) { c.Server.RequestTimeout = "-1s" }, "non-negative"},
		{"depth", func(c *Config) { c.History.Depth = 0 }, "history.depth"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"short key", func(c *Config) { c.Encryption.Key = base64.StdEncoding.EncodeToString([]byte("short")) }, "encryption.key"},
		{"fallback without key", func(c *Config) { c.Encryption.FallbackKeys = []string{validKey()} }, "requires encryption.key"},
		{"cron", func(c *Config) { c.Versions.Schedule = "every tuesday" }, "versions.schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("all problems reported", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.History.Depth = 0
		cfg.Grid.Size = -1
		cfg.Server.Port = -1
		assert.Len(t, Problems(cfg.Validate()), 3)
	})

	t.Run("valid encryption", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Encryption.Key = validKey()
		assert.NoError(t, cfg.Validate())
	})
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := StoreConfig{Dir: "data"}.SQLiteDSN()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "pagecraft.db"), dsn)

	dsn, err = StoreConfig{DSN: ":memory:"}.SQLiteDSN()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", dsn)

	_, err = StoreConfig{}.SQLiteDSN()
	assert.ErrorIs(t, err, ErrNoDSN)
}

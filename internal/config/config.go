package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
)

// ErrNoDSN is returned by SQLiteDSN when no location can be derived.
var ErrNoDSN = errors.New("no dsn configured")

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"server.allowed_origins":   true,
	"encryption.fallback_keys": true,
	"redact.patterns":          true,
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PAGECRAFT_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// envValue maps PAGECRAFT_SERVER__ALLOWED_ORIGINS=a,b to server.allowed_origins=[a b].
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		var items []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				items = append(items, v)
			}
		}
		return key, items
	}
	return key, value
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[string]bool{
	DriverMemory:   true,
	DriverFile:     true,
	DriverRedis:    true,
	DriverSQLite:   true,
	DriverPostgres: true,
	DriverMySQL:    true,
	DriverMongo:    true,
}

// Validate checks that the configuration contains valid values. Every
// problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		fail("log_level: %v", err)
	}

	switch {
	case c.Store.Driver == "":
		fail("store.driver is required")
	case !validDrivers[c.Store.Driver]:
		fail("invalid store.driver %q: must be one of memory, file, redis, sqlite, postgres, mysql, mongo", c.Store.Driver)
	case c.Store.Driver == DriverFile && c.Store.Dir == "":
		fail("store.dir is required for the file driver")
	case needsDSN(c.Store.Driver) && c.Store.DSN == "":
		fail("store.dsn is required for the %s driver", c.Store.Driver)
	}

	checkDuration := func(name, v string) {
		if v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err != nil {
			fail("%s: %v", name, err)
		} else if d < 0 {
			fail("%s must be non-negative", name)
		}
	}
	checkDuration("store.ttl", c.Store.TTL)
	checkDuration("autosave.debounce", c.Autosave.Debounce)
	checkDuration("autosave.interval", c.Autosave.Interval)
	checkDuration("history.window", c.History.Window)
	checkDuration("server.request_timeout", c.Server.RequestTimeout)
	checkDuration("server.lock_ttl", c.Server.LockTTL)

	if c.History.Depth < 1 {
		fail("history.depth must be at least 1")
	}
	if c.Grid.Size < 0 {
		fail("grid.size must be non-negative")
	}
	if c.Grid.SnapThreshold < 0 {
		fail("grid.snap_threshold must be non-negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		fail("server.port %d out of range", c.Server.Port)
	}

	if c.Encryption.Key != "" {
		if _, err := middleware.DecodeKey(c.Encryption.Key); err != nil {
			fail("encryption.key: %v", err)
		}
	}
	for i, k := range c.Encryption.FallbackKeys {
		if _, err := middleware.DecodeKey(k); err != nil {
			fail("encryption.fallback_keys[%d]: %v", i, err)
		}
	}
	if len(c.Encryption.FallbackKeys) > 0 && c.Encryption.Key == "" {
		fail("encryption.fallback_keys requires encryption.key")
	}

	if c.Versions.Schedule != "" {
		if _, err := cron.ParseStandard(c.Versions.Schedule); err != nil {
			fail("versions.schedule: %v", err)
		}
	}
	return errs
}

// Problems returns the individual errors of a Validate result.
func Problems(err error) []error {
	return multierr.Errors(err)
}

func needsDSN(driver string) bool {
	switch driver {
	case DriverRedis, DriverPostgres, DriverMySQL, DriverMongo:
		return true
	}
	return false
}

// SQLiteDSN returns store.dsn, or a database file inside store.dir.
func (s StoreConfig) SQLiteDSN() (string, error) {
	if s.DSN != "" {
		return s.DSN, nil
	}
	if s.Dir == "" {
		return "", ErrNoDSN
	}
	return filepath.Join(s.Dir, "pagecraft.db"), nil
}

// TTLDuration returns store.ttl, zero when unset.
func (s StoreConfig) TTLDuration() time.Duration { return parse(s.TTL) }

// DebounceDuration returns autosave.debounce.
func (a AutosaveConfig) DebounceDuration() time.Duration { return parse(a.Debounce) }

// IntervalDuration returns autosave.interval.
func (a AutosaveConfig) IntervalDuration() time.Duration { return parse(a.Interval) }

// WindowDuration returns history.window.
func (h HistoryConfig) WindowDuration() time.Duration { return parse(h.Window) }

// Timeout returns server.request_timeout.
func (s ServerConfig) Timeout() time.Duration { return parse(s.RequestTimeout) }

// LockTTLDuration returns server.lock_ttl.
func (s ServerConfig) LockTTLDuration() time.Duration { return parse(s.LockTTL) }

// Addr returns the listen address for server.port.
func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

// parse returns zero for empty or malformed values; Validate reports the latter.
func parse(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}

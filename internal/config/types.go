package config

// Store drivers accepted by store.driver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// Config is the top-level pagecraft configuration, corresponding to pagecraft.yaml.
// Durations are Go duration strings ("2s", "1m30s").
type Config struct {
	LogLevel   string           `yaml:"log_level" koanf:"log_level"`
	Store      StoreConfig      `yaml:"store" koanf:"store"`
	Autosave   AutosaveConfig   `yaml:"autosave" koanf:"autosave"`
	History    HistoryConfig    `yaml:"history" koanf:"history"`
	Grid       GridConfig       `yaml:"grid" koanf:"grid"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Catalog    CatalogConfig    `yaml:"catalog" koanf:"catalog"`
	Assets     AssetsConfig     `yaml:"assets" koanf:"assets"`
	Encryption EncryptionConfig `yaml:"encryption" koanf:"encryption"`
	Redact     RedactConfig     `yaml:"redact" koanf:"redact"`
	Versions   VersionsConfig   `yaml:"versions" koanf:"versions"`
}

// StoreConfig selects the project and version backend.
type StoreConfig struct {
	Driver string `yaml:"driver" koanf:"driver"`
	// DSN is the connection string for redis, sql and mongo drivers.
	DSN string `yaml:"dsn,omitempty" koanf:"dsn"`
	// Dir is the data directory of the file driver and the default sqlite location.
	Dir      string `yaml:"dir,omitempty" koanf:"dir"`
	Prefix   string `yaml:"prefix,omitempty" koanf:"prefix"`
	TTL      string `yaml:"ttl,omitempty" koanf:"ttl"`
	Database string `yaml:"database,omitempty" koanf:"database"`
}

// AutosaveConfig tunes the autosave coordinator of every session.
type AutosaveConfig struct {
	Enabled  bool   `yaml:"enabled" koanf:"enabled"`
	Debounce string `yaml:"debounce" koanf:"debounce"`
	Interval string `yaml:"interval" koanf:"interval"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	Depth  int    `yaml:"depth" koanf:"depth"`
	Window string `yaml:"window,omitempty" koanf:"window"`
}

// GridConfig is the initial canvas grid of new sessions.
type GridConfig struct {
	Enabled       bool    `yaml:"enabled" koanf:"enabled"`
	Size          float64 `yaml:"size" koanf:"size"`
	SnapToGrid    bool    `yaml:"snap_to_grid" koanf:"snap_to_grid"`
	SnapToObjects bool    `yaml:"snap_to_objects" koanf:"snap_to_objects"`
	SnapThreshold float64 `yaml:"snap_threshold" koanf:"snap_threshold"`
}

// ServerConfig configures `pagecraft serve`.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	RequestTimeout string   `yaml:"request_timeout" koanf:"request_timeout"`
	LockTTL        string   `yaml:"lock_ttl,omitempty" koanf:"lock_ttl"`
}

// CatalogConfig points at the block palette definitions.
type CatalogConfig struct {
	Path  string `yaml:"path,omitempty" koanf:"path"`
	Watch bool   `yaml:"watch" koanf:"watch"`
}

// AssetsConfig locates uploaded files.
type AssetsConfig struct {
	Dir string `yaml:"dir" koanf:"dir"`
}

// EncryptionConfig enables at-rest encryption of project payloads.
// Keys are base64 encoded 32-byte AES keys.
type EncryptionConfig struct {
	Key          string   `yaml:"key,omitempty" koanf:"key"`
	FallbackKeys []string `yaml:"fallback_keys,omitempty" koanf:"fallback_keys"`
}

// RedactConfig lists key patterns masked before projects are persisted.
type RedactConfig struct {
	Patterns []string `yaml:"patterns,omitempty" koanf:"patterns"`
}

// VersionsConfig schedules automatic snapshots.
type VersionsConfig struct {
	// Schedule is a five-field cron expression or a descriptor such as "@hourly".
	Schedule string `yaml:"schedule,omitempty" koanf:"schedule"`
}

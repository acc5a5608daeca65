package config

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "pagecraft.yaml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: PAGECRAFT_STORE__DRIVER sets store.driver.
const EnvPrefix = "PAGECRAFT_"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Driver: DriverFile,
			Dir:    ".pagecraft/data",
			Prefix: "pagecraft:",
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Debounce: "2s",
			Interval: "30s",
		},
		History: HistoryConfig{
			Depth:  50,
			Window: "1s",
		},
		Grid: GridConfig{
			Enabled:       true,
			Size:          20,
			SnapToGrid:    true,
			SnapToObjects: true,
			SnapThreshold: 5,
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RequestTimeout: "30s",
			LockTTL:        "30s",
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
		Assets: AssetsConfig{
			Dir: ".pagecraft/assets",
		},
	}
}

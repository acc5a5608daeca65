package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/aretw0/pagecraft/internal/config"
)

var wizardDrivers = []string{
	config.DriverFile,
	config.DriverSQLite,
	config.DriverPostgres,
	config.DriverMySQL,
	config.DriverRedis,
	config.DriverMongo,
	config.DriverMemory,
}

// RunWizard asks for the storage and server settings on the terminal and
// returns base with the answers applied.
func RunWizard(w io.Writer, base *config.Config) (*config.Config, error) {
	cfg := *base
	fmt.Fprintln(w, "Let's configure pagecraft.")
	fmt.Fprintln(w)

	driverPrompt := promptui.Select{
		Label: "Select a project store",
		Items: wizardDrivers,
	}
	_, driver, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	cfg.Store.Driver = driver

	switch driver {
	case config.DriverFile, config.DriverSQLite:
		dirPrompt := promptui.Prompt{Label: "Data directory", Default: cfg.Store.Dir}
		if cfg.Store.Dir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("data directory: %w", err)
		}
	case config.DriverMemory:
	default:
		dsnPrompt := promptui.Prompt{
			Label: "Connection string",
			Validate: func(s string) error {
				if s == "" {
					return config.ErrNoDSN
				}
				return nil
			},
		}
		if cfg.Store.DSN, err = dsnPrompt.Run(); err != nil {
			return nil, fmt.Errorf("connection string: %w", err)
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be between 1 and 65535")
			}
			return nil
		},
	}
	port, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(port)

	autosavePrompt := promptui.Prompt{Label: "Enable autosave", IsConfirm: true, Default: "y"}
	_, err = autosavePrompt.Run()
	cfg.Autosave.Enabled = err == nil

	return &cfg, cfg.Validate()
}

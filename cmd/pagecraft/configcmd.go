package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft/internal/cli"
	"github.com/aretw0/pagecraft/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and check configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		interactive, _ := cmd.Flags().GetBool("interactive")
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		if interactive {
			var err error
			if cfg, err = cli.RunWizard(cmd.OutOrStdout(), cfg); err != nil {
				return err
			}
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "wrote %s", path)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configuration with environment overrides and validate it",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			for _, p := range config.Problems(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %v\n", p)
			}
			return fmt.Errorf("invalid configuration")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s (store: %s)\n", path, cfg.Store.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configCheckCmd)

	configInitCmd.Flags().BoolP("interactive", "i", false, "Answer a few questions instead of writing defaults")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

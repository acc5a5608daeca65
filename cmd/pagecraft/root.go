package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/cli"
	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/pkg/observability"
)

var rootCmd = &cobra.Command{
	Use:   "pagecraft",
	Short: "Pagecraft is the editing engine of a visual page builder",
	Long: `Pagecraft keeps block trees, undo history, autosave and versions of
page-builder projects, and serves them over HTTP, WebSocket and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// setup loads the configuration and builds the logger from the persistent flags.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg, level, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withWorkspace opens the configured backend for a one-shot command and
// flushes and closes it when fn returns.
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, ws *pagecraft.Workspace) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	ws := cli.NewWorkspace(b, cfg, logger, observability.LogHooks(logger))
	defer func() {
		if err := ws.Close(context.Background()); err != nil {
			logger.Warn("closing workspace", "err", err)
		}
	}()
	return fn(ctx, ws)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft/internal/cli"
	"github.com/aretw0/pagecraft/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP server",
	Long: `Starts the editing engine in server mode: a JSON API over HTTP, Server-Sent
Events and WebSocket streams per project, and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		srv, err := cli.NewServer(ctx, cfg, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing server: %w", err)
		}
		if err := srv.Run(ctx); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Info("pagecraft server stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}

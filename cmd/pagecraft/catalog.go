package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/cli"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the block palette",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			items, err := ws.Catalog().Items(ctx)
			if err != nil {
				return err
			}
			cli.PrintCatalog(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

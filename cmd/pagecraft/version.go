package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pagecraft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pagecraft version %s\n", strings.TrimSpace(pagecraft.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

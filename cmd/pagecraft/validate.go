package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <glob>...",
	Short: "Check exported projects against the import rules",
	Long:  `Validates every file matched by the given patterns. Patterns support ** (for example exports/**/*.json).`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := cli.ValidateFiles(args)
		if err != nil {
			return err
		}
		if failed := cli.PrintValidation(cmd.OutOrStdout(), results); failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(results))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All projects are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/cli"
	"github.com/aretw0/pagecraft/pkg/versions"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage project version snapshots",
}

var versionsListCmd = &cobra.Command{
	Use:     "ls <project>",
	Aliases: []string{"list"},
	Short:   "List versions, newest first",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			list, err := ws.Versions().List(ctx, args[0])
			if err != nil {
				return err
			}
			cli.PrintVersions(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var versionsCreateCmd = &cobra.Command{
	Use:   "create <project>",
	Short: "Snapshot the current project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req versions.CreateRequest
		req.Version, _ = cmd.Flags().GetString("version")
		req.Tag, _ = cmd.Flags().GetString("tag")
		req.Description, _ = cmd.Flags().GetString("message")
		req.Author, _ = cmd.Flags().GetString("author")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			v, err := ws.CreateVersion(ctx, args[0], req)
			if err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "created %s (%s)", v.Version, v.ID)
			return nil
		})
	},
}

var versionsRollbackCmd = &cobra.Command{
	Use:   "rollback <project> <version-id>",
	Short: "Restore a version as the current project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			ok, err := cli.Confirm(fmt.Sprintf("Replace %s with version %s", args[0], args[1]), yes)
			if err != nil || !ok {
				return err
			}
			data, err := ws.Rollback(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "restored %q: %d pages, %d blocks", data.Name, len(data.Pages), data.BlockCount())
			return nil
		})
	},
}

var versionsPublishCmd = &cobra.Command{
	Use:   "publish <project> <version-id>",
	Short: "Mark a version as published",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			if err := ws.Versions().Publish(ctx, args[0], args[1]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "published %s", args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsListCmd, versionsCreateCmd, versionsRollbackCmd, versionsPublishCmd)

	versionsCreateCmd.Flags().String("version", "", "Explicit version (defaults to the next minor)")
	versionsCreateCmd.Flags().String("tag", "", "Free-form tag")
	versionsCreateCmd.Flags().StringP("message", "m", "", "Description")
	versionsCreateCmd.Flags().String("author", "cli", "Author recorded on the version")
	versionsRollbackCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

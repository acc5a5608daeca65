package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/cli"
	"github.com/aretw0/pagecraft/internal/presentation/graph"
	"github.com/aretw0/pagecraft/internal/presentation/tui"
	"github.com/aretw0/pagecraft/pkg/domain"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage stored projects",
}

var projectListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			list, err := ws.ListProjects(ctx)
			if err != nil {
				return err
			}
			cli.PrintProjects(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty project with a home page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			id, err := ws.CreateProject(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var projectInspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Show the pages and block trees of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			data, err := ws.Project(ctx, args[0])
			if err != nil {
				return err
			}
			render := tui.NewRenderer(plain || !tui.IsTerminal(os.Stdout))
			out, err := render(tui.Outline(data))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a project (versions are kept)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			data, err := ws.Project(ctx, args[0])
			if err != nil {
				return err
			}
			ok, err := cli.Confirm(fmt.Sprintf("Delete project %q", data.Name), yes)
			if err != nil || !ok {
				return err
			}
			if err := ws.DeleteProject(ctx, args[0]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "deleted %s", args[0])
			return nil
		})
	},
}

var projectExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a project as a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			raw, err := ws.Export(ctx, args[0])
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			return os.WriteFile(out, raw, 0644)
		})
	},
}

var projectImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON export as a new project, or over --id",
	Long:  `Reads an export envelope (or a bare blocks array) from a file, or from stdin when the file is "-".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("id")
		raw, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			id, err := ws.Import(ctx, target, raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var projectGraphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Export the block tree of a page as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, _ := cmd.Flags().GetString("page")
		return withWorkspace(cmd, func(ctx context.Context, ws *pagecraft.Workspace) error {
			data, err := ws.Project(ctx, args[0])
			if err != nil {
				return err
			}
			var page *domain.Page
			var ok bool
			if pageID == "" {
				page, ok = data.Home()
			} else {
				page, ok = data.Page(pageID)
			}
			if !ok {
				return fmt.Errorf("page %q: %w", pageID, domain.ErrNotFound)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(page.Name, page.Blocks, nil))
			return nil
		})
	},
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectInspectCmd, projectRemoveCmd,
		projectExportCmd, projectImportCmd, projectGraphCmd)

	projectInspectCmd.Flags().Bool("plain", false, "Print markdown without terminal styling")
	projectRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	projectExportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	projectImportCmd.Flags().String("id", "", "Replace an existing project instead of creating one")
	projectGraphCmd.Flags().String("page", "", "Page id (defaults to the home page)")
}

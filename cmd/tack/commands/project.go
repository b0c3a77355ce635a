package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/display"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/resolver"
	"github.com/dyluth/tack/pkg/board"
)

var projectListOutput string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Projects group columns. A column belongs to at most one project; the
board can be filtered to a single project with "tack view project".

Projects are never deleted, only renamed.`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return printer.Error("project name is empty", "Projects need a non-blank name.", nil)
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			var id board.ID
			e.Apply(func(b board.Board) board.Board {
				b, id = b.AddProject(name)
				return b
			})
			printer.Success("Created project '%s' (%s)\n", name, display.ShortID(id))
			return nil
		})
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename PROJECT NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[1])
		if name == "" {
			return printer.Error("project name is empty", "Projects need a non-blank name.", nil)
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			p, err := resolver.Project(e.Board(), args[0])
			if err != nil {
				return resolveError("project", args[0], err)
			}
			e.Apply(func(b board.Board) board.Board {
				return b.RenameProject(p.ID, name)
			})
			printer.Success("Renamed project '%s' to '%s'\n", p.Name, name)
			return nil
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(projectListOutput)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			if asJSON {
				return display.FormatJSON(printer.Out(), b.Projects)
			}
			display.FormatProjects(printer.Out(), b)
			return nil
		})
	},
}

// parseOutput validates an --output value and reports whether it is json.
func parseOutput(format string) (bool, error) {
	switch format {
	case "", "default":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", format),
			[]string{"Valid formats: default, json"},
		)
	}
}

func init() {
	projectListCmd.Flags().StringVarP(&projectListOutput, "output", "o", "default", "Output format: default or json")

	projectCmd.AddCommand(projectAddCmd, projectRenameCmd, projectListCmd)
	rootCmd.AddCommand(projectCmd)
}

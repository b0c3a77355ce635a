package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/display"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/resolver"
	"github.com/dyluth/tack/pkg/board"
)

var (
	columnAddProject string
	columnDeleteYes  bool
	columnShowOutput string
)

var columnCmd = &cobra.Command{
	Use:     "column",
	Aliases: []string{"col"},
	Short:   "Manage columns",
	Long: `Columns hold cards and appear on the board in their stored order.
Cards inside a column are always shown by colour priority, then due date,
with archived cards last.`,
}

var columnAddCmd = &cobra.Command{
	Use:   "add [TITLE]",
	Short: "Add a column at the end of the board",
	Long: `Add an empty column at the end of the board. Without a title the column
is called "New Column". Use --project to assign it straight away.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			var projectID *board.ID
			if columnAddProject != "" {
				p, err := resolver.Project(e.Board(), columnAddProject)
				if err != nil {
					return resolveError("project", columnAddProject, err)
				}
				projectID = &p.ID
			}

			var id board.ID
			b := e.Apply(func(b board.Board) board.Board {
				b, id = b.AddColumn(title)
				if projectID != nil {
					b = b.AssignColumnProject(id, projectID)
				}
				return b
			})
			col, _ := b.Column(id)
			printer.Success("Added column '%s' (%s) to %s\n", col.Title, display.ShortID(id), b.ProjectName(col.ProjectID))
			return nil
		})
	},
}

var columnRenameCmd = &cobra.Command{
	Use:   "rename COLUMN TITLE",
	Short: "Rename a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			col, err := resolver.Column(e.Board(), args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}
			e.Apply(func(b board.Board) board.Board {
				return b.RenameColumn(col.ID, args[1])
			})
			printer.Success("Renamed column '%s' to '%s'\n", col.Title, args[1])
			return nil
		})
	},
}

var columnDeleteCmd = &cobra.Command{
	Use:     "delete COLUMN",
	Aliases: []string{"rm"},
	Short:   "Delete a column and all of its cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			col, err := resolver.Column(e.Board(), args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}

			question := fmt.Sprintf("Delete column '%s' and its %d card(s)?", col.Title, len(col.Cards))
			ok := confirm(columnDeleteYes, question)
			if !ok {
				printer.Muted("Column kept\n")
				return nil
			}
			e.Apply(func(b board.Board) board.Board {
				return b.DeleteColumn(col.ID, ok)
			})
			printer.Success("Deleted column '%s'\n", col.Title)
			return nil
		})
	},
}

var columnAssignCmd = &cobra.Command{
	Use:   "assign COLUMN PROJECT|none",
	Short: "Assign a column to a project",
	Long:  `Assign a column to a project, or pass "none" to unassign it.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			col, err := resolver.Column(b, args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}

			var projectID *board.ID
			if !strings.EqualFold(args[1], "none") {
				p, err := resolver.Project(b, args[1])
				if err != nil {
					return resolveError("project", args[1], err)
				}
				projectID = &p.ID
			}

			b = e.Apply(func(b board.Board) board.Board {
				return b.AssignColumnProject(col.ID, projectID)
			})
			printer.Success("Column '%s' now belongs to %s\n", col.Title, b.ProjectName(projectID))
			return nil
		})
	},
}

var columnMoveCmd = &cobra.Command{
	Use:   "move COLUMN POSITION",
	Short: "Move a column to another position",
	Long:  `Move a column to POSITION, counted from 1 at the left of the board.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return printer.Error("invalid position", fmt.Sprintf("'%s' is not a number", args[1]), nil)
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			col, err := resolver.Column(b, args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}

			to := pos - 1
			if !b.ValidColumnIndex(to) {
				return printer.Error(
					"invalid position",
					fmt.Sprintf("Position %d is outside the board.", pos),
					[]string{fmt.Sprintf("Use a position between 1 and %d", len(b.Columns))},
				)
			}

			e.Apply(func(b board.Board) board.Board {
				from := b.ColumnIndex(col.ID)
				if from < 0 || !b.ValidColumnIndex(to) {
					return b
				}
				return b.ApplyDrag(board.DragResult{Source: from, Destination: &to})
			})
			printer.Success("Moved column '%s' to position %d\n", col.Title, pos)
			return nil
		})
	},
}

var columnShowCmd = &cobra.Command{
	Use:   "show COLUMN",
	Short: "Show the cards of one column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(columnShowOutput)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			col, err := resolver.Column(b, args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}
			if asJSON {
				col.Cards = b.CardsInView(col, e.Palette())
				return display.FormatJSON(printer.Out(), col)
			}
			display.FormatColumn(printer.Out(), b, col, display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

func init() {
	columnAddCmd.Flags().StringVarP(&columnAddProject, "project", "p", "", "Assign the new column to this project")
	columnDeleteCmd.Flags().BoolVarP(&columnDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
	columnShowCmd.Flags().StringVarP(&columnShowOutput, "output", "o", "default", "Output format: default or json")

	columnCmd.AddCommand(columnAddCmd, columnRenameCmd, columnDeleteCmd, columnAssignCmd, columnMoveCmd, columnShowCmd)
	rootCmd.AddCommand(columnCmd)
}

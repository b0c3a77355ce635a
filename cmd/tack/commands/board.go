package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/display"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/filter"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/resolver"
	"github.com/dyluth/tack/internal/timespec"
	"github.com/dyluth/tack/pkg/board"
)

var (
	boardOutput string

	topProject string
	topOutput  string

	findTitle     string
	findText      string
	findColor     string
	findDueAfter  string
	findDueBefore string
	findProject   string
	findArchived  bool
	findOutput    string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the board",
	Long: `Show every column under the current project filter, followed by the
top 10 cards when that view is enabled.

Use "tack view" to change what is shown. With --output=json the whole board
is written in the export format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(boardOutput)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if asJSON {
				return e.Adapter().Export(printer.Out())
			}
			display.FormatBoard(printer.Out(), e.Board(), display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the 10 most important cards",
	Long: `Rank every non-archived card on the board by colour priority, then due
date, and show the first 10.

The ranking follows the board's project filter unless --project is given;
--project=all ranks across every project.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(topOutput)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			projectID := b.SelectedProjectID
			if topProject != "" {
				if projectID, err = projectFilter(b, topProject); err != nil {
					return err
				}
			}

			ranked := board.TopRanked(b.Columns, projectID, e.Palette())
			if asJSON {
				return display.FormatJSON(printer.Out(), ranked)
			}
			display.FormatTop(printer.Out(), b, ranked, display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search cards",
	Long: `Search cards across the whole board. All filters are combined.

Filters:
  --title       Case-insensitive glob on the title ("*review*")
  --text        Case-insensitive text in title or notes
  --color       Palette colour name or #RRGGBB
  --due-after   Due after this time (date, RFC3339 or offset like "+1d")
  --due-before  Due before this time
  --project     Only columns of this project
  --archived    Include archived cards

Examples:
  # Red cards due this week
  tack find --color=red --due-before=+7d

  # Everything mentioning the release, as JSON
  tack find --text=release --output=json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(findOutput)
		if err != nil {
			return err
		}
		after, before, err := timespec.ParseRange(findDueAfter, findDueBefore, now())
		if err != nil {
			return printer.Error(
				"invalid due filter",
				err.Error(),
				[]string{"Use a date like '2025-03-09', RFC3339, or an offset like '+7d'"},
			)
		}

		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			criteria := &filter.Criteria{
				TitleGlob:       findTitle,
				Text:            findText,
				DueAfter:        after,
				DueBefore:       before,
				IncludeArchived: findArchived,
			}
			if findColor != "" {
				if criteria.Color, err = parseColor(findColor, e.Palette()); err != nil {
					return err
				}
			}
			if findProject != "" {
				if criteria.ProjectID, err = projectFilter(b, findProject); err != nil {
					return err
				}
			}

			cards := criteria.Apply(board.Flatten(b.Columns))
			if asJSON {
				return display.FormatJSON(printer.Out(), cards)
			}
			if !criteria.HasFilters() {
				printer.Muted("No filters given, listing every open card\n\n")
			}
			display.FormatCards(printer.Out(), b, cards, display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Change what the board shows",
	Long: `View settings are part of the board and are saved with it.

  tack view archived on|off     Show archived cards in columns
  tack view top10 on|off        Show the top 10 panel below the board
  tack view project NAME|all    Filter the board to one project
  tack view expand CARD|all     Show the notes of a card
  tack view collapse [CARD|all] Hide the notes of a card (default: all)`,
}

var viewArchivedCmd = &cobra.Command{
	Use:       "archived on|off",
	Short:     "Show or hide archived cards",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			e.Apply(func(b board.Board) board.Board { return b.SetShowArchived(show) })
			printer.Success("Archived cards %s\n", shownOrHidden(show))
			return nil
		})
	},
}

var viewTopCmd = &cobra.Command{
	Use:       "top10 on|off",
	Short:     "Show or hide the top 10 panel",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			e.Apply(func(b board.Board) board.Board { return b.SetShowTop10(show) })
			printer.Success("Top 10 panel %s\n", shownOrHidden(show))
			return nil
		})
	},
}

var viewProjectCmd = &cobra.Command{
	Use:   "project PROJECT|all",
	Short: "Filter the board to one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			projectID, err := projectFilter(e.Board(), args[0])
			if err != nil {
				return err
			}
			b := e.Apply(func(b board.Board) board.Board { return b.SelectProject(projectID) })
			if projectID == nil {
				printer.Success("Showing all projects\n")
			} else {
				printer.Success("Showing project '%s'\n", b.ProjectName(projectID))
			}
			return nil
		})
	},
}

var viewExpandCmd = &cobra.Command{
	Use:   "expand CARD|all",
	Short: "Show the notes of a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if strings.EqualFold(args[0], "all") {
				e.Apply(func(b board.Board) board.Board { return b.ExpandAll() })
				printer.Success("Expanded all cards\n")
				return nil
			}
			card, _, err := resolver.Card(e.Board(), args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}
			e.Apply(func(b board.Board) board.Board {
				if b.IsExpanded(card.ID) {
					return b
				}
				return b.ToggleExpanded(card.ID)
			})
			printer.Success("Expanded card '%s'\n", card.Title)
			return nil
		})
	},
}

var viewCollapseCmd = &cobra.Command{
	Use:   "collapse [CARD|all]",
	Short: "Hide the notes of a card",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if len(args) == 0 || strings.EqualFold(args[0], "all") {
				e.Apply(func(b board.Board) board.Board { return b.CollapseAll() })
				printer.Success("Collapsed all cards\n")
				return nil
			}
			card, _, err := resolver.Card(e.Board(), args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}
			e.Apply(func(b board.Board) board.Board {
				if !b.IsExpanded(card.ID) {
					return b
				}
				return b.ToggleExpanded(card.ID)
			})
			printer.Success("Collapsed card '%s'\n", card.Title)
			return nil
		})
	},
}

// projectFilter resolves a project reference; "all" means no filter.
func projectFilter(b board.Board, ref string) (*board.ID, error) {
	if strings.EqualFold(ref, "all") {
		return nil, nil
	}
	p, err := resolver.Project(b, ref)
	if err != nil {
		return nil, resolveError("project", ref, err)
	}
	return &p.ID, nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "yes", "show":
		return true, nil
	case "off", "false", "no", "hide":
		return false, nil
	default:
		return false, printer.Error(
			"invalid switch",
			fmt.Sprintf("Expected on or off, got '%s'", value),
			nil,
		)
	}
}

func shownOrHidden(show bool) string {
	if show {
		return "shown"
	}
	return "hidden"
}

func init() {
	boardCmd.Flags().StringVarP(&boardOutput, "output", "o", "default", "Output format: default or json")

	topCmd.Flags().StringVarP(&topProject, "project", "p", "", "Rank only this project, or 'all' (default: the board's filter)")
	topCmd.Flags().StringVarP(&topOutput, "output", "o", "default", "Output format: default or json")

	findCmd.Flags().StringVar(&findTitle, "title", "", "Filter by title (glob pattern)")
	findCmd.Flags().StringVar(&findText, "text", "", "Filter by text in title or notes")
	findCmd.Flags().StringVar(&findColor, "color", "", "Filter by colour")
	findCmd.Flags().StringVar(&findDueAfter, "due-after", "", "Show cards due after time")
	findCmd.Flags().StringVar(&findDueBefore, "due-before", "", "Show cards due before time")
	findCmd.Flags().StringVarP(&findProject, "project", "p", "", "Filter by project")
	findCmd.Flags().BoolVar(&findArchived, "archived", false, "Include archived cards")
	findCmd.Flags().StringVarP(&findOutput, "output", "o", "default", "Output format: default or json")

	viewCmd.AddCommand(viewArchivedCmd, viewTopCmd, viewProjectCmd, viewExpandCmd, viewCollapseCmd)
	rootCmd.AddCommand(boardCmd, topCmd, findCmd, viewCmd)
}

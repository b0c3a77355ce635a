package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/display"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/resolver"
	"github.com/dyluth/tack/internal/timespec"
	"github.com/dyluth/tack/pkg/board"
)

var (
	cardAddColor    string
	cardAddDue      string
	cardAddNotes    string
	cardAddProgress float64
	cardDeleteYes   bool
	cardShowOutput  string
)

// now is the clock used to resolve relative due dates.
var now = time.Now

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage cards",
	Long: `Cards are the tasks on the board. Each card has a colour, an optional
due date, free-form notes and a progress value between 0 and 100.

Colours can be given as a palette name (red, pink, purple, blue, teal,
amber) or as a #RRGGBB value from the configured palette.

Due dates accept RFC3339 ("2025-03-09T14:30:00Z"), local times
("2025-03-09 14:30", "2025-03-09"), offsets ("+3d", "2w", "36h") or "none"
to clear the date.`,
}

var cardAddCmd = &cobra.Command{
	Use:   "add COLUMN [TITLE]",
	Short: "Add a card to a column",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) == 2 {
			title = args[1]
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			col, err := resolver.Column(e.Board(), args[0])
			if err != nil {
				return resolveError("column", args[0], err)
			}

			color := ""
			if cardAddColor != "" {
				if color, err = parseColor(cardAddColor, e.Palette()); err != nil {
					return err
				}
			} else if palette := e.Palette(); len(palette) > 0 {
				color = palette[0]
			}

			due, err := parseDue(cardAddDue)
			if err != nil {
				return err
			}

			var id board.ID
			e.Apply(func(b board.Board) board.Board {
				b, id = b.AddCard(col.ID, title, color)
				if id == "" {
					return b
				}
				if due != nil {
					b = b.UpdateCardDueDate(col.ID, id, due)
				}
				if cardAddNotes != "" {
					b = b.UpdateCardNotes(col.ID, id, cardAddNotes)
				}
				if cardAddProgress != 0 {
					b = b.UpdateCardProgress(col.ID, id, cardAddProgress)
				}
				return b
			})
			if id == "" {
				return printer.Error(fmt.Sprintf("column '%s' disappeared", col.Title), "The card was not added.", nil)
			}

			shown := title
			if shown == "" {
				shown = board.DefaultCardTitle
			}
			printer.Success("Added card '%s' (%s) to '%s'\n", shown, display.ShortID(id), col.Title)
			return nil
		})
	},
}

// cardUpdate builds a "card <verb> CARD VALUE" command that applies one
// field update to the resolved card.
func cardUpdate(use, short string, update func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
				card, colID, err := resolver.Card(e.Board(), args[0])
				if err != nil {
					return resolveError("card", args[0], err)
				}

				var msg string
				var updateErr error
				e.Apply(func(b board.Board) board.Board {
					var next board.Board
					next, msg, updateErr = update(e, b, colID, card, args[1])
					if updateErr != nil {
						return b
					}
					return next
				})
				if updateErr != nil {
					return updateErr
				}
				printer.Success("%s\n", msg)
				return nil
			})
		},
	}
}

var cardTitleCmd = cardUpdate("title CARD TITLE", "Change a card's title",
	func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error) {
		return b.UpdateCardTitle(colID, card.ID, value), fmt.Sprintf("Renamed card '%s' to '%s'", card.Title, value), nil
	})

var cardColorCmd = cardUpdate("color CARD COLOR", "Change a card's colour",
	func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error) {
		color, err := parseColor(value, e.Palette())
		if err != nil {
			return b, "", err
		}
		return b.UpdateCardColor(colID, card.ID, color), fmt.Sprintf("Card '%s' is now %s", card.Title, board.ColorName(color)), nil
	})

var cardDueCmd = cardUpdate("due CARD DATE|none", "Set or clear a card's due date",
	func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error) {
		due, err := parseDue(value)
		if err != nil {
			return b, "", err
		}
		if due == nil {
			return b.UpdateCardDueDate(colID, card.ID, nil), fmt.Sprintf("Cleared due date of '%s'", card.Title), nil
		}
		return b.UpdateCardDueDate(colID, card.ID, due), fmt.Sprintf("Card '%s' is due %s", card.Title, display.FormatDue(*due)), nil
	})

var cardNotesCmd = cardUpdate("notes CARD TEXT", "Replace a card's notes",
	func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error) {
		return b.UpdateCardNotes(colID, card.ID, value), fmt.Sprintf("Updated notes of '%s'", card.Title), nil
	})

var cardProgressCmd = cardUpdate("progress CARD PERCENT", "Set a card's progress (0-100)",
	func(e *engine.Engine, b board.Board, colID board.ID, card board.Card, value string) (board.Board, string, error) {
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "%"), 64)
		if err != nil {
			return b, "", printer.Error("invalid progress", fmt.Sprintf("'%s' is not a number", value), []string{"Use a value between 0 and 100"})
		}
		return b.UpdateCardProgress(colID, card.ID, v), fmt.Sprintf("Card '%s' is %d%% done", card.Title, board.ClampProgress(v)), nil
	})

var cardArchiveCmd = &cobra.Command{
	Use:   "archive CARD",
	Short: "Archive a card, or restore an archived one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			card, colID, err := resolver.Card(e.Board(), args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}
			e.Apply(func(b board.Board) board.Board {
				return b.ToggleCardArchive(colID, card.ID)
			})
			if card.Archived {
				printer.Success("Restored card '%s'\n", card.Title)
			} else {
				printer.Success("Archived card '%s'\n", card.Title)
			}
			return nil
		})
	},
}

var cardDeleteCmd = &cobra.Command{
	Use:     "delete CARD",
	Aliases: []string{"rm"},
	Short:   "Delete a card permanently",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			card, colID, err := resolver.Card(e.Board(), args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}

			ok := confirm(cardDeleteYes, fmt.Sprintf("Delete card '%s'?", card.Title))
			if !ok {
				printer.Muted("Card kept\n")
				return nil
			}
			e.Apply(func(b board.Board) board.Board {
				return b.DeleteCard(colID, card.ID, ok)
			})
			printer.Success("Deleted card '%s'\n", card.Title)
			return nil
		})
	},
}

var cardLocateCmd = &cobra.Command{
	Use:   "locate CARD",
	Short: "Expand one card and collapse all others",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			card, colID, err := resolver.Card(e.Board(), args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}
			b := e.Apply(func(b board.Board) board.Board {
				return b.LocateCard(card.ID)
			})
			col, _ := b.Column(colID)
			display.FormatColumn(printer.Out(), b, col, display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

var cardShowCmd = &cobra.Command{
	Use:   "show CARD",
	Short: "Show every field of a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(cardShowOutput)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			b := e.Board()
			card, colID, err := resolver.Card(b, args[0])
			if err != nil {
				return resolveError("card", args[0], err)
			}
			if asJSON {
				return display.FormatJSON(printer.Out(), card)
			}
			display.FormatCard(printer.Out(), b, card, colID, display.Options{Palette: e.Palette()})
			return nil
		})
	},
}

// parseColor accepts a palette name or a hex value from the palette.
func parseColor(value string, palette board.Palette) (string, error) {
	color := strings.ToUpper(board.ColorByName(strings.TrimSpace(value)))
	if palette.Contains(color) {
		return color, nil
	}

	names := make([]string, 0, len(palette))
	for _, c := range palette {
		names = append(names, board.ColorName(c))
	}
	return "", printer.Error(
		fmt.Sprintf("unknown color '%s'", value),
		"Cards use the colours of the configured palette.",
		[]string{"Valid colors: " + strings.Join(names, ", ")},
	)
}

func parseDue(value string) (*time.Time, error) {
	due, err := timespec.ParseDue(value, now())
	if err != nil {
		return nil, printer.Error(
			"invalid due date",
			err.Error(),
			[]string{"Use RFC3339 like '2025-03-09T14:30:00Z', a date like '2025-03-09', an offset like '+3d', or 'none'"},
		)
	}
	return due, nil
}

func init() {
	cardAddCmd.Flags().StringVar(&cardAddColor, "color", "", "Card colour (palette name or #RRGGBB; default: highest priority)")
	cardAddCmd.Flags().StringVar(&cardAddDue, "due", "", "Due date")
	cardAddCmd.Flags().StringVar(&cardAddNotes, "notes", "", "Card notes")
	cardAddCmd.Flags().Float64Var(&cardAddProgress, "progress", 0, "Progress in percent (0-100)")
	cardDeleteCmd.Flags().BoolVarP(&cardDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
	cardShowCmd.Flags().StringVarP(&cardShowOutput, "output", "o", "default", "Output format: default or json")

	cardCmd.AddCommand(
		cardAddCmd,
		cardTitleCmd,
		cardColorCmd,
		cardDueCmd,
		cardNotesCmd,
		cardProgressCmd,
		cardArchiveCmd,
		cardDeleteCmd,
		cardLocateCmd,
		cardShowCmd,
	)
	rootCmd.AddCommand(cardCmd)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/display"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/persist"
	"github.com/dyluth/tack/internal/printer"
)

var (
	exportDir    string
	exportStdout bool

	importYes bool

	statusOutput string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the board now",
	Long: `Save the board to its storage backend without waiting for autosave.

Inside the shell the save runs in the background; a save requested while
another one is still running is skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if session != nil {
			if session.Save(cmd.Context()) {
				printer.Step("Saving board...\n")
			} else {
				printer.Warning("A save is already in progress, request skipped\n")
			}
			return nil
		}

		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if err := e.SaveNow(ctx); err != nil {
				return printer.ErrorWithContext(
					"failed to save board",
					err.Error(),
					map[string]string{"Storage": storageLocation(e.Config())},
					nil,
				)
			}
			printer.Success("Board saved to %s\n", storageLocation(e.Config()))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board to a JSON file",
	Long: `Write the whole board to management-board-<date>.json in the export
directory (--dir, then export_dir from the config, then the working
directory). With --stdout the JSON is written to standard output instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if exportStdout {
				return e.Adapter().Export(printer.Out())
			}

			dir := exportDir
			if dir == "" {
				dir = e.Config().ExportDir
			}
			if dir == "" {
				dir = "."
			}
			path, err := e.Adapter().ExportToDir(dir, now())
			if err != nil {
				return printer.Error("export failed", err.Error(), nil)
			}
			printer.Success("Board exported to %s\n", path)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the board with an exported JSON file",
	Long: `Replace the whole board with the contents of an exported JSON file.
A file that is not a valid board is rejected and the current board is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return printer.Error(
				"import failed",
				fmt.Sprintf("Cannot read %s: %v", path, err),
				nil,
			)
		}

		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if !confirm(importYes, "Replace the current board with "+path+"?") {
				printer.Muted("Board kept\n")
				return nil
			}

			if err := e.Adapter().ImportFile(path); err != nil {
				if errors.Is(err, persist.ErrInvalidSnapshot) {
					return printer.ErrorWithContext(
						"Invalid file format",
						"The file is not a tack board export. The current board was kept.",
						map[string]string{"File": path, "Error": err.Error()},
						nil,
					)
				}
				return printer.Error("import failed", err.Error(), nil)
			}

			b := e.Board()
			printer.Success("Imported %d column(s) and %d card(s) from %s\n", len(b.Columns), b.CardCount(), path)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage and save status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := parseOutput(statusOutput)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		e := session
		if e == nil {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if e, err = openEngine(ctx, cfg); err != nil {
				return err
			}
			// Status never writes the board.
			defer e.Close()
		}

		h := e.Health(ctx)
		if asJSON {
			return display.FormatJSON(printer.Out(), h)
		}

		printer.Info("Instance:   %s\n", h.Instance)
		printer.Info("Backend:    %s (%s)\n", h.Backend, h.Storage)
		printer.Info("Location:   %s\n", storageLocation(e.Config()))
		printer.Info("Board:      %d column(s), %d card(s)\n", h.Columns, h.Cards)
		if h.LastSaved != nil {
			printer.Info("Last saved: %s\n", h.LastSaved.Local().Format("2006-01-02 15:04:05"))
		}
		if h.Dirty {
			printer.Warning("Unsaved changes\n")
		}
		if h.Status != "healthy" {
			return printer.Error("storage unhealthy", h.Error, nil)
		}
		printer.Success("Healthy\n")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "", "Directory to write the export to")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the export to standard output")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace the board without asking for confirmation")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "default", "Output format: default or json")

	rootCmd.AddCommand(saveCmd, exportCmd, importCmd, statusCmd)
}

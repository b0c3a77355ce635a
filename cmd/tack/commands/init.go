package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/scaffold"
)

var (
	forceInit  bool
	initFormat string
	initDir    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter tack.yml",
	Long: `Write a starter configuration with the default palette, autosave timer
and file storage to the working directory (or --dir).

Use --format=toml for tack.toml instead of tack.yml, and --force to replace
an existing configuration.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Replace an existing configuration")
	initCmd.Flags().StringVar(&initFormat, "format", scaffold.FormatYAML, "Config format: yml or toml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write the configuration to")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := scaffold.Initialize(initDir, initFormat, forceInit)
	if err != nil {
		var existing *scaffold.ExistingError
		if errors.As(err, &existing) {
			return printer.Error(
				"already initialized",
				fmt.Sprintf("Found existing configuration: %v", existing.Files),
				[]string{"Use 'tack init --force' to replace it"},
			)
		}
		return printer.Error("initialization failed", err.Error(), nil)
	}

	printer.Success("Created %s\n", path)
	printer.Println("\nNext steps:")
	printer.Println("  1. Adjust the palette and storage in the file")
	printer.Println("  2. Run 'tack board' to see your board")
	return nil
}

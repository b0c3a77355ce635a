package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dyluth/tack/internal/printer"
)

var (
	version string
	commit  string
	date    string
)

var (
	configPath   string
	instanceName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tack",
	Short: "tack - a task board in your terminal",
	Long: `tack keeps a task board of projects, columns and colour-coded cards.

Cards are ordered by colour priority, then by due date. The board is saved
automatically to a local file or a Redis server and can be exported to and
imported from JSON.

Every id argument accepts the full id, a unique prefix of at least 4
characters, or the exact (case-insensitive) name of the entity.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command and prints any error not already reported.
// This is called by main.main().
func Execute() error {
	return execute(nil)
}

// execute runs rootCmd with args; nil args parse os.Args.
func execute(args []string) error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if args != nil {
		rootCmd.SetArgs(args)
	}

	err := rootCmd.Execute()
	if err != nil && !printer.IsReported(err) {
		return printer.Error("Error", err.Error(), []string{"See usage:\n  tack help"})
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// resetFlags restores every flag of cmd and its children to its default.
// Cobra keeps parsed values between executions, which the shell and the
// tests both do repeatedly.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: tack.yml, tack.yaml or tack.toml in the working directory)")
	rootCmd.PersistentFlags().StringVarP(&instanceName, "instance", "n", "", "Board instance name (overrides config and TACK_INSTANCE)")
}

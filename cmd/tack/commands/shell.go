package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-shellwords"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/printer"
)

const shellPrompt = "tack> "

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Work on the board interactively",
	Long: `Open the board once and read tack commands from standard input, one per
line, without the leading "tack". The board is saved automatically every
autosave interval and once more on exit.

Lines starting with # are ignored, so a file of commands can be piped in:
  tack shell < setup.tack

Type "exit" or "quit", or press Ctrl+D, to leave.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shellLine struct {
	text string
	err  error
}

// readLine reads the next line from the shared input in the background so
// the shell can stop on a signal while waiting.
func readLine() <-chan shellLine {
	ch := make(chan shellLine, 1)
	go func() {
		text, err := stdin.ReadString('\n')
		ch <- shellLine{text: text, err: err}
	}()
	return ch
}

func runShell(cmd *cobra.Command, args []string) error {
	if session != nil {
		return printer.Error("already in a shell", "The shell cannot be nested.", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := engine.ConfigureLogging(cfg.LogLevel, log.InfoLevel, nil); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	if err := e.Start(ctx); err != nil {
		e.Close()
		return err
	}

	session = e
	defer func() { session = nil }()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive {
		printer.Muted("Board '%s' open. Type \"help\" for commands, \"exit\" to leave.\n", cfg.Instance)
	}

loop:
	for {
		if interactive {
			printer.Info(shellPrompt)
		}

		var line shellLine
		select {
		case <-ctx.Done():
			printer.Println()
			break loop
		case line = <-readLine():
		}

		if line.err != nil && line.err != io.EOF {
			printer.Warning("failed to read input: %v\n", line.err)
			break
		}
		if quit := runShellLine(line.text); quit {
			break
		}
		if line.err == io.EOF {
			if interactive {
				printer.Println()
			}
			break
		}
	}

	// The signal context may be cancelled already; the final save must run.
	if err := e.Shutdown(context.Background()); err != nil {
		return printer.ErrorWithContext(
			"failed to save board",
			err.Error(),
			map[string]string{"Storage": storageLocation(cfg)},
			nil,
		)
	}
	if interactive {
		printer.Success("Board saved\n")
	}
	return nil
}

// runShellLine executes one input line and reports whether the shell should
// exit. Command errors are printed and do not end the shell.
func runShellLine(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return false
	}

	args, err := shellwords.Parse(text)
	if err != nil {
		printer.Error("invalid input", err.Error(), []string{"Check for unbalanced quotes"})
		return false
	}
	if len(args) > 0 && args[0] == "tack" {
		args = args[1:]
	}
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	}

	resetFlags(rootCmd)
	_ = execute(args)
	return false
}

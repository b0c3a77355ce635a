package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/persist"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/watch"
)

var (
	watchOutputFormat string
	watchInterval     time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow board saves as they happen",
	Long: `Print a line every time the board is saved, by this or any other tack
process using the same storage.

With the redis backend saves are streamed from pub/sub. The file backend
is polled every --interval.

Output Formats:
  default - "[15:04:05] board 'default' saved (1234 bytes)"
  jsonl   - Line-delimited JSON, one save event per line

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultPollInterval, "Poll interval for the file backend")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "jsonl":
		outputFormat = watch.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
	if session != nil {
		return printer.Error("watch is not available in the shell", "", []string{"Run it in another terminal:\n  tack watch"})
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Watching only reads: the engine is never opened or shut down, only
	// closed, so nothing is written.
	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	defer e.Close()

	sub, err := e.Subscribe(ctx)
	if errors.Is(err, engine.ErrNoEvents) {
		printer.Muted("Polling %s every %s\n", cfg.Storage.Path, watchInterval)
		return watch.Poll(ctx, e.Cache(), cfg.Instance, watchInterval, printer.Out(), outputFormat)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not subscribe to board events at %s", cfg.Storage.RedisURL),
			map[string]string{"Channel": persist.BoardEventsChannel(cfg.Instance)},
			[]string{"Check that Redis is running and storage.redis_url is correct"},
		)
	}
	defer sub.Close()

	printer.Muted("Watching board '%s' on %s\n", cfg.Instance, cfg.Storage.RedisURL)
	return watch.Stream(ctx, sub, printer.Out(), outputFormat)
}

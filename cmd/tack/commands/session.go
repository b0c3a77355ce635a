package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyluth/tack/internal/config"
	"github.com/dyluth/tack/internal/engine"
	"github.com/dyluth/tack/internal/persist"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/internal/resolver"
	"github.com/dyluth/tack/pkg/board"
)

// session is the engine of a running shell. One-shot commands open their
// own engine when it is nil.
var session *engine.Engine

// stdin is shared by the shell loop and confirmation prompts so neither
// loses input buffered by the other.
var stdin = bufio.NewReader(os.Stdin)

// loadConfig reads the configuration selected by --config and --instance
// and applies its log level. Inside the shell the session config is reused.
func loadConfig() (*config.TackConfig, error) {
	if session != nil {
		return session.Config(), nil
	}

	cfg, err := config.Load(configPath, func(c *config.TackConfig) {
		if instanceName != "" {
			c.Instance = instanceName
		}
	})
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{"Check tack.yml, or pass another file:\n  tack --config path/to/tack.yml"},
		)
	}

	if err := engine.ConfigureLogging(cfg.LogLevel, log.WarnLevel, nil); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// openEngine creates an engine for cfg and restores the saved board. A board
// that fails to load is reported and never overwritten.
func openEngine(ctx context.Context, cfg *config.TackConfig) (*engine.Engine, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return nil, printer.Error(
			"failed to open storage",
			err.Error(),
			[]string{"Check storage.backend and storage.redis_url in tack.yml"},
		)
	}

	if err := e.Open(ctx); err != nil {
		e.Close()
		if errors.Is(err, persist.ErrInvalidSnapshot) {
			return nil, printer.ErrorWithContext(
				"Invalid file format",
				"The saved board could not be read and was left untouched.",
				map[string]string{"Storage": storageLocation(cfg), "Error": err.Error()},
				[]string{"Restore a backup with:\n  tack import --yes <file>"},
			)
		}
		return nil, printer.ErrorWithContext(
			"failed to load board",
			err.Error(),
			map[string]string{"Storage": storageLocation(cfg)},
			nil,
		)
	}
	return e, nil
}

// withEngine runs fn against the shell engine or a freshly opened one. A
// fresh engine is shut down afterwards, which saves any change fn made.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *engine.Engine) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if session != nil {
		return fn(ctx, session)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}

	runErr := fn(ctx, e)
	if err := e.Shutdown(ctx); err != nil && runErr == nil {
		return printer.ErrorWithContext(
			"failed to save board",
			err.Error(),
			map[string]string{"Storage": storageLocation(cfg)},
			nil,
		)
	}
	return runErr
}

func storageLocation(cfg *config.TackConfig) string {
	if cfg.Storage.Backend == config.BackendRedis {
		return fmt.Sprintf("%s (key %s)", cfg.Storage.RedisURL, persist.BoardKey(cfg.Instance))
	}
	return cfg.Storage.Path
}

// confirm asks a y/N question on the shared input unless yes is already set.
// Anything but y or yes, including end of input, declines.
func confirm(yes bool, question string) board.Confirmation {
	if yes {
		return board.Confirmed
	}
	printer.Info("%s [y/N] ", question)
	answer, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		printer.Println()
		return board.NotConfirmed
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return board.Confirmed
	default:
		return board.NotConfirmed
	}
}

// resolveError turns a resolver failure into a printed error.
func resolveError(kind, ref string, err error) error {
	var ambiguous *resolver.AmbiguousError
	if errors.As(err, &ambiguous) {
		return printer.Error(
			fmt.Sprintf("ambiguous %s '%s'", kind, ref),
			resolver.FormatAmbiguousError(ambiguous),
			[]string{"Use a longer id prefix or the full id"},
		)
	}
	if resolver.IsNotFoundError(err) {
		return printer.Error(
			fmt.Sprintf("%s '%s' not found", kind, ref),
			err.Error(),
			[]string{"List the board:\n  tack board"},
		)
	}
	return fmt.Errorf("failed to resolve %s: %w", kind, err)
}

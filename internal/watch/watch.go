// Package watch follows board saves as they happen: streamed from Redis
// pub/sub, or polled from a cache that cannot publish.
package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/tack/internal/persist"
)

// OutputFormat selects how events are written.
type OutputFormat string

const (
	OutputFormatDefault OutputFormat = "default"
	OutputFormatJSONL   OutputFormat = "jsonl"
)

// DefaultPollInterval is used by Poll when no interval is given.
const DefaultPollInterval = 2 * time.Second

// EventSource delivers save events, e.g. a *persist.Subscription.
type EventSource interface {
	Events() <-chan persist.SaveEvent
	Errors() <-chan error
}

// Stream writes every event from src until ctx is done or the source closes.
// Subscription errors are written inline and do not stop the stream.
func Stream(ctx context.Context, src EventSource, w io.Writer, format OutputFormat) error {
	events, errs := src.Events(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(w, ev, format); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				// Keep draining events; a nil channel blocks forever.
				errs = nil
				continue
			}
			fmt.Fprintf(w, "warning: %v\n", err)
		}
	}
}

// Poll reads the cache every interval and emits an event whenever the
// stored snapshot changes. The snapshot present when Poll starts is the
// baseline and is not reported.
func Poll(ctx context.Context, cache persist.Cache, instanceName string, interval time.Duration, w io.Writer, format OutputFormat) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	last, err := readSnapshot(ctx, cache)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-ticker.C:
			data, err := readSnapshot(ctx, cache)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if bytes.Equal(data, last) {
				continue
			}
			last = data

			ev := persist.SaveEvent{Instance: instanceName, SavedAtMs: now.UnixMilli(), Bytes: len(data)}
			if err := writeEvent(w, ev, format); err != nil {
				return err
			}
		}
	}
}

func readSnapshot(ctx context.Context, cache persist.Cache) ([]byte, error) {
	data, err := cache.Get(ctx)
	if err != nil {
		if persist.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	return data, nil
}

func writeEvent(w io.Writer, ev persist.SaveEvent, format OutputFormat) error {
	if format == OutputFormatJSONL {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	ts := time.UnixMilli(ev.SavedAtMs).Format("15:04:05")
	_, err := fmt.Fprintf(w, "[%s] board '%s' saved (%d bytes)\n", ts, ev.Instance, ev.Bytes)
	return err
}

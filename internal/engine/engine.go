// Package engine owns one open board: the store, its persistence adapter and
// the autosave timer, wired from configuration.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dyluth/tack/internal/config"
	"github.com/dyluth/tack/internal/persist"
	"github.com/dyluth/tack/pkg/board"
)

// ErrNoEvents is returned by Subscribe when the storage backend cannot
// publish save events.
var ErrNoEvents = errors.New("storage backend does not publish save events")

// Engine is the running board. Mutations go through Apply; persistence is
// driven by the autosave timer (after Start) or by explicit saves.
type Engine struct {
	cfg       *config.TackConfig
	cache     persist.Cache
	store     *board.Store
	adapter   *persist.Adapter
	autosaver *persist.Autosaver
	log       *log.Entry

	mu       sync.Mutex
	started  bool
	shutdown bool
}

// Option customises an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger  *log.Logger
	now     func() time.Time
	onError func(error)
}

// WithLogger sends engine and persistence logs to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithClock overrides the time source used for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// WithSaveErrorHandler is called with every failed save.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(o *engineOptions) { o.onError = fn }
}

// NewCache builds the storage backend selected by cfg.
func NewCache(cfg *config.TackConfig) (persist.Cache, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		return persist.NewRedisCacheFromURL(cfg.Storage.RedisURL, cfg.Instance)
	case config.BackendFile, "":
		return persist.NewFileCache(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// New creates an engine over the backend selected by cfg. The store starts
// with the first-run board; call Open to restore the saved one.
func New(cfg *config.TackConfig, opts ...Option) (*Engine, error) {
	cache, err := NewCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	return NewWithCache(cfg, cache, opts...), nil
}

// NewWithCache creates an engine over an existing cache. The engine takes
// ownership of the cache and closes it on Shutdown.
func NewWithCache(cfg *config.TackConfig, cache persist.Cache, opts ...Option) *Engine {
	o := engineOptions{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	entry := o.logger.WithFields(log.Fields{
		"component": "engine",
		"instance":  cfg.Instance,
	})

	e := &Engine{
		cfg:   cfg,
		cache: cache,
		store: board.NewStore(board.Default(cfg.BoardPalette())),
		log:   entry,
	}
	e.adapter = persist.NewAdapter(e.store, cache, persist.Options{
		MinLatency: cfg.Autosave.MinLatency,
		Clock:      o.now,
		Logger:     o.logger.WithFields(log.Fields{"component": "persist", "instance": cfg.Instance}),
		OnError:    o.onError,
	})
	e.autosaver = persist.NewAutosaver(e.adapter, cfg.Autosave.Interval)
	return e
}

// Open restores the saved board. When nothing was saved yet the first-run
// board stays in place.
func (e *Engine) Open(ctx context.Context) error {
	loaded, err := e.adapter.Load(ctx)
	if err != nil {
		return err
	}
	if loaded {
		b := e.store.Current()
		e.log.WithFields(log.Fields{
			"columns": len(b.Columns),
			"cards":   b.CardCount(),
		}).Info("Board restored")
	} else {
		e.log.Info("No saved board, starting with the default board")
	}
	return nil
}

// Start launches the autosave timer. It runs until Shutdown.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return fmt.Errorf("engine is shut down")
	}
	if err := e.autosaver.Start(ctx); err != nil {
		return err
	}
	e.started = true
	e.log.WithField("interval", e.autosaver.Interval()).Info("Autosave started")
	return nil
}

// Shutdown stops the autosave timer, waits for an in-flight save, writes
// any unsaved changes and closes the backend. Safe to call more than once.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil
	}
	e.shutdown = true
	e.mu.Unlock()

	e.autosaver.Stop()
	e.adapter.Wait()

	var saveErr error
	if e.adapter.Dirty() {
		saveErr = e.adapter.SaveNow(ctx)
		if saveErr != nil {
			e.log.WithError(saveErr).Error("Final save failed")
		}
	}

	closeErr := e.cache.Close()
	stats := e.adapter.Stats()
	e.log.WithFields(log.Fields{
		"saves":          stats.Finished,
		"dropped_saves":  stats.Dropped,
		"autosave_ticks": e.autosaver.Ticks(),
	}).Debug("Engine shut down")

	if saveErr != nil {
		return fmt.Errorf("final save failed: %w", saveErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close storage: %w", closeErr)
	}
	return nil
}

// Close stops the engine without saving and closes the backend. Used when
// the board must not be written back, e.g. after a failed Open.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil
	}
	e.shutdown = true
	e.mu.Unlock()

	e.autosaver.Stop()
	e.adapter.Wait()
	return e.cache.Close()
}

// Apply runs a board command and returns the committed board.
func (e *Engine) Apply(cmd func(board.Board) board.Board) board.Board {
	return e.store.Apply(cmd)
}

// Board returns the current board.
func (e *Engine) Board() board.Board {
	return e.store.Current()
}

// Save requests an asynchronous save; false means one is already running.
func (e *Engine) Save(ctx context.Context) bool {
	return e.adapter.Save(ctx)
}

// SaveNow saves synchronously.
func (e *Engine) SaveNow(ctx context.Context) error {
	return e.adapter.SaveNow(ctx)
}

// Subscribe follows save events of this instance. Only the redis backend
// publishes events; other backends return ErrNoEvents.
func (e *Engine) Subscribe(ctx context.Context) (*persist.Subscription, error) {
	rc, ok := e.cache.(*persist.RedisCache)
	if !ok {
		return nil, ErrNoEvents
	}
	return rc.Subscribe(ctx)
}

// Palette returns the configured colour palette.
func (e *Engine) Palette() board.Palette { return e.cfg.BoardPalette() }

// Config returns the engine configuration.
func (e *Engine) Config() *config.TackConfig { return e.cfg }

// Adapter returns the persistence adapter.
func (e *Engine) Adapter() *persist.Adapter { return e.adapter }

// Cache returns the storage backend.
func (e *Engine) Cache() persist.Cache { return e.cache }

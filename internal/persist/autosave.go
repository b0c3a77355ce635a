package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultAutosaveInterval is the period between automatic save attempts.
const DefaultAutosaveInterval = 60 * time.Second

// ErrAlreadyStarted is returned by Start on an autosaver that is running or
// was stopped.
var ErrAlreadyStarted = errors.New("autosaver already started")

// Saver is anything that can start an asynchronous save.
type Saver interface {
	Save(ctx context.Context) bool
}

// Autosaver requests a save on a fixed interval. Every tick calls Save,
// whether or not the board changed; the saver's busy guard drops ticks that
// arrive while a save is in flight.
type Autosaver struct {
	saver    Saver
	interval time.Duration
	log      *log.Entry

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	ticks   int

	stopOnce sync.Once
}

// NewAutosaver creates a stopped autosaver. A non-positive interval selects
// DefaultAutosaveInterval.
func NewAutosaver(saver Saver, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		saver:    saver,
		interval: interval,
		log:      log.WithField("component", "autosave"),
		done:     make(chan struct{}),
	}
}

// Interval returns the tick period.
func (a *Autosaver) Interval() time.Duration {
	return a.interval
}

// Start launches the timer. It runs until Stop is called or ctx is done.
// Exactly one timer exists per autosaver; a second Start fails.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.run(runCtx)

	a.log.WithField("interval", a.interval).Debug("Autosave started")
	return nil
}

func (a *Autosaver) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.mu.Lock()
			a.ticks++
			a.mu.Unlock()
			if !a.saver.Save(ctx) {
				a.log.Debug("Autosave tick skipped, save in flight")
			}
		}
	}
}

// Ticks returns how many times the timer has fired.
func (a *Autosaver) Ticks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticks
}

// Stop cancels the timer and waits for the loop to exit. It does not wait
// for a save the last tick started. Safe to call more than once, and on an
// autosaver that was never started.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		started := a.started
		cancel := a.cancel
		a.started = true
		a.mu.Unlock()

		if !started {
			close(a.done)
			return
		}
		cancel()
		<-a.done
		a.log.Debug("Autosave stopped")
	})
}

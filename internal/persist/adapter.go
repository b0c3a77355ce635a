package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dyluth/tack/pkg/board"
)

// DefaultMinLatency is the minimum duration of an asynchronous save.
const DefaultMinLatency = 500 * time.Millisecond

// ErrSaveInProgress is returned by SaveNow while another save is in flight.
var ErrSaveInProgress = errors.New("save already in progress")

// Options tune an Adapter. Zero values select the defaults.
type Options struct {
	// MinLatency is the minimum time an asynchronous Save stays in flight.
	// Negative values disable the delay.
	MinLatency time.Duration

	// OnError is called with every failed save.
	OnError func(error)

	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time

	// Logger receives save diagnostics; defaults to the standard logrus
	// logger.
	Logger *log.Entry
}

// Adapter moves board snapshots between a Store and a Cache. Save is
// asynchronous and guarded by a single non-reentrant "saving" flag: while a
// save is in flight, further save requests are dropped, not queued.
type Adapter struct {
	store      *board.Store
	cache      Cache
	minLatency time.Duration
	onError    func(error)
	now        func() time.Time
	log        *log.Entry

	saving   atomic.Bool
	inflight sync.WaitGroup

	mu            sync.Mutex
	lastSaved     time.Time
	cleanRev      uint64
	clean         bool
	lastErr       error
	droppedSaves  int
	finishedSaves int
}

// NewAdapter wires a store to a cache.
func NewAdapter(store *board.Store, cache Cache, opts Options) *Adapter {
	a := &Adapter{
		store:      store,
		cache:      cache,
		minLatency: opts.MinLatency,
		onError:    opts.OnError,
		now:        opts.Clock,
		log:        opts.Logger,
	}
	if a.minLatency == 0 {
		a.minLatency = DefaultMinLatency
	}
	if a.minLatency < 0 {
		a.minLatency = 0
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.log == nil {
		a.log = log.WithField("component", "persist")
	}
	return a
}

// Store returns the store this adapter persists.
func (a *Adapter) Store() *board.Store {
	return a.store
}

// Saving reports whether a save is in flight.
func (a *Adapter) Saving() bool {
	return a.saving.Load()
}

// Save starts an asynchronous save of the current snapshot and reports
// whether it was started. If a save is already in flight the request is
// dropped and Save returns false. The snapshot is captured when Save is
// called; later mutations are only included in the next save.
//
// An in-flight save cannot be cancelled: ctx only provides values.
func (a *Adapter) Save(ctx context.Context) bool {
	if !a.saving.CompareAndSwap(false, true) {
		a.mu.Lock()
		a.droppedSaves++
		a.mu.Unlock()
		a.log.Debug("Save requested while another save is in flight, dropping")
		return false
	}

	snap, rev := a.store.Snapshot()
	ctx = context.WithoutCancel(ctx)

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		defer a.saving.Store(false)

		if a.minLatency > 0 {
			time.Sleep(a.minLatency)
		}
		a.finish(a.write(ctx, snap), rev)
	}()
	return true
}

// SaveNow writes the current snapshot synchronously, without the simulated
// latency. It shares the guard with Save and returns ErrSaveInProgress
// instead of waiting.
func (a *Adapter) SaveNow(ctx context.Context) error {
	if !a.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer a.saving.Store(false)

	snap, rev := a.store.Snapshot()
	err := a.write(ctx, snap)
	a.finish(err, rev)
	return err
}

// Wait blocks until the in-flight save, if any, has completed.
func (a *Adapter) Wait() {
	a.inflight.Wait()
}

func (a *Adapter) write(ctx context.Context, b board.Board) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	if err := a.cache.Put(ctx, data); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

func (a *Adapter) finish(err error, rev uint64) {
	a.mu.Lock()
	a.finishedSaves++
	a.lastErr = err
	if err == nil {
		a.lastSaved = a.now()
		a.markClean(rev)
	}
	a.mu.Unlock()

	if err != nil {
		a.log.WithError(err).Warn("Board save failed")
		if a.onError != nil {
			a.onError(err)
		}
		return
	}
	a.log.WithField("revision", rev).Debug("Board saved")
}

// LastSaved returns the completion time of the last successful save; the
// zero time if none succeeded yet.
func (a *Adapter) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}

// LastError returns the error of the most recent save, nil after a success.
func (a *Adapter) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Dirty reports whether the store holds changes not covered by the last
// successful save.
func (a *Adapter) Dirty() bool {
	rev := a.store.Revision()
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.clean || rev != a.cleanRev
}

// markClean records rev as persisted. Callers hold a.mu.
func (a *Adapter) markClean(rev uint64) {
	if a.clean && rev < a.cleanRev {
		return
	}
	a.clean = true
	a.cleanRev = rev
}

// Stats summarises save activity.
type Stats struct {
	Finished int
	Dropped  int
}

// Stats returns counters of finished and dropped saves.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{Finished: a.finishedSaves, Dropped: a.droppedSaves}
}

// Load restores the board from the cache. When the cache is empty the store
// is left untouched and Load returns false. A snapshot that fails to decode
// is an error and also leaves the store untouched.
func (a *Adapter) Load(ctx context.Context) (bool, error) {
	data, err := a.cache.Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			a.log.Debug("No saved board, keeping current state")
			return false, nil
		}
		return false, fmt.Errorf("load failed: %w", err)
	}

	b, err := Decode(data)
	if err != nil {
		return false, fmt.Errorf("load failed: %w", err)
	}

	a.store.Replace(b)
	a.mu.Lock()
	a.markClean(a.store.Revision())
	a.mu.Unlock()
	return true, nil
}

package persist

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSaver struct {
	calls atomic.Int32
}

func (s *countingSaver) Save(ctx context.Context) bool {
	s.calls.Add(1)
	return true
}

func TestAutosaver(t *testing.T) {
	t.Run("saves on every tick", func(t *testing.T) {
		saver := &countingSaver{}
		as := NewAutosaver(saver, 10*time.Millisecond)
		require.NoError(t, as.Start(context.Background()))
		defer as.Stop()

		require.Eventually(t, func() bool {
			return saver.calls.Load() >= 3
		}, time.Second, 5*time.Millisecond)
		assert.GreaterOrEqual(t, as.Ticks(), 3)
	})

	t.Run("second start fails", func(t *testing.T) {
		as := NewAutosaver(&countingSaver{}, time.Hour)
		require.NoError(t, as.Start(context.Background()))
		defer as.Stop()

		assert.ErrorIs(t, as.Start(context.Background()), ErrAlreadyStarted)
	})

	t.Run("stop halts ticking and is idempotent", func(t *testing.T) {
		saver := &countingSaver{}
		as := NewAutosaver(saver, 5*time.Millisecond)
		require.NoError(t, as.Start(context.Background()))

		require.Eventually(t, func() bool {
			return saver.calls.Load() >= 1
		}, time.Second, time.Millisecond)

		as.Stop()
		as.Stop()
		after := saver.calls.Load()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, after, saver.calls.Load())
		assert.ErrorIs(t, as.Start(context.Background()), ErrAlreadyStarted)
	})

	t.Run("stop without start", func(t *testing.T) {
		as := NewAutosaver(&countingSaver{}, time.Hour)
		as.Stop()
		as.Stop()
	})

	t.Run("context cancellation stops the timer", func(t *testing.T) {
		saver := &countingSaver{}
		as := NewAutosaver(saver, 5*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, as.Start(ctx))
		cancel()
		as.Stop()

		after := saver.calls.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, after, saver.calls.Load())
	})

	t.Run("non-positive interval uses default", func(t *testing.T) {
		assert.Equal(t, DefaultAutosaveInterval, NewAutosaver(&countingSaver{}, 0).Interval())
	})

	t.Run("drives an adapter", func(t *testing.T) {
		cache := newMemoryCache()
		a := newTestAdapter(cache, Options{})
		as := NewAutosaver(a, 10*time.Millisecond)
		require.NoError(t, as.Start(context.Background()))

		require.Eventually(t, func() bool {
			return cache.putCount() >= 2
		}, time.Second, 5*time.Millisecond)
		as.Stop()
		a.Wait()
	})
}

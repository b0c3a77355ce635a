package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key pattern helpers
//
// Keys and channels are namespaced by instance name so several boards can
// share one Redis server.
//
// Key pattern: tack:{instance_name}:board
// Channel pattern: tack:{instance_name}:board_events

// BoardKey returns the Redis key holding the encoded snapshot.
func BoardKey(instanceName string) string {
	return fmt.Sprintf("tack:%s:board", instanceName)
}

// BoardEventsChannel returns the Pub/Sub channel announcing completed saves.
func BoardEventsChannel(instanceName string) string {
	return fmt.Sprintf("tack:%s:board_events", instanceName)
}

// SaveEvent is published after every successful write to the Redis cache.
type SaveEvent struct {
	Instance  string `json:"instance"`
	SavedAtMs int64  `json:"saved_at_ms"`
	Bytes     int    `json:"bytes"`
}

// RedisCache stores the snapshot as a single string value in Redis.
// The cache is safe for concurrent use.
type RedisCache struct {
	rdb          *redis.Client
	instanceName string
	now          func() time.Time
}

// NewRedisCache creates a cache for the given instance.
// Returns an error if instanceName is empty.
func NewRedisCache(redisOpts *redis.Options, instanceName string) (*RedisCache, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	return &RedisCache{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		now:          time.Now,
	}, nil
}

// NewRedisCacheFromURL parses a redis:// URL and creates a cache.
func NewRedisCacheFromURL(redisURL, instanceName string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisCache(opts, instanceName)
}

// Ping verifies Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the stored snapshot, or ErrNotFound when the key is absent.
func (c *RedisCache) Get(ctx context.Context) ([]byte, error) {
	data, err := c.rdb.Get(ctx, BoardKey(c.instanceName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read board from Redis: %w", err)
	}
	return data, nil
}

// Put writes the snapshot and publishes a SaveEvent.
// A failed publish is reported but the snapshot stays written.
func (c *RedisCache) Put(ctx context.Context, data []byte) error {
	if err := c.rdb.Set(ctx, BoardKey(c.instanceName), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write board to Redis: %w", err)
	}

	event, err := json.Marshal(SaveEvent{
		Instance:  c.instanceName,
		SavedAtMs: c.now().UnixMilli(),
		Bytes:     len(data),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal save event: %w", err)
	}

	if err := c.rdb.Publish(ctx, BoardEventsChannel(c.instanceName), event).Err(); err != nil {
		return fmt.Errorf("failed to publish save event: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Subscription delivers save events until closed.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan SaveEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of save events.
func (s *Subscription) Events() <-chan SaveEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe listens for save events of this instance. Delivery is
// at-most-once: slow subscribers may miss events.
// Context cancellation also stops the subscription.
func (c *RedisCache) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, BoardEventsChannel(c.instanceName))

	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to board events: %w", err)
	}

	eventsChan := make(chan SaveEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event SaveEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal save event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

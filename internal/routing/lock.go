package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TicketLocker serializes scoring passes per ticket so that redelivered
// triggers cannot interleave writes to one ticket's detail and
// confidence rows.
type TicketLocker interface {
	// Lock blocks until the per-ticket lock is held or ctx expires.
	// The release func must be called exactly once when acquired.
	Lock(ctx context.Context, ticketID int64) (release func(), acquired bool)
}

const lockPollInterval = 100 * time.Millisecond

// RedisLocker implements TicketLocker with a Redis SET NX PX advisory
// lock, so the guard holds across replicas of the service.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker builds a locker over the given client.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Lock polls SET NX until the key is owned. Redis unavailability fails
// open: the pass proceeds unguarded rather than stalling routing.
func (l *RedisLocker) Lock(ctx context.Context, ticketID int64) (func(), bool) {
	key := fmt.Sprintf("routing:ticket-lock:%d", ticketID)
	for {
		ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			l.logger.Warn("routing lock unavailable, proceeding unguarded",
				zap.Int64("ticket_id", ticketID), zap.Error(err))
			return func() {}, true
		}
		if ok {
			return func() {
				_ = l.client.Del(context.Background(), key).Err()
			}, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(lockPollInterval):
		}
	}
}

// MemoryLocker is an in-process TicketLocker used when Redis is not
// configured, and in tests.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
}

// NewMemoryLocker builds an empty locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[int64]chan struct{})}
}

// Lock acquires the ticket's slot, waiting for any in-flight pass.
func (l *MemoryLocker) Lock(ctx context.Context, ticketID int64) (func(), bool) {
	l.mu.Lock()
	slot, ok := l.slots[ticketID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[ticketID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, true
	case <-ctx.Done():
		return nil, false
	}
}

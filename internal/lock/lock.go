// Package lock serializes read-project-write cycles on the ledger. The local
// locker covers a single process; the redis locker covers several processes
// sharing one backend.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// LedgerKey is the key guarding the whole ledger.
const LedgerKey = "ledger"

// ErrNotObtained means the lock was held elsewhere until ctx gave up.
var ErrNotObtained = errors.New("lock: not obtained")

// Locker acquires an exclusive lock on key. The returned release func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process locker holding one mutex per key.
type Local struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]chan struct{})}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, ctx.Err())
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}

// Redis is a distributed locker backed by redislock. Locks expire after ttl
// so a crashed holder cannot wedge the ledger.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

// NewRedis creates a distributed locker. Keys are namespaced with prefix.
func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  100 * time.Millisecond,
		prefix: prefix,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := r.prefix + "lock:" + key
	l, err := r.client.Obtain(ctx, lockKey, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		// Obtain surfaces ctx expiry while retrying as the ctx error.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, err)
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// Released with a fresh context since ctx may already be done.
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = l.Release(relCtx)
		})
	}, nil
}

// Package ratelimit implements per-caller request throttling over an
// injected counter store. Deployments with redis share one window
// across instances; without redis the in-process limiter still bounds
// a single node.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter answers whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Store counts hits per key inside a fixed window and expires the
// counter with the window.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

const keyPrefix = "taskhive:ratelimit:"

// RedisStore keeps one counter per key with the window as TTL. The
// expiry is only set when the key is created so the window does not
// slide on every hit.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := keyPrefix + key

	p := s.rdb.TxPipeline()
	incr := p.Incr(ctx, k)
	p.ExpireNX(ctx, k, window)
	if _, err := p.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit incr: %w", err)
	}
	return incr.Val(), nil
}

// FixedWindow allows up to limit hits per window, counted by the store.
type FixedWindow struct {
	store  Store
	limit  int64
	window time.Duration
}

func NewFixedWindow(store Store, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{store: store, limit: limit, window: window}
}

func (f *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	n, err := f.store.Incr(ctx, key, f.window)
	if err != nil {
		return false, err
	}
	return n <= f.limit, nil
}

// Local is the single-node fallback: one token bucket per key,
// stale buckets evicted lazily.
type Local struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	rate    rate.Limit
	burst   int

	maxIdle time.Duration
}

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLocal(perMinute, burst int) *Local {
	return &Local{
		buckets: make(map[string]*localBucket),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		maxIdle: 10 * time.Minute,
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) > 10_000 {
			l.evictLocked(now)
		}
		b = &localBucket{lim: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.Allow(), nil
}

func (l *Local) evictLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.maxIdle {
			delete(l.buckets, k)
		}
	}
}

package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is one fixed-window budget: at most Max hits per Window.
// A zero Max disables the rule.
type Rule struct {
	Max    int
	Window time.Duration
}

func (r Rule) enabled() bool {
	return r.Max > 0 && r.Window > 0
}

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	// Check returns ErrRateLimited when key has already used its budget.
	Check(ctx context.Context, key string, rule Rule) error
	// Hit records one hit and returns ErrRateLimited when it exceeds the budget.
	Hit(ctx context.Context, key string, rule Rule) error
	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}

// RedisLimiter enforces windows with INCR and a first-hit EXPIRE, so every
// process sharing the Redis instance shares the budget.
type RedisLimiter struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis creates a [RedisLimiter] backed by the given Redis client.
func NewRedis(redisClient redis.UniversalClient, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "crl"
	}
	return &RedisLimiter{redis: redisClient, prefix: prefix}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + ":" + k
}

func (l *RedisLimiter) Check(ctx context.Context, key string, rule Rule) error {
	if !rule.enabled() {
		return nil
	}
	count, err := l.redis.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(rule.Max) {
		return ErrRateLimited
	}
	return nil
}

func (l *RedisLimiter) Hit(ctx context.Context, key string, rule Rule) error {
	if !rule.enabled() {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, l.key(key), rule.Window)
	if err != nil {
		return err
	}
	if count > int64(rule.Max) {
		return ErrRateLimited
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *RedisLimiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process variant of [RedisLimiter].
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
	hits    int
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]window), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Check(_ context.Context, key string, rule Rule) error {
	if !rule.enabled() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.resetAt) {
		return nil
	}
	if w.count >= rule.Max {
		return ErrRateLimited
	}
	return nil
}

func (l *MemoryLimiter) Hit(_ context.Context, key string, rule Rule) error {
	if !rule.enabled() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(rule.Window)}
	}
	w.count++
	l.windows[key] = w

	l.hits++
	if l.hits%256 == 0 {
		for k, v := range l.windows {
			if !now.Before(v.resetAt) {
				delete(l.windows, k)
			}
		}
	}

	if w.count > rule.Max {
		return ErrRateLimited
	}
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
	return nil
}

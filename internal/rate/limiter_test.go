package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestLimiters(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	clk := &clock{now: time.Unix(1_700_000_000, 0)}

	cases := []struct {
		name    string
		limiter Limiter
		advance func(time.Duration)
	}{
		{"memory", NewMemory().WithClock(clk.Now), func(d time.Duration) { clk.now = clk.now.Add(d) }},
		{"redis", NewRedis(rdb, "test"), mr.FastForward},
	}

	rule := Rule{Max: 3, Window: time.Minute}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			key := "send:a@x.com"

			for i := 0; i < 3; i++ {
				if err := tc.limiter.Check(ctx, key, rule); err != nil {
					t.Fatalf("check %d: %v", i, err)
				}
				if err := tc.limiter.Hit(ctx, key, rule); err != nil {
					t.Fatalf("hit %d: %v", i, err)
				}
			}
			if err := tc.limiter.Check(ctx, key, rule); !errors.Is(err, ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited on check, got %v", err)
			}
			if err := tc.limiter.Hit(ctx, key, rule); !errors.Is(err, ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited on hit, got %v", err)
			}

			if err := tc.limiter.Check(ctx, "other", rule); err != nil {
				t.Fatalf("independent key limited: %v", err)
			}

			tc.advance(rule.Window + time.Second)
			if err := tc.limiter.Check(ctx, key, rule); err != nil {
				t.Fatalf("window did not reset: %v", err)
			}

			_ = tc.limiter.Hit(ctx, key, rule)
			if err := tc.limiter.Reset(ctx, key); err != nil {
				t.Fatalf("reset: %v", err)
			}
			if err := tc.limiter.Check(ctx, key, rule); err != nil {
				t.Fatalf("expected clean counter after reset: %v", err)
			}
		})
	}
}

func TestDisabledRuleNeverLimits(t *testing.T) {
	l := NewMemory()
	for i := 0; i < 100; i++ {
		if err := l.Hit(context.Background(), "k", Rule{}); err != nil {
			t.Fatalf("disabled rule limited: %v", err)
		}
	}
}

func TestRedisLimiterUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	l := NewRedis(rdb, "")
	if err := l.Hit(context.Background(), "k", Rule{Max: 1, Window: time.Minute}); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

func TestPlanKey(t *testing.T) {
	id := uuid.MustParse("6f1c2f8e-3a8f-4c55-9a52-0d2a8a0a1b11")
	if got := PlanKey(id, "2026-10-15"); got != "plan:6f1c2f8e-3a8f-4c55-9a52-0d2a8a0a1b11:2026-10-15" {
		t.Fatalf("PlanKey=%q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 59*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := c.Get(ctx, "k"); err != nil || !ok || v != "v" {
		t.Fatalf("Get: %q %v %v", v, ok, err)
	}

	now = now.Add(59 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire at midnight")
	}
	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestMemoryCacheMinimumTTL(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", 0)
	now = now.Add(500 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("zero ttl should be raised to one second")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	c, err := NewRedisCache(logger.Nop(), RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := PlanKey(uuid.New(), "2026-10-15")
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get (miss): %v %v", ok, err)
	}
	if err := c.Set(ctx, key, `{"title":"x"}`, 5*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || v != `{"title":"x"}` {
		t.Fatalf("Get: %q %v %v", v, ok, err)
	}
}

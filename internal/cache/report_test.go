package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"scriptdesk/internal/folderstats"
)

// testRedisClient returns a client on DB 15. Skips if Redis is unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("SCRIPTDESK_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, reportKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return client
}

func TestReportCache_RoundTrip(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	c := NewReportCache(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, ok := c.Get(ctx, "p1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	report := folderstats.Analyze(nil, map[string]int{"gone": 2})
	c.Put(ctx, "p1", report)

	got, ok := c.Get(ctx, "p1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.OrphanedScripts != 2 || len(got.OrphanedFolderIDs) != 1 {
		t.Errorf("cached report = %+v", got)
	}

	c.Invalidate(ctx, "p1")
	if _, ok := c.Get(ctx, "p1"); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestNoop(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()
	c.Put(ctx, "p1", &folderstats.Report{})
	if _, ok := c.Get(ctx, "p1"); ok {
		t.Error("noop cache returned a hit")
	}
}

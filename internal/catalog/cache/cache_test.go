package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type entry struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	var got []entry
	found, err := c.Get(ctx, "all", &got)
	if err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	want := []entry{{Name: "BizFibre 100", Price: 899}}
	if err := c.Set(ctx, "all", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	found, err = c.Get(ctx, "all", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "all", []entry{{Name: "LTE"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(6 * time.Minute)

	var got []entry
	if found, _ := c.Get(ctx, "all", &got); found {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheFlush(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "a", entry{Name: "a"})
	_ = c.Set(ctx, "b", entry{Name: "b"})
	if err := mr.Set("unrelated", "keep"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if mr.Exists(keyPrefix+"a") || mr.Exists(keyPrefix+"b") {
		t.Fatal("expected catalog keys to be removed")
	}
	if !mr.Exists("unrelated") {
		t.Fatal("expected unrelated key to survive")
	}
}

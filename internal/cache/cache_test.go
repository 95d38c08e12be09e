package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	if _, ok, _ := mc.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}

	if err := mc.Set(ctx, "k", []byte("v"), time.Minute, TagEvents); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, ok, err := mc.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(value) != "v" {
		t.Errorf("expected v, got %s", value)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	if err := mc.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := mc.Get(ctx, "k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCacheInvalidateTag(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	mc.Set(ctx, "events:TARTU:0", []byte("a"), time.Minute, TagEvents)
	mc.Set(ctx, "events:TALLINN:0", []byte("b"), time.Minute, TagEvents)
	mc.Set(ctx, "venues:TARTU", []byte("c"), time.Minute, TagVenues)

	if err := mc.InvalidateTag(ctx, TagEvents); err != nil {
		t.Fatalf("InvalidateTag: %v", err)
	}

	// Invalidation is coarse: every events entry goes, regardless of city.
	if _, ok, _ := mc.Get(ctx, "events:TARTU:0"); ok {
		t.Error("expected events entry purged")
	}
	if _, ok, _ := mc.Get(ctx, "events:TALLINN:0"); ok {
		t.Error("expected events entry purged")
	}
	if _, ok, _ := mc.Get(ctx, "venues:TARTU"); !ok {
		t.Error("expected venues entry to survive an events invalidation")
	}
}

func TestMemoryCacheExpiredGetKeepsConcurrentFreshSet(t *testing.T) {
	ctx := context.Background()

	// A Get observing an expired entry must not evict a value that a
	// concurrent Set refreshed between its read and write locks.
	for i := 0; i < 200; i++ {
		mc := NewMemoryCache()
		mc.Set(ctx, "k", []byte("stale"), -time.Second)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			mc.Get(ctx, "k")
		}()
		go func() {
			defer wg.Done()
			mc.Set(ctx, "k", []byte("fresh"), time.Minute)
		}()
		wg.Wait()

		value, ok, err := mc.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("iteration %d: fresh entry was evicted, ok=%v err=%v", i, ok, err)
		}
		if string(value) != "fresh" {
			t.Fatalf("iteration %d: expected fresh value, got %s", i, value)
		}
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mc.Set(ctx, "k", []byte("v"), time.Minute, TagEvents)
				mc.Get(ctx, "k")
				mc.InvalidateTag(ctx, TagEvents)
			}
		}()
	}
	wg.Wait()
}

// Package cache provides the injectable query cache service: time-boxed
// entries plus coarse tag-based invalidation. The Redis implementation backs
// production; the memory implementation is the fallback when Redis is
// unreachable and the substitute used in tests.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tag names are shared between the read and mutation paths. One event
// mutation purges every cached events page for every city and filter set.
const (
	TagEvents = "events"
	TagVenues = "venues"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// RedisCache stores entries under a prefix and tracks tag membership in Redis
// sets so InvalidateTag can purge every tagged key in one round trip.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "cache"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (rc *RedisCache) entryKey(key string) string {
	return rc.prefix + ":" + key
}

func (rc *RedisCache) tagKey(tag string) string {
	return rc.prefix + ":tag:" + tag
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rc.client.Get(ctx, rc.entryKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	pipe := rc.client.TxPipeline()
	pipe.Set(ctx, rc.entryKey(key), value, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, rc.tagKey(tag), rc.entryKey(key))
		// Tag sets outlive their members slightly; stale members are
		// harmless, they just DEL keys that already expired.
		pipe.Expire(ctx, rc.tagKey(tag), ttl+time.Hour)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (rc *RedisCache) InvalidateTag(ctx context.Context, tag string) error {
	members, err := rc.client.SMembers(ctx, rc.tagKey(tag)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := rc.client.TxPipeline()
	if len(members) > 0 {
		pipe.Del(ctx, members...)
	}
	pipe.Del(ctx, rc.tagKey(tag))
	_, err = pipe.Exec(ctx)
	return err
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. Safe for concurrent readers and
// concurrent invalidations; a reader racing an invalidation may observe
// either the pre- or post-invalidation state.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		mc.mu.Lock()
		// A Set may have refreshed the key between the read and write locks;
		// only evict if the entry is still expired.
		if current, ok := mc.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(mc.entries, key)
		}
		mc.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	for _, tag := range tags {
		if mc.tags[tag] == nil {
			mc.tags[tag] = make(map[string]struct{})
		}
		mc.tags[tag][key] = struct{}{}
	}
	return nil
}

func (mc *MemoryCache) InvalidateTag(ctx context.Context, tag string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for key := range mc.tags[tag] {
		delete(mc.entries, key)
	}
	delete(mc.tags, tag)
	return nil
}

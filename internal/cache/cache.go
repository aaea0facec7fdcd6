// Package cache keeps summaries and translations keyed by their source text.
// Results live in process memory and, when REDIS_URL is set, in Redis so a
// restart does not pay for the same LLM calls twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL      = time.Hour
	defaultCapacity = 500
	keyPrefix       = "ks:"
)

type Cache struct {
	ttl time.Duration
	rdb *redis.Client

	mu       sync.Mutex
	mem      map[string]item
	capacity int

	hits   atomic.Int64
	misses atomic.Int64
}

type item struct {
	value   []byte
	expires time.Time
}

// New returns a memory cache, backed by Redis when redisURL points at a
// reachable server. Redis problems are logged and never returned.
func New(ctx context.Context, redisURL string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &Cache{
		ttl:      ttl,
		mem:      make(map[string]item),
		capacity: defaultCapacity,
	}
	if redisURL != "" {
		c.rdb = dialRedis(ctx, redisURL)
	}
	slog.Info("result cache ready", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil))
	return c
}

func dialRedis(ctx context.Context, rawURL string) *redis.Client {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		slog.Warn("ignoring REDIS_URL", slog.Any("error", err))
		return nil
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not reachable, caching in memory only",
			slog.String("addr", opts.Addr), slog.Any("error", err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Key hashes parts into a short Redis-friendly key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:12])
}

// Get looks in memory first. A value found only in Redis is copied back
// into memory.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.memGet(key); ok {
		c.hits.Add(1)
		return v, true
	}

	if c.rdb != nil {
		v, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			c.memPut(key, v)
			c.hits.Add(1)
			return v, true
		case !errors.Is(err, redis.Nil):
			slog.Debug("redis read", slog.String("key", key), slog.Any("error", err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set writes value to memory and, if configured, Redis.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if c == nil {
		return
	}
	c.memPut(key, value)

	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Debug("redis write", slog.String("key", key), slog.Any("error", err))
	}
}

func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) memGet(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.mem[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expires) {
		delete(c.mem, key)
		return nil, false
	}
	return it.value, true
}

func (c *Cache) memPut(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, exists := c.mem[key]; !exists && c.capacity > 0 && len(c.mem) >= c.capacity {
		c.makeRoom(now)
	}
	c.mem[key] = item{value: value, expires: now.Add(c.ttl)}
}

// makeRoom frees at least one slot. Expired items go first; otherwise the
// item closest to expiry, which is also the oldest write, is dropped.
// Callers hold c.mu.
func (c *Cache) makeRoom(now time.Time) {
	var soonest string
	var soonestAt time.Time
	for k, it := range c.mem {
		if now.After(it.expires) {
			delete(c.mem, k)
			continue
		}
		if soonest == "" || it.expires.Before(soonestAt) {
			soonest, soonestAt = k, it.expires
		}
	}
	if len(c.mem) >= c.capacity && soonest != "" {
		delete(c.mem, soonest)
	}
}

func (c *Cache) memLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

// LoadJSON decodes a cached value of type T. Decode errors count as a miss.
func LoadJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	data, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

func StoreJSON[T any](ctx context.Context, c *Cache, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, data)
}

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k := Key("summary", "hello")
	assert.Equal(t, k, Key("summary", "hello"))
	assert.NotEqual(t, k, Key("summary", "hello!"))
	assert.Len(t, k, len("ks:")+24)
	assert.Equal(t, "ks:", k[:3])
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "", time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "", time.Millisecond)
	c.Set(ctx, "k", []byte("v"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestEviction(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "", time.Minute)
	c.capacity = 3
	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"))
	}

	assert.Equal(t, 3, c.memLen())
	_, ok := c.Get(ctx, "k4")
	assert.True(t, ok)
}

func TestEvictionPrefersExpired(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "", time.Minute)
	c.capacity = 2
	c.Set(ctx, "keep", []byte("v"))
	c.mu.Lock()
	c.mem["stale"] = item{value: []byte("old"), expires: time.Now().Add(-time.Second)}
	c.mu.Unlock()

	c.Set(ctx, "new", []byte("v"))

	assert.Equal(t, 2, c.memLen())
	_, ok := c.Get(ctx, "keep")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "new")
	assert.True(t, ok)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "", time.Minute)
	c.capacity = 2
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("1"))
	c.Set(ctx, "a", []byte("2"))

	assert.Equal(t, 2, c.memLen())
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "2", string(got))
}

func TestJSONHelpers(t *testing.T) {
	type pair struct{ A, B string }
	ctx := context.Background()
	c := New(ctx, "", time.Minute)

	StoreJSON(ctx, c, "p", pair{"x", "y"})
	got, ok := LoadJSON[pair](ctx, c, "p")
	require.True(t, ok)
	assert.Equal(t, pair{"x", "y"}, got)

	c.Set(ctx, "bad", []byte("{"))
	_, ok = LoadJSON[pair](ctx, c, "bad")
	assert.False(t, ok)
}

func TestInvalidRedisURLFallsBackToL1(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, "not a url", time.Minute)
	assert.Nil(t, c.rdb)

	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.NoError(t, c.Close())
}

func TestNilCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

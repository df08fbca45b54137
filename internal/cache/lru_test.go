package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferortega/cf4j-sub001/resource"
)

func TestLRUBlockCache_GetSet(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	ctx := context.Background()

	key := Key{Path: "users.snap", Block: 0}
	c.Set(ctx, key, []byte("row block"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "row block", string(got))

	_, ok = c.Get(ctx, Key{Path: "users.snap", Block: 1})
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUBlockCache_Eviction(t *testing.T) {
	c := NewLRUBlockCache(10, nil)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "a", Block: 0}, make([]byte, 4))
	c.Set(ctx, Key{Path: "a", Block: 1}, make([]byte, 4))
	// Touch block 0 so block 1 is the eviction candidate.
	_, _ = c.Get(ctx, Key{Path: "a", Block: 0})
	c.Set(ctx, Key{Path: "a", Block: 2}, make([]byte, 4))

	_, ok := c.Get(ctx, Key{Path: "a", Block: 1})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Path: "a", Block: 0})
	assert.True(t, ok)
	assert.Equal(t, int64(8), c.Size())

	// Larger than capacity: never cached.
	c.Set(ctx, Key{Path: "a", Block: 3}, make([]byte, 11))
	assert.Equal(t, 2, c.Len())
}

func TestLRUBlockCache_Replace(t *testing.T) {
	c := NewLRUBlockCache(100, nil)
	ctx := context.Background()
	key := Key{Path: "a"}

	c.Set(ctx, key, make([]byte, 10))
	c.Set(ctx, key, make([]byte, 3))
	assert.Equal(t, int64(3), c.Size())
	assert.Equal(t, 1, c.Len())
}

func TestLRUBlockCache_Invalidate(t *testing.T) {
	c := NewLRUBlockCache(100, nil)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "a", Block: 0}, []byte("x"))
	c.Set(ctx, Key{Path: "a", Block: 1}, []byte("y"))
	c.Set(ctx, Key{Path: "b", Block: 0}, []byte("z"))

	c.Invalidate("a")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(ctx, Key{Path: "b", Block: 0})
	assert.True(t, ok)
}

func TestLRUBlockCache_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 6})
	c := NewLRUBlockCache(100, rc)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "a", Block: 0}, make([]byte, 4))
	assert.Equal(t, int64(4), rc.MemoryUsage())

	// The controller refuses the second block.
	c.Set(ctx, Key{Path: "a", Block: 1}, make([]byte, 4))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 0, c.Len())
}

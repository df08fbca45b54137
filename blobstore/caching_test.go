package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferortega/cf4j-sub001/internal/cache"
)

// countingStore counts backend reads.
type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func newCachingFixture(t *testing.T, data string) (*CachingStore, *countingStore, *cache.LRUBlockCache) {
	t.Helper()

	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(context.Background(), "rows", []byte(data)))
	c := cache.NewLRUBlockCache(1<<20, nil)
	return NewCachingStore(inner, c, 4), inner, c
}

func TestCachingStore_ReadAt(t *testing.T) {
	store, inner, c := newCachingFixture(t, "0123456789")
	ctx := context.Background()

	blob, err := store.Open(ctx, "rows")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "34567", string(buf))
	// Blocks 0 and 1 in one run.
	assert.Equal(t, int64(1), inner.reads.Load())
	assert.Equal(t, 2, c.Len())

	n, err = blob.ReadAt(ctx, buf[:4], 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "4567", string(buf[:4]))
	assert.Equal(t, int64(1), inner.reads.Load())

	// Tail block is short.
	n, err = blob.ReadAt(ctx, buf, 7)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "789", string(buf[:n]))
	assert.Equal(t, int64(2), inner.reads.Load())

	_, err = blob.ReadAt(ctx, buf, 10)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCachingStore_ReadRange(t *testing.T) {
	store, _, _ := newCachingFixture(t, "0123456789")
	ctx := context.Background()

	blob, err := store.Open(ctx, "rows")
	require.NoError(t, err)

	rc, err := blob.ReadRange(ctx, 2, 20)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "23456789", string(got))

	_, err = blob.ReadRange(ctx, 10, 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCachingStore_WritesInvalidate(t *testing.T) {
	store, _, c := newCachingFixture(t, "0123456789")
	ctx := context.Background()

	blob, err := store.Open(ctx, "rows")
	require.NoError(t, err)
	_, err = blob.ReadAt(ctx, make([]byte, 10), 0)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	require.NoError(t, store.Put(ctx, "rows", []byte("abcdefghij")))
	assert.Equal(t, 0, c.Len())

	blob, err = store.Open(ctx, "rows")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))

	require.NoError(t, store.Delete(ctx, "rows"))
	assert.Equal(t, 0, c.Len())
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

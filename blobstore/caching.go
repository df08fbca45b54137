package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ferortega/cf4j-sub001/internal/cache"
)

// DefaultBlockSize is the caching granularity when none is given.
const DefaultBlockSize = 64 << 10

// CachingStore wraps a BlobStore and caches fixed-size blocks of the blobs it
// reads. Writes and deletes pass through and invalidate the cached blocks.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a CachingStore. blockSize defaults to
// DefaultBlockSize if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

// Open opens a cached view of the blob.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create invalidates the blob's blocks and passes through.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.cache.Invalidate(name)
	return s.inner.Create(ctx, name)
}

// Put invalidates the blob's blocks and passes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the blob's blocks and passes through.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) key(block int64) cache.Key {
	return cache.Key{Path: b.name, Block: block}
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), size)
	first, last := off/b.blockSize, (end-1)/b.blockSize

	blocks, err := b.load(ctx, first, last)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, block := range blocks {
		start := (first + int64(i)) * b.blockSize
		lo := max(off, start) - start
		hi := min(end, start+int64(len(block))) - start
		if lo >= hi {
			break
		}
		n += copy(p[n:], block[lo:hi])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// load returns blocks first..last, fetching contiguous runs of missing
// blocks with one backend read each.
func (b *cachingBlob) load(ctx context.Context, first, last int64) ([][]byte, error) {
	blocks := make([][]byte, last-first+1)

	type run struct{ start, count int64 }
	var missing []run
	for blk := first; blk <= last; blk++ {
		if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
			blocks[blk-first] = data
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
		} else {
			missing = append(missing, run{start: blk, count: 1})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, r := range missing {
		g.Go(func() error {
			start := r.start * b.blockSize
			length := min(r.count*b.blockSize, b.Size()-start)
			buf := make([]byte, length)
			n, err := b.inner.ReadAt(gctx, buf, start)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := range r.count {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				// Copy so a cached block does not pin the whole run.
				block := bytes.Clone(buf[lo:min(lo+b.blockSize, int64(len(buf)))])
				blocks[r.start+i-first] = block
				b.cache.Set(ctx, b.key(r.start+i), block)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	end, ok := clip(off, length, b.Size())
	if !ok {
		return nil, io.EOF
	}
	return io.NopCloser(io.NewSectionReader(ReaderAt(ctx, b), off, end-off)), nil
}

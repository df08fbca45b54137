package cache

import "context"

// Key identifies one block of a named blob.
type Key struct {
	Path  string
	Block int64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. The cache retains b.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes all blocks of path.
	Invalidate(path string)
	Close() error
	Stats() (hits, misses int64)
}

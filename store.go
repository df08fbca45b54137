package cf4j

import (
	"context"
	"fmt"

	"github.com/ferortega/cf4j-sub001/blobstore"
	miniostore "github.com/ferortega/cf4j-sub001/blobstore/minio"
	s3store "github.com/ferortega/cf4j-sub001/blobstore/s3"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/internal/cache"
	"github.com/ferortega/cf4j-sub001/resource"
)

// OpenStore connects to the snapshot backend described by cfg. With
// CacheBytes set, reads go through an LRU block cache whose memory is
// reserved on rc.
func OpenStore(ctx context.Context, cfg config.SnapshotConfig, rc *resource.Controller) (blobstore.BlobStore, error) {
	var store blobstore.BlobStore
	switch cfg.Backend {
	case "memory":
		store = blobstore.NewMemoryStore()
	case "local":
		store = blobstore.NewLocalStore(cfg.Dir)
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(cfg.S3.Prefix)}
		if cfg.S3.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.S3.Endpoint))
		}
		s, err := s3store.New(ctx, cfg.S3.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		store = s
	case "minio":
		m := cfg.MinIO
		s, err := miniostore.Connect(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure, m.Bucket, m.Prefix)
		if err != nil {
			return nil, fmt.Errorf("minio store: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("%w: unknown snapshot backend %q", ErrInvalidConfig, cfg.Backend)
	}

	if cfg.CacheBytes > 0 {
		store = blobstore.NewCachingStore(store, cache.NewLRUBlockCache(cfg.CacheBytes, rc), cfg.BlockSize)
	}
	return store, nil
}

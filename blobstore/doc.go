// Package blobstore abstracts where snapshots live.
//
// Built-in implementations:
//
//   - MemoryStore: in-process, for tests and short-lived tools
//   - LocalStore: a directory, read through memory maps
//   - CachingStore: an LRU block cache in front of another store
//   - minio.Store and s3.Store: S3-compatible object storage
//
// Blobs are immutable once written. Create streams a blob and publishes it
// on Close; Put publishes a byte slice in one step.
package blobstore

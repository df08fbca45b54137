// Package cache holds decoded-independent byte blocks of immutable blobs,
// used by blobstore.CachingStore to serve repeated snapshot row reads from
// remote stores.
//
// Memory held by the cache is reported to a resource.Controller when one is
// configured, so cached blocks and similarity matrices share one budget.
package cache

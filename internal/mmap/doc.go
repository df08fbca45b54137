// Package mmap maps snapshot files read-only into memory so that
// blobstore.LocalStore can serve row reads without a syscall per read.
//
// A Mapping's byte slice is valid until Close. Callers that keep data past
// Close must copy it first.
package mmap

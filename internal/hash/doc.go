// Package hash checksums snapshot blocks with CRC32-Castagnoli, which is
// hardware accelerated on amd64 and arm64.
package hash

package hash

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// ErrChecksum is returned by Verify on a mismatch.
var ErrChecksum = errors.New("hash: checksum mismatch")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// Verify checks data against want.
func Verify(data []byte, want uint32) error {
	if got := CRC32C(data); got != want {
		return fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
	}
	return nil
}

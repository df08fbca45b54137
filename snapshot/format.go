package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ferortega/cf4j-sub001/internal/conv"
)

// File layout:
//
//	preamble  magic[8] version uint32 codecLen uint16 codec headerLen uint32 header
//	rows      one block per similarity row, in entity order
//	neighbors one block with the n×k table as int32
//	index     one raw block with n+2 uint64 offsets: rows, neighbors, index
//	footer    indexOffset uint64 indexLen uint32 footerMagic uint32
//
// All integers are little-endian. The footer is written last so snapshots
// can be streamed to object stores.
const (
	// Version is the current format version.
	Version = 1

	footerMagic = 0x4a344643 // "CF4J"
	footerSize  = 16
	preambleMin = 8 + 4 + 2 + 4
)

var magic = [8]byte{'C', 'F', '4', 'J', 'S', 'N', 'A', 'P'}

var (
	// ErrInvalidMagic is returned for blobs that are not snapshots.
	ErrInvalidMagic = errors.New("snapshot: invalid magic")
	// ErrInvalidVersion is returned for unsupported format versions.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	// ErrCorrupt is returned for truncated or inconsistent snapshots.
	ErrCorrupt = errors.New("snapshot: corrupt")
)

// Header describes a snapshot. It is encoded with the codec named in the
// preamble.
type Header struct {
	Metric      string `json:"metric"`
	Side        string `json:"side"`
	Entities    int    `json:"entities"`
	K           int    `json:"k"`
	Compression string `json:"compression"`
	CreatedUnix int64  `json:"created_unix"`
}

func encodePreamble(codecName string, header []byte) ([]byte, error) {
	codecLen, err := conv.IntToUint16(len(codecName))
	if err != nil {
		return nil, fmt.Errorf("snapshot: codec name: %w", err)
	}
	headerLen, err := conv.IntToUint32(len(header))
	if err != nil {
		return nil, fmt.Errorf("snapshot: header: %w", err)
	}
	out := make([]byte, 0, preambleMin+len(codecName)+len(header))
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, Version)
	out = binary.LittleEndian.AppendUint16(out, codecLen)
	out = append(out, codecName...)
	out = binary.LittleEndian.AppendUint32(out, headerLen)
	return append(out, header...), nil
}

func encodeFooter(indexOffset int64, indexLen int) []byte {
	out := make([]byte, 0, footerSize)
	out = binary.LittleEndian.AppendUint64(out, uint64(indexOffset))
	out = binary.LittleEndian.AppendUint32(out, uint32(indexLen))
	return binary.LittleEndian.AppendUint32(out, footerMagic)
}

func decodeFooter(buf []byte, size int64) (offset int64, length int, err error) {
	if binary.LittleEndian.Uint32(buf[12:]) != footerMagic {
		return 0, 0, ErrInvalidMagic
	}
	off := binary.LittleEndian.Uint64(buf[0:])
	length = int(binary.LittleEndian.Uint32(buf[8:]))
	if off > uint64(size-footerSize) || uint64(length) != uint64(size-footerSize)-off {
		return 0, 0, fmt.Errorf("%w: index at %d+%d in %d bytes", ErrCorrupt, off, length, size)
	}
	return int64(off), length, nil
}

func encodeIndex(offsets []int64) []byte {
	out := make([]byte, 0, 8*len(offsets))
	for _, off := range offsets {
		out = binary.LittleEndian.AppendUint64(out, uint64(off))
	}
	return out
}

// decodeIndex checks that offsets are ascending and end at indexOffset.
func decodeIndex(buf []byte, n int, start, indexOffset int64) ([]int64, error) {
	if len(buf) != 8*(n+2) {
		return nil, fmt.Errorf("%w: index has %d bytes for %d entities", ErrCorrupt, len(buf), n)
	}
	offsets := make([]int64, n+2)
	prev := start
	for i := range offsets {
		v, err := conv.Uint64ToInt64(binary.LittleEndian.Uint64(buf[8*i:]))
		if err != nil || v < prev {
			return nil, fmt.Errorf("%w: index offset %d out of order", ErrCorrupt, i)
		}
		offsets[i] = v
		prev = v
	}
	if offsets[0] != start || offsets[n+1] != indexOffset {
		return nil, fmt.Errorf("%w: index does not span the data section", ErrCorrupt)
	}
	return offsets, nil
}

func encodeRow(row []float64) []byte {
	out := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return out
}

func decodeRow(dst []float64, buf []byte) error {
	if len(buf) != 8*len(dst) {
		return fmt.Errorf("%w: row has %d bytes, want %d", ErrCorrupt, len(buf), 8*len(dst))
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return nil
}

func encodeNeighbors(rows func(i int) []int, n, k int) []byte {
	out := make([]byte, 0, 4*n*k)
	for i := range n {
		for _, nb := range rows(i) {
			out = binary.LittleEndian.AppendUint32(out, uint32(int32(nb)))
		}
	}
	return out
}

func decodeNeighbors(dst func(i int) []int, buf []byte, n, k int) error {
	if len(buf) != 4*n*k {
		return fmt.Errorf("%w: neighbor table has %d bytes, want %d", ErrCorrupt, len(buf), 4*n*k)
	}
	for i := range n {
		row := dst(i)
		for j := range row {
			nb := int(int32(binary.LittleEndian.Uint32(buf[4*(i*k+j):])))
			if nb < -1 || nb >= n {
				return fmt.Errorf("%w: neighbor %d of entity %d out of range", ErrCorrupt, nb, i)
			}
			row[j] = nb
		}
	}
	return nil
}

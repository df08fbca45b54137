package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ferortega/cf4j-sub001/internal/hash"
)

// ErrUnknownCompression is returned by ParseCompression for unknown names.
var ErrUnknownCompression = errors.New("snapshot: unknown compression")

// Compression selects the block codec for similarity rows and the neighbor
// table.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = iota
	// CompressionLZ4 favors decode speed.
	CompressionLZ4
	// CompressionZSTD favors ratio.
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd". The empty string is none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// Block layout:
//
//	[uncompressed uint32][stored uint32][crc32c uint32][payload]
//
// stored == 0 means the payload is raw. The checksum covers the payload.
const blockHeaderSize = 12

// encodeBlock compresses data with c. Blocks that shrink by less than 10%
// are stored raw.
func encodeBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("snapshot: unsupported compression %s", c)
	}

	payload, stored := data, uint32(0)
	if len(compressed) > 0 && float64(len(compressed)) <= float64(len(data))*0.9 {
		payload, stored = compressed, uint32(len(compressed))
	}

	out := make([]byte, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], stored)
	binary.LittleEndian.PutUint32(out[8:], hash.CRC32C(payload))
	copy(out[blockHeaderSize:], payload)
	return out, nil
}

// decodeBlock verifies and decompresses one block.
func decodeBlock(block []byte, c Compression) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}
	size := binary.LittleEndian.Uint32(block[0:])
	stored := binary.LittleEndian.Uint32(block[4:])
	sum := binary.LittleEndian.Uint32(block[8:])

	payload := block[blockHeaderSize:]
	want := size
	if stored != 0 {
		want = stored
	}
	if uint32(len(payload)) != want {
		return nil, fmt.Errorf("%w: block payload %d bytes, header says %d", ErrCorrupt, len(payload), want)
	}
	if err := hash.Verify(payload, sum); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if stored == 0 {
		return payload, nil
	}

	out := make([]byte, size)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		out = out[:n]
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		out = decoded
	default:
		return nil, fmt.Errorf("%w: compressed block in %s snapshot", ErrCorrupt, c)
	}
	if uint32(len(out)) != size {
		return nil, errors.Join(ErrCorrupt, fmt.Errorf("decompressed %d bytes, want %d", len(out), size))
	}
	return out, nil
}

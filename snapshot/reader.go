package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/codec"
	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
)

// Reader reads one snapshot. Row reads fetch and decode a single block, so
// a Reader on a remote store serves individual similarity rows without
// downloading the whole matrix.
type Reader struct {
	blob        blobstore.Blob
	name        string
	header      Header
	codecName   string
	side        datamodel.Side
	compression Compression
	offsets     []int64
	opts        options
}

// Open reads the preamble, header and index of a snapshot.
func Open(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Reader, error) {
	o := applyOptions(opts)

	start := time.Now()
	r, n, err := open(ctx, store, name, o)
	o.metricsCollector.RecordSnapshot("open", n, time.Since(start), err)
	o.logger.LogSnapshot(ctx, "open", name, n, err)
	return r, err
}

func open(ctx context.Context, store blobstore.BlobStore, name string, o options) (*Reader, int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	r := &Reader{blob: blob, name: name, opts: o}
	n, err := r.init(ctx)
	if err != nil {
		_ = blob.Close()
		return nil, n, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return r, n, nil
}

func (r *Reader) init(ctx context.Context) (int64, error) {
	var read int64
	size := r.blob.Size()
	if size < int64(len(magic)) {
		return read, ErrInvalidMagic
	}
	if size < preambleMin+footerSize {
		return read, fmt.Errorf("%w: %d bytes", ErrCorrupt, size)
	}

	fixed, err := r.readAt(ctx, 0, 8+4+2)
	if err != nil {
		return read, err
	}
	read += int64(len(fixed))
	if [8]byte(fixed[:8]) != magic {
		return read, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(fixed[8:]); v != Version {
		return read, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}

	codecLen := int64(binary.LittleEndian.Uint16(fixed[12:]))
	rest, err := r.readAt(ctx, 14, codecLen+4)
	if err != nil {
		return read, err
	}
	read += int64(len(rest))
	r.codecName = string(rest[:codecLen])
	c, err := codec.Lookup(r.codecName)
	if err != nil {
		return read, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	headerLen := int64(binary.LittleEndian.Uint32(rest[codecLen:]))
	dataStart := 14 + codecLen + 4 + headerLen
	if dataStart > size-footerSize {
		return read, fmt.Errorf("%w: header overruns the blob", ErrCorrupt)
	}
	raw, err := r.readAt(ctx, 14+codecLen+4, headerLen)
	if err != nil {
		return read, err
	}
	read += int64(len(raw))
	if err := c.Unmarshal(raw, &r.header); err != nil {
		return read, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if err := r.validateHeader(); err != nil {
		return read, err
	}

	footer, err := r.readAt(ctx, size-footerSize, footerSize)
	if err != nil {
		return read, err
	}
	read += footerSize
	indexOffset, indexLen, err := decodeFooter(footer, size)
	if err != nil {
		return read, err
	}

	block, err := r.readAt(ctx, indexOffset, int64(indexLen))
	if err != nil {
		return read, err
	}
	read += int64(len(block))
	index, err := decodeBlock(block, CompressionNone)
	if err != nil {
		return read, err
	}
	r.offsets, err = decodeIndex(index, r.header.Entities, dataStart, indexOffset)
	return read, err
}

func (r *Reader) validateHeader() error {
	h := r.header
	if h.Entities < 1 || h.K < 1 {
		return fmt.Errorf("%w: %d entities, k=%d", ErrCorrupt, h.Entities, h.K)
	}
	side, err := datamodel.ParseSide(h.Side)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	c, err := ParseCompression(h.Compression)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	r.side, r.compression = side, c
	return nil
}

func (r *Reader) readAt(ctx context.Context, off, n int64) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	ra := resource.NewRateLimitedReaderAt(ctx, blobstore.ReaderAt(ctx, r.blob), r.opts.controller)
	got, err := ra.ReadAt(buf, off)
	if got == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: short read at %d", ErrCorrupt, off)
	}
	return nil, err
}

// Header returns the decoded header.
func (r *Reader) Header() Header { return r.header }

// Codec returns the name of the header codec.
func (r *Reader) Codec() string { return r.codecName }

// Side returns the side the matrix was computed over.
func (r *Reader) Side() datamodel.Side { return r.side }

// Len returns the number of entities.
func (r *Reader) Len() int { return r.header.Entities }

func (r *Reader) block(ctx context.Context, i int) ([]byte, error) {
	off, end := r.offsets[i], r.offsets[i+1]
	raw, err := r.readAt(ctx, off, end-off)
	if err != nil {
		return nil, err
	}
	return decodeBlock(raw, r.compression)
}

// Row reads similarity row i.
func (r *Reader) Row(ctx context.Context, i int) ([]float64, error) {
	if i < 0 || i >= r.header.Entities {
		return nil, fmt.Errorf("snapshot: row %d out of range [0, %d)", i, r.header.Entities)
	}
	row := make([]float64, r.header.Entities)
	if err := r.readRow(ctx, i, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Reader) readRow(ctx context.Context, i int, dst []float64) error {
	data, err := r.block(ctx, i)
	if err != nil {
		return fmt.Errorf("snapshot: row %d: %w", i, err)
	}
	return decodeRow(dst, data)
}

type rowLoader struct {
	parallel.Base
	r     *Reader
	m     *similarity.Matrix
	bytes atomic.Int64
}

func (w *rowLoader) Process(ctx context.Context, i int) error {
	if err := w.r.readRow(ctx, i, w.m.Row(i)); err != nil {
		return err
	}
	w.bytes.Add(w.r.offsets[i+1] - w.r.offsets[i])
	return nil
}

// Matrix loads the whole similarity matrix, reserving its memory on the
// configured resource controller. Rows are read in parallel.
func (r *Reader) Matrix(ctx context.Context) (*similarity.Matrix, error) {
	start := time.Now()
	m, n, err := r.matrix(ctx)
	r.opts.metricsCollector.RecordSnapshot("load", n, time.Since(start), err)
	r.opts.logger.LogSnapshot(ctx, "load", r.name, n, err)
	return m, err
}

func (r *Reader) matrix(ctx context.Context) (*similarity.Matrix, int64, error) {
	m, err := similarity.NewMatrix(ctx, r.header.Entities, r.header.Metric, r.side, r.opts.controller)
	if err != nil {
		return nil, 0, err
	}

	loader := &rowLoader{r: r, m: m}
	err = parallel.Run(ctx, r.header.Entities, loader, max(1, r.opts.numWorkers),
		parallel.WithResourceController(r.opts.controller))
	if err != nil {
		m.Release()
		return nil, loader.bytes.Load(), err
	}
	return m, loader.bytes.Load(), nil
}

// Neighbors loads the neighbor table.
func (r *Reader) Neighbors(ctx context.Context) (*knn.NeighborTable, error) {
	n, k := r.header.Entities, r.header.K
	data, err := r.block(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("snapshot: neighbors: %w", err)
	}
	table, err := knn.NewNeighborTable(n, k)
	if err != nil {
		return nil, err
	}
	if err := decodeNeighbors(table.Row, data, n, k); err != nil {
		return nil, err
	}
	return table, nil
}

// Close releases the underlying blob.
func (r *Reader) Close() error {
	return r.blob.Close()
}

// Load opens a snapshot and reads both tables.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*similarity.Matrix, *knn.NeighborTable, error) {
	r, err := Open(ctx, store, name, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	table, err := r.Neighbors(ctx)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.Matrix(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m, table, nil
}

package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
)

// Write stores a similarity matrix and its neighbor table as one blob.
// The blob is published only if every block was written.
func Write(ctx context.Context, store blobstore.BlobStore, name string, m *similarity.Matrix, table *knn.NeighborTable, opts ...Option) error {
	o := applyOptions(opts)

	start := time.Now()
	n, err := write(ctx, store, name, m, table, o)
	o.metricsCollector.RecordSnapshot("write", n, time.Since(start), err)
	o.logger.LogSnapshot(ctx, "write", name, n, err)
	return err
}

func write(ctx context.Context, store blobstore.BlobStore, name string, m *similarity.Matrix, table *knn.NeighborTable, o options) (int64, error) {
	switch {
	case m == nil || table == nil:
		return 0, errors.New("snapshot: nil matrix or neighbor table")
	case m.Len() != table.Len():
		return 0, fmt.Errorf("snapshot: matrix has %d rows, neighbor table %d", m.Len(), table.Len())
	case m.Len() > math.MaxInt32:
		return 0, fmt.Errorf("snapshot: %d entities exceed the format limit", m.Len())
	}

	header, err := o.codec.Marshal(Header{
		Metric:      m.Metric(),
		Side:        m.Side().String(),
		Entities:    m.Len(),
		K:           table.K(),
		Compression: o.compression.String(),
		CreatedUnix: time.Now().Unix(),
	})
	if err != nil {
		return 0, fmt.Errorf("snapshot: encode header: %w", err)
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(resource.NewRateLimitedWriter(ctx, blob, o.controller), 256<<10)
	cw := &countingWriter{w: bw}
	if err := writeBody(ctx, cw, m, table, o.compression, o.codec.Name(), header); err != nil {
		_ = blobstore.Abort(blob)
		return cw.n, err
	}
	if err := bw.Flush(); err != nil {
		_ = blobstore.Abort(blob)
		return cw.n, err
	}
	return cw.n, blob.Close()
}

func writeBody(ctx context.Context, cw *countingWriter, m *similarity.Matrix, table *knn.NeighborTable, c Compression, codecName string, header []byte) error {
	preamble, err := encodePreamble(codecName, header)
	if err != nil {
		return err
	}
	if _, err := cw.Write(preamble); err != nil {
		return err
	}

	n := m.Len()
	offsets := make([]int64, 0, n+2)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		offsets = append(offsets, cw.n)
		if err := writeBlock(cw, encodeRow(m.Row(i)), c); err != nil {
			return fmt.Errorf("snapshot: row %d: %w", i, err)
		}
	}

	offsets = append(offsets, cw.n)
	if err := writeBlock(cw, encodeNeighbors(table.Row, n, table.K()), c); err != nil {
		return fmt.Errorf("snapshot: neighbors: %w", err)
	}

	indexOffset := cw.n
	offsets = append(offsets, indexOffset)
	index, err := encodeBlock(encodeIndex(offsets), CompressionNone)
	if err != nil {
		return err
	}
	if _, err := cw.Write(index); err != nil {
		return err
	}
	_, err = cw.Write(encodeFooter(indexOffset, len(index)))
	return err
}

func writeBlock(w io.Writer, data []byte, c Compression) error {
	block, err := encodeBlock(data, c)
	if err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with rate limiting.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{
		ctx: ctx,
		w:   w,
		rc:  rc,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReaderAt wraps an io.ReaderAt with rate limiting.
// Each call waits for len(p) bytes before reading.
type RateLimitedReaderAt struct {
	ctx context.Context
	r   io.ReaderAt
	rc  *Controller
}

// NewRateLimitedReaderAt creates a new RateLimitedReaderAt.
func NewRateLimitedReaderAt(ctx context.Context, r io.ReaderAt, rc *Controller) *RateLimitedReaderAt {
	return &RateLimitedReaderAt{
		ctx: ctx,
		r:   r,
		rc:  rc,
	}
}

func (r *RateLimitedReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.ReadAt(p, off)
}

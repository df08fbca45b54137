package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ferortega/cf4j-sub001/resource"
)

var (
	// ErrEmptyDomain is returned when the domain size is less than one.
	ErrEmptyDomain = errors.New("parallel: empty domain")

	// ErrInvalidWorkers is returned when the worker count is less than one.
	ErrInvalidWorkers = errors.New("parallel: worker count must be positive")
)

// Worker is the unit of work of a partitioned pass.
//
// BeforeRun and AfterRun run on the coordinating goroutine. Process runs on
// one of the pass goroutines and must only touch state owned by index.
type Worker interface {
	BeforeRun(ctx context.Context) error
	Process(ctx context.Context, index int) error
	AfterRun(ctx context.Context) error
}

// Base provides no-op BeforeRun and AfterRun hooks for embedding.
type Base struct{}

// BeforeRun implements Worker.
func (Base) BeforeRun(context.Context) error { return nil }

// AfterRun implements Worker.
func (Base) AfterRun(context.Context) error { return nil }

// Func adapts a plain function to a Worker with no-op hooks.
type Func func(ctx context.Context, index int) error

// BeforeRun implements Worker.
func (Func) BeforeRun(context.Context) error { return nil }

// Process implements Worker.
func (f Func) Process(ctx context.Context, index int) error { return f(ctx, index) }

// AfterRun implements Worker.
func (Func) AfterRun(context.Context) error { return nil }

// TaskError reports the failure of a single index.
type TaskError struct {
	// Index is the index whose Process call failed.
	Index int
	// Panic holds the recovered value if Process panicked.
	Panic any
	cause error
}

func (e *TaskError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("parallel: index %d panicked: %v", e.Index, e.Panic)
	}
	return fmt.Sprintf("parallel: index %d: %v", e.Index, e.cause)
}

func (e *TaskError) Unwrap() error { return e.cause }

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Ranges partitions [0, domainSize) into min(numWorkers, domainSize)
// contiguous ranges. Every range holds domainSize/workers indices except the
// last, which also takes the remainder.
func Ranges(domainSize, numWorkers int) []Range {
	if domainSize < 1 || numWorkers < 1 {
		return nil
	}
	workers := min(numWorkers, domainSize)
	size := domainSize / workers

	out := make([]Range, workers)
	for w := range workers {
		out[w] = Range{Start: w * size, End: (w + 1) * size}
	}
	out[workers-1].End = domainSize
	return out
}

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

type options struct {
	controller *resource.Controller
}

// Option configures a pass.
type Option func(*options)

// WithResourceController makes the pass hold a pass slot of rc while it runs.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// Run executes one pass of w over [0, domainSize) with numWorkers goroutines.
//
// ErrEmptyDomain and ErrInvalidWorkers are returned before any hook runs.
// If any index fails, the remaining indices of the pass are abandoned, the
// first failure is returned once every goroutine has stopped, and AfterRun
// is not called.
func Run(ctx context.Context, domainSize int, w Worker, numWorkers int, opts ...Option) error {
	if domainSize < 1 {
		return ErrEmptyDomain
	}
	if numWorkers < 1 {
		return ErrInvalidWorkers
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.controller.AcquirePass(ctx); err != nil {
		return err
	}
	defer o.controller.ReleasePass()

	if err := w.BeforeRun(ctx); err != nil {
		return err
	}

	ranges := Ranges(domainSize, numWorkers)

	var err error
	if len(ranges) == 1 {
		err = runRange(ctx, w, ranges[0])
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, r := range ranges {
			g.Go(func() error {
				return runRange(gctx, w, r)
			})
		}
		err = g.Wait()
	}
	if err != nil {
		return err
	}

	return w.AfterRun(ctx)
}

func runRange(ctx context.Context, w Worker, r Range) error {
	done := ctx.Done()
	for i := r.Start; i < r.End; i++ {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		if err := process(ctx, w, i); err != nil {
			return err
		}
	}
	return nil
}

func process(ctx context.Context, w Worker, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Index: index, Panic: r, cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := w.Process(ctx, index); err != nil {
		return &TaskError{Index: index, cause: err}
	}
	return nil
}

// Package parallel runs partitioned passes over a dense index domain.
//
// A pass calls Worker.BeforeRun once, then Worker.Process exactly once for
// every index in [0, domainSize), then Worker.AfterRun once. The domain is
// split into contiguous ranges, one per goroutine; the last range absorbs the
// remainder. With a single worker the pass runs on the calling goroutine.
//
// Process(index) may only write output slots owned by index. Workers that
// need shared mutable state bring their own locking.
//
//	err := parallel.Run(ctx, n, parallel.Func(func(ctx context.Context, i int) error {
//	    out[i] = compute(i)
//	    return nil
//	}), runtime.GOMAXPROCS(0))
package parallel

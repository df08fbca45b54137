package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation is larger than the
// configured memory limit, or by ReserveMemory when it does not fit the
// remaining budget.
var ErrMemoryLimitExceeded = errors.New("resource: reservation exceeds memory limit")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for similarity matrices.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentPasses is the maximum number of partitioned passes
	// running at the same time. If 0, defaults to 1.
	MaxConcurrentPasses int64

	// IOLimitBytesPerSec is the maximum snapshot IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages global resources (memory, concurrency, IO).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Passes
	passSem *semaphore.Weighted
	active  atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentPasses <= 0 {
		cfg.MaxConcurrentPasses = 1
	}

	c := &Controller{
		cfg:     cfg,
		passSem: semaphore.NewWeighted(cfg.MaxConcurrentPasses),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}

	c.memUsed.Add(bytes)
	return true
}

// ReserveMemory reserves memory without waiting. Reservations that do not
// fit the remaining budget fail with ErrMemoryLimitExceeded.
func (c *Controller) ReserveMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && bytes > c.cfg.MemoryLimitBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrMemoryLimitExceeded, bytes, c.cfg.MemoryLimitBytes)
	}
	if !c.TryAcquireMemory(bytes) {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.MemoryUsage(), c.cfg.MemoryLimitBytes)
	}
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquirePass reserves a pass slot. Blocks if all slots are busy.
func (c *Controller) AcquirePass(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.passSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// ReleasePass releases a pass slot.
func (c *Controller) ReleasePass() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.passSem.Release(1)
}

// ActivePasses returns the number of passes currently holding a slot.
func (c *Controller) ActivePasses() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the limiter burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

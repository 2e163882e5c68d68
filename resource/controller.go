// Package resource bounds the memory, concurrency and IO throughput used by
// an engine.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrExceedsBudget is returned when a single reservation is larger than the
// whole memory budget and could never be satisfied.
var ErrExceedsBudget = errors.New("resource: reservation exceeds memory budget")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for matrix storage.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentOps is the maximum number of operations running at once.
	// If 0, defaults to 4.
	MaxConcurrentOps int64

	// IOLimitBytesPerSec is the maximum snapshot IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Stats is a point-in-time view of the controller.
type Stats struct {
	MemoryUsed  int64
	MemoryLimit int64
	OpsRunning  int64
}

// Controller manages memory, concurrency and IO budgets.
// A nil *Controller imposes no limit.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	opSem   *semaphore.Weighted
	running atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentOps <= 0 {
		cfg.MaxConcurrentOps = 4
	}

	c := &Controller{
		cfg:   cfg,
		opSem: semaphore.NewWeighted(cfg.MaxConcurrentOps),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(min(cfg.IOLimitBytesPerSec, 1<<30)))
	}

	return c
}

// AcquireMemory reserves memory, blocking until it is available or ctx is
// canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: %d bytes requested, limit is %d", ErrExceedsBudget, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves memory without blocking.
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

// Reserve returns a reservation hook bound to ctx, in the shape expected by
// descriptor.WithReserve and persistence.WithDecodeReserve.
func (c *Controller) Reserve(ctx context.Context) func(bytes int64) (func(), error) {
	return func(bytes int64) (func(), error) {
		if err := c.AcquireMemory(ctx, bytes); err != nil {
			return nil, err
		}
		return func() { c.ReleaseMemory(bytes) }, nil
	}
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireOp reserves an operation slot. Blocks if all slots are busy.
func (c *Controller) AcquireOp(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.opSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.running.Add(1)
	return nil
}

// TryAcquireOp reserves an operation slot without blocking.
func (c *Controller) TryAcquireOp() bool {
	if c == nil {
		return true
	}
	if !c.opSem.TryAcquire(1) {
		return false
	}
	c.running.Add(1)
	return true
}

// ReleaseOp releases an operation slot.
func (c *Controller) ReleaseOp() {
	if c == nil {
		return
	}
	c.running.Add(-1)
	c.opSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
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

// Stats returns the current usage.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		MemoryUsed:  c.memUsed.Load(),
		MemoryLimit: c.cfg.MemoryLimitBytes,
		OpsRunning:  c.running.Load(),
	}
}

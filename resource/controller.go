// Package resource bounds the work that concurrent histogram computations may
// start at once.
//
// A single Controller can be shared by every Compute call in a process: each
// traversal worker takes a worker slot and reserves the scratch memory of its
// private histogram before it starts, and gives both back when it returns.
// The merge into the caller's output runs after every reservation is released.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimit is returned when a single reservation is larger than the
// configured memory limit and could therefore never be granted.
var ErrMemoryLimit = errors.New("resource: reservation exceeds memory limit")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for scratch histogram memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxWorkers is the maximum number of traversal workers running at once
	// across all calls sharing the controller.
	// If 0, defaults to 1.
	MaxWorkers int64
}

// Controller manages shared resources (scratch memory, worker slots).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	workerSem *semaphore.Weighted
	active    atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config { return c.cfg }

// Fits reports whether a reservation of bytes can ever be granted. It wraps
// ErrMemoryLimit when bytes exceeds the hard limit.
func (c *Controller) Fits(bytes int64) error {
	if c == nil || c.memSem == nil {
		return nil
	}
	if bytes > c.cfg.MemoryLimitBytes {
		return fmt.Errorf("%w: requested %d bytes, limit %d", ErrMemoryLimit, bytes, c.cfg.MemoryLimitBytes)
	}
	return nil
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
// Requests larger than the limit fail immediately with ErrMemoryLimit.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}
	if err := c.Fits(bytes); err != nil {
		return err
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}
	if c.Fits(bytes) != nil {
		return false
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireWorker reserves a worker slot, blocking while all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workerSem.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.workerSem.Release(1)
}

// ActiveWorkers returns the number of held worker slots.
func (c *Controller) ActiveWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// Reserve takes a worker slot and bytes of memory together. The returned
// release func gives both back and must be called exactly once.
func (c *Controller) Reserve(ctx context.Context, bytes int64) (release func(), err error) {
	if err := c.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	if err := c.AcquireMemory(ctx, bytes); err != nil {
		c.ReleaseWorker()
		return nil, err
	}
	return func() {
		c.ReleaseMemory(bytes)
		c.ReleaseWorker()
	}, nil
}

// Package resource bounds what bitmap reads may consume: memory reserved for
// decoded files, concurrent reads, and IO throughput against remote stores.
//
// A nil *Controller is valid and imposes no limits.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrOverLimit is returned when a single reservation exceeds the whole budget.
var ErrOverLimit = errors.New("resource: request exceeds limit")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the bytes reserved by reads in flight.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxConcurrentReads caps simultaneous bitmap reads.
	// If 0, reads are not limited.
	MaxConcurrentReads int64

	// IOLimitBytesPerSec is the maximum read throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces a Config.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	readSem *semaphore.Weighted // nil if unlimited
	reads   atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.MaxConcurrentReads > 0 {
		c.readSem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Reservation is memory held by one read. Release is idempotent.
type Reservation struct {
	c     *Controller
	bytes int64
	done  atomic.Bool
}

// Bytes returns the reserved amount.
func (r *Reservation) Bytes() int64 {
	if r == nil {
		return 0
	}
	return r.bytes
}

// Release returns the memory to the controller.
func (r *Reservation) Release() {
	if r == nil || r.c == nil || r.done.Swap(true) {
		return
	}
	if r.c.memSem != nil {
		r.c.memSem.Release(r.bytes)
	}
	r.c.memUsed.Add(-r.bytes)
}

// ReserveMemory blocks until bytes fit into the memory budget or ctx is done.
func (c *Controller) ReserveMemory(ctx context.Context, bytes int64) (*Reservation, error) {
	if c == nil || bytes <= 0 {
		return &Reservation{}, nil
	}
	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return nil, fmt.Errorf("%w: %d bytes of memory, limit %d", ErrOverLimit, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return nil, err
		}
	}
	c.memUsed.Add(bytes)
	return &Reservation{c: c, bytes: bytes}, nil
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireRead blocks until a read slot is free or ctx is done.
func (c *Controller) AcquireRead(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.readSem != nil {
		if err := c.readSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.reads.Add(1)
	return nil
}

// TryAcquireRead takes a read slot without blocking.
func (c *Controller) TryAcquireRead() bool {
	if c == nil {
		return true
	}
	if c.readSem != nil && !c.readSem.TryAcquire(1) {
		return false
	}
	c.reads.Add(1)
	return true
}

// ReleaseRead frees a slot taken by AcquireRead or TryAcquireRead.
func (c *Controller) ReleaseRead() {
	if c == nil {
		return
	}
	if c.readSem != nil {
		c.readSem.Release(1)
	}
	c.reads.Add(-1)
}

// ActiveReads returns the number of reads holding a slot.
func (c *Controller) ActiveReads() int64 {
	if c == nil {
		return 0
	}
	return c.reads.Load()
}

// IOBurst returns the largest single IO request WaitIO accepts, or 0 when
// throughput is unlimited.
func (c *Controller) IOBurst() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioLimiter.Burst()
}

// WaitIO waits until the IO limit allows bytes more bytes. Requests larger
// than IOBurst are split.
func (c *Controller) WaitIO(ctx context.Context, bytes int) error {
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

package heap

import "sync/atomic"

// Counting wraps an Allocator and counts traffic through it.
type Counting struct {
	a Allocator

	allocs      atomic.Int64
	releases    atomic.Int64
	failures    atomic.Int64
	outstanding atomic.Int64
}

// NewCounting wraps a.
func NewCounting(a Allocator) *Counting {
	return &Counting{a: a}
}

// Allocate forwards to the wrapped allocator.
func (c *Counting) Allocate(size int) ([]byte, error) {
	buf, err := c.a.Allocate(size)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.allocs.Add(1)
	c.outstanding.Add(int64(len(buf)))
	return buf, nil
}

// Release forwards to the wrapped allocator.
func (c *Counting) Release(buf []byte) {
	c.releases.Add(1)
	c.outstanding.Add(-int64(len(buf)))
	c.a.Release(buf)
}

// Allocs is the number of successful Allocate calls.
func (c *Counting) Allocs() int64 { return c.allocs.Load() }

// Releases is the number of Release calls.
func (c *Counting) Releases() int64 { return c.releases.Load() }

// Failures is the number of failed Allocate calls.
func (c *Counting) Failures() int64 { return c.failures.Load() }

// Outstanding is the number of bytes allocated and not yet released.
func (c *Counting) Outstanding() int64 { return c.outstanding.Load() }

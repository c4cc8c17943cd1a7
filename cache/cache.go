package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/tempalloc/heap"
)

// Options configures a Cache. The zero value is usable.
type Options struct {
	// InitialCapacity is the number of key slots allocated on first use.
	// Default: DefaultInitialCapacity.
	InitialCapacity int

	// MaxKeys bounds the number of distinct keys. New keys beyond it fail with
	// ErrTableFull. 0 means unbounded.
	MaxKeys int

	// Logger receives growth, release and failure events. Default: discard.
	Logger *slog.Logger

	// Metrics, if set, mirrors the counters into expvar.
	Metrics *Metrics
}

// Cache maps call-site keys to their most recent temporary buffer.
//
// keys and recs are parallel slices: keys[i] and recs[i] describe the same
// call site. Lookup scans only keys.
type Cache struct {
	heap heap.Allocator
	log  *slog.Logger
	met  *Metrics

	keys []Key
	recs []record

	initialCap int
	maxKeys    int

	depth   Depth
	nextKey Key
	names   map[Key]string
	closed  bool

	liveBytes int64
	allocs    int64
	hits      int64
	releases  int64
	growths   int
}

// New creates a cache allocating from h. opts may be nil.
func New(h heap.Allocator, opts *Options) *Cache {
	if h == nil {
		h = heap.NewGo()
	}
	if opts == nil {
		opts = &Options{}
	}

	initialCap := opts.InitialCapacity
	if initialCap <= 0 {
		initialCap = DefaultInitialCapacity
	}
	if opts.MaxKeys > 0 && initialCap > opts.MaxKeys {
		initialCap = opts.MaxKeys
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Cache{
		heap:       h,
		log:        log,
		met:        opts.Metrics,
		initialCap: initialCap,
		maxKeys:    opts.MaxKeys,
		names:      make(map[Key]string),
	}
}

// Alloc returns a buffer of at least size bytes for key. Previous contents are
// not preserved when the buffer is replaced.
//
// A cached buffer is reused when its size S satisfies size < S < 2*size; the
// returned slice then has length S. Otherwise the result has length size.
func (c *Cache) Alloc(key Key, size int) ([]byte, error) {
	return c.alloc(key, size, false)
}

// Realloc is Alloc but, when the buffer is replaced, copies the first
// min(old, new) bytes of the previous buffer into the new one.
func (c *Cache) Realloc(key Key, size int) ([]byte, error) {
	return c.alloc(key, size, true)
}

func (c *Cache) alloc(key Key, size int, copyOld bool) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if invariantsEnabled {
		c.mustValidKey(key)
	}
	if size < 0 {
		return nil, ErrNegativeSize
	}

	idx := c.find(key)
	if idx < 0 {
		var err error
		if idx, err = c.insert(key); err != nil {
			return nil, err
		}
	}

	rec := &c.recs[idx]
	if rec.live && reusable(rec.size, size) {
		rec.depth = c.depth
		c.hits++
		c.met.hit()
		return rec.buf, nil
	}

	buf, err := c.heap.Allocate(size)
	if err != nil {
		c.met.failure()
		name := c.KeyName(key)
		c.log.Warn("heap allocation failed", "key", name, "size", size, "error", err)
		return nil, fmt.Errorf("%w: %d bytes for key %s: %w", ErrOutOfMemory, size, name, err)
	}

	delta := int64(size)
	if rec.live {
		if copyOld {
			copy(buf, rec.buf)
		}
		delta -= int64(rec.size)
		c.heap.Release(rec.buf)
		c.releases++
		c.met.release()
	}

	rec.buf = buf
	rec.size = size
	rec.depth = c.depth
	rec.live = true

	c.liveBytes += delta
	c.allocs++
	c.met.alloc(delta)

	if invariantsEnabled {
		c.mustVerify()
	}
	return buf, nil
}

// reusable reports whether a cached buffer of have bytes may serve a request
// for want bytes: want < have < 2*want, written so it cannot overflow.
func reusable(have, want int) bool {
	return have > want && have-want < want
}

// Lookup returns the buffer currently cached for key without touching any
// counter.
func (c *Cache) Lookup(key Key) ([]byte, bool) {
	idx := c.find(key)
	if idx < 0 || !c.recs[idx].live {
		return nil, false
	}
	return c.recs[idx].buf, true
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		LiveBytes: c.liveBytes,
		Allocs:    c.allocs,
		Hits:      c.hits,
		Releases:  c.releases,
		Growths:   c.growths,
		Keys:      len(c.keys),
		Capacity:  cap(c.keys),
		Depth:     c.depth,
	}
}

// Close releases every cached buffer. Subsequent Alloc and Realloc calls fail
// with ErrClosed. Close is idempotent.
func (c *Cache) Close() error {
	if c.closed {
		return nil
	}
	n, bytes := c.releaseWhere(func(*record) bool { return true })
	c.closed = true
	c.log.Debug("cache closed", "released", n, "bytes", bytes)
	return nil
}

// releaseWhere releases every live record matching fn and returns how many
// buffers and bytes were released.
func (c *Cache) releaseWhere(fn func(*record) bool) (int, int64) {
	var n int
	var bytes int64
	for i := range c.recs {
		rec := &c.recs[i]
		if !rec.live || !fn(rec) {
			continue
		}
		c.heap.Release(rec.buf)
		bytes += int64(rec.size)
		n++

		*rec = record{}
	}

	c.liveBytes -= bytes
	c.releases += int64(n)
	c.met.bulk(n, bytes)

	if invariantsEnabled {
		c.mustVerify()
	}
	return n, bytes
}

// logEnabled avoids building log attributes on the hot path.
func (c *Cache) logEnabled(level slog.Level) bool {
	return c.log.Enabled(context.Background(), level)
}

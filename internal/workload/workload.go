// Package workload drives synthetic allocation patterns through a cache and
// through the bare heap so the two can be compared.
//
// Two patterns are provided. Recursive descends Depth frames, allocating one
// buffer per site in each frame and releasing the frame's buffers as it
// unwinds. Loop allocates one buffer per site on every iteration of a flat
// loop. Request sizes are drawn uniformly from [MinSize, MaxSize] with a
// seeded generator, so both strategies see the same sequence.
//
// The heap strategy releases every buffer when its frame or iteration ends.
// The cache strategy holds one key per frame level and site, and releases
// once, at the frame enclosing the whole run.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/heap"
)

// ErrInvalidParams indicates unusable workload parameters.
var ErrInvalidParams = errors.New("workload: invalid parameters")

// Pattern names.
const (
	Recursive = "recursive"
	Loop      = "loop"
)

// Strategy names.
const (
	Plain  = "heap"
	Cached = "cache"
)

// Params shapes a workload run.
type Params struct {
	Depth      int
	Iterations int
	Sites      int
	MinSize    int
	MaxSize    int
	Seed       uint64
}

// Validate rejects parameters that would produce no work or invalid sizes.
func (p Params) Validate() error {
	switch {
	case p.Depth < 1, p.Iterations < 1, p.Sites < 1:
		return fmt.Errorf("%w: depth, iterations and sites must be positive", ErrInvalidParams)
	case p.MinSize < 0 || p.MinSize > p.MaxSize:
		return fmt.Errorf("%w: size range [%d, %d]", ErrInvalidParams, p.MinSize, p.MaxSize)
	}
	return nil
}

// Result summarizes one pattern run under one strategy.
type Result struct {
	Pattern   string
	Strategy  string
	HeapCalls int64
	Hits      int64
	PeakBytes int64
	Elapsed   time.Duration
}

// Name is "pattern/strategy".
func (r Result) Name() string { return r.Pattern + "/" + r.Strategy }

// Run executes every pattern under both strategies against a. opts configures
// the caches and may be nil.
func Run(ctx context.Context, a heap.Allocator, p Params, opts *cache.Options) ([]Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if a == nil {
		a = heap.NewGo()
	}

	var results []Result
	for _, pattern := range []string{Recursive, Loop} {
		for _, strategy := range []string{Plain, Cached} {
			r, err := RunOne(ctx, a, p, opts, pattern, strategy)
			if err != nil {
				return results, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// RunOne executes a single pattern under a single strategy.
func RunOne(ctx context.Context, a heap.Allocator, p Params, opts *cache.Options, pattern, strategy string) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	counting := heap.NewCounting(a)
	run := &runner{
		p:    p,
		heap: counting,
		rng:  rand.New(rand.NewPCG(p.Seed, p.Seed)),
	}

	var alloc allocFunc
	var c *cache.Cache
	switch strategy {
	case Plain:
		alloc = run.plainAlloc
	case Cached:
		c = cache.New(counting, opts)
		defer c.Close()
		run.cache = c
		run.keys = make([]cache.Key, p.Depth*p.Sites)
		for i := range run.keys {
			run.keys[i] = c.NewKey(fmt.Sprintf("%s.d%d.s%d", pattern, i/p.Sites, i%p.Sites))
		}
		alloc = run.cacheAlloc
	default:
		return Result{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidParams, strategy)
	}

	var body func(context.Context, allocFunc) error
	switch pattern {
	case Recursive:
		body = run.recursive
	case Loop:
		body = run.loop
	default:
		return Result{}, fmt.Errorf("%w: unknown pattern %q", ErrInvalidParams, pattern)
	}

	start := time.Now()
	var m cache.Mark
	if c != nil {
		m = c.Enter()
	}
	err := body(ctx, alloc)
	m.Release()
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("workload %s/%s: %w", pattern, strategy, err)
	}

	res := Result{
		Pattern:   pattern,
		Strategy:  strategy,
		HeapCalls: counting.Allocs(),
		PeakBytes: run.peak,
		Elapsed:   elapsed,
	}
	if c != nil {
		res.Hits = c.Stats().Hits
	}
	return res, nil
}

// allocFunc returns a buffer for site at frame level. owned reports whether
// the caller must release it.
type allocFunc func(level, site, size int) (buf []byte, owned bool, err error)

type runner struct {
	p     Params
	heap  *heap.Counting
	cache *cache.Cache
	keys  []cache.Key
	rng   *rand.Rand
	peak  int64
}

func (r *runner) size() int {
	return r.p.MinSize + r.rng.IntN(r.p.MaxSize-r.p.MinSize+1)
}

func (r *runner) observe() {
	if out := r.heap.Outstanding(); out > r.peak {
		r.peak = out
	}
}

func (r *runner) plainAlloc(_, _, size int) ([]byte, bool, error) {
	buf, err := r.heap.Allocate(size)
	return buf, true, err
}

func (r *runner) cacheAlloc(level, site, size int) ([]byte, bool, error) {
	buf, err := r.cache.Alloc(r.keys[level*r.p.Sites+site], size)
	return buf, false, err
}

// frame allocates and touches one buffer per site, returning the ones the
// caller owns.
func (r *runner) frame(level int, alloc allocFunc, owned [][]byte) ([][]byte, error) {
	for s := 0; s < r.p.Sites; s++ {
		buf, own, err := alloc(level, s, r.size())
		if err != nil {
			return owned, err
		}
		touch(buf, level)
		if own {
			owned = append(owned, buf)
		}
	}
	r.observe()
	return owned, nil
}

func (r *runner) recursive(ctx context.Context, alloc allocFunc) error {
	for i := 0; i < r.p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.descend(0, alloc); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) descend(level int, alloc allocFunc) error {
	owned, err := r.frame(level, alloc, nil)
	if err == nil && level+1 < r.p.Depth {
		err = r.descend(level+1, alloc)
	}

	for _, buf := range owned {
		r.heap.Release(buf)
	}
	return err
}

func (r *runner) loop(ctx context.Context, alloc allocFunc) error {
	var owned [][]byte
	for i := 0; i < r.p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		owned, err = r.frame(0, alloc, owned[:0])
		for _, buf := range owned {
			r.heap.Release(buf)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func touch(buf []byte, v int) {
	if len(buf) == 0 {
		return
	}
	buf[0] = byte(v)
	buf[len(buf)-1] = byte(v)
}

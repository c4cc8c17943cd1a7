package trace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/heap"
)

// ErrExpectation indicates the cache diverged from the script.
var ErrExpectation = errors.New("trace: expectation failed")

// Replayer runs scripts against a cache. Sites and marks persist across Run
// calls so several scripts can share one cache.
type Replayer struct {
	c    *cache.Cache
	fail *heap.Failing
	log  *slog.Logger

	keys  map[string]cache.Key
	marks []cache.Mark
}

// NewReplayer builds a cache over base, wrapped so scripts can inject
// failures. opts may be nil.
func NewReplayer(base heap.Allocator, opts *cache.Options) *Replayer {
	if base == nil {
		base = heap.NewGo()
	}
	if opts == nil {
		opts = &cache.Options{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fail := heap.NewFailing(base, nil)
	return &Replayer{
		c:    cache.New(fail, opts),
		fail: fail,
		log:  log,
		keys: make(map[string]cache.Key),
	}
}

// Cache exposes the underlying cache.
func (r *Replayer) Cache() *cache.Cache { return r.c }

// Close releases all buffers.
func (r *Replayer) Close() error { return r.c.Close() }

// Run executes s. It stops at the first failed step or when ctx is done.
func (r *Replayer) Run(ctx context.Context, s *Script) error {
	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(op); err != nil {
			return fmt.Errorf("%s: op %d (%s): %w", s.Name, i, op.Op, err)
		}
	}
	r.log.Debug("trace replayed", "name", s.Name, "ops", len(s.Ops), "live", r.c.Stats().LiveBytes)
	return nil
}

func (r *Replayer) key(site string) cache.Key {
	k, ok := r.keys[site]
	if !ok {
		k = r.c.NewKey(site)
		r.keys[site] = k
	}
	return k
}

func (r *Replayer) step(op Op) error {
	switch op.Op {
	case OpAlloc, OpRealloc:
		return r.alloc(op)
	case OpEnter:
		r.marks = append(r.marks, r.c.Enter())
	case OpLeave:
		if len(r.marks) == 0 {
			return fmt.Errorf("%w: leave without enter", ErrExpectation)
		}
		m := r.marks[len(r.marks)-1]
		r.marks = r.marks[:len(r.marks)-1]
		m.Release()
	case OpRelease:
		r.c.ReleaseBelow(cache.Depth(op.Depth))
	case OpFail:
		r.fail.SetFailOn(heap.FailAbove(op.Above))
	case OpHeal:
		r.fail.SetFailOn(nil)
	case OpExpect:
		return r.expect(op)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidScript, op.Op)
	}
	return nil
}

func (r *Replayer) alloc(op Op) error {
	k := r.key(op.Site)

	var buf []byte
	var err error
	if op.Op == OpRealloc {
		buf, err = r.c.Realloc(k, op.Size)
	} else {
		buf, err = r.c.Alloc(k, op.Size)
	}

	if op.Error {
		if !errors.Is(err, cache.ErrOutOfMemory) {
			return fmt.Errorf("%w: want out of memory, got %v", ErrExpectation, err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if op.Check != "" && !bytes.HasPrefix(buf, []byte(op.Check)) {
		return fmt.Errorf("%w: buffer for %s starts %q, want %q",
			ErrExpectation, op.Site, buf[:min(len(buf), len(op.Check))], op.Check)
	}
	copy(buf, op.Write)
	return nil
}

func (r *Replayer) expect(op Op) error {
	st := r.c.Stats()
	var merr *multierror.Error
	if op.Live != nil && *op.Live != st.LiveBytes {
		merr = multierror.Append(merr, fmt.Errorf("live bytes %d, want %d", st.LiveBytes, *op.Live))
	}
	if op.Allocs != nil && *op.Allocs != st.Allocs {
		merr = multierror.Append(merr, fmt.Errorf("allocs %d, want %d", st.Allocs, *op.Allocs))
	}
	if op.Hits != nil && *op.Hits != st.Hits {
		merr = multierror.Append(merr, fmt.Errorf("hits %d, want %d", st.Hits, *op.Hits))
	}
	if op.Keys != nil && *op.Keys != st.Keys {
		merr = multierror.Append(merr, fmt.Errorf("keys %d, want %d", st.Keys, *op.Keys))
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrExpectation, err)
	}
	return r.c.Verify()
}

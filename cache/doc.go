// Package cache implements a call-site scoped cache of temporary buffers layered
// on top of a heap.Allocator.
//
// # Overview
//
// Hot loops and recursive computations often allocate a scratch buffer, use it
// briefly and drop it, only to ask for a buffer of almost the same size on the
// next iteration. A Cache remembers, per call site, the most recent buffer it
// handed out and returns it again when the next request from that site is a
// close enough fit. When a computation unwinds, every buffer that belonged to a
// deeper nesting level can be reclaimed in one pass.
//
// # Keys
//
// A call site is identified by a Key. Keys are explicit handles obtained once
// per call site and kept by the caller:
//
//	var scratchKey = c.NewKey("parse.scratch")  // named, sequential
//	k := cache.SiteKey(0)                        // derived from the caller's PC
//
// Keys are never removed from the table once seen.
//
// # Allocation
//
// Alloc and Realloc look up the key (linear scan over a compact key slice; the
// number of distinct call sites is small) and decide between reuse and
// replacement:
//
//	cached size S, request R:  reuse iff S > R && S < 2*R
//
// On reuse the cached buffer is returned unchanged, so its length is S, not R.
// Otherwise a new buffer of exactly R bytes is allocated, the old one released
// and, for Realloc only, the first min(S, R) bytes copied across.
//
// The returned slice is borrowed. It stays valid until the next Alloc or
// Realloc on the same key, or until a bulk release or Close reclaims it.
//
// If the heap cannot satisfy a request the error wraps ErrOutOfMemory and the
// cache is left exactly as it was: the previous buffer for the key is still
// cached and no counter moves.
//
// # Bulk Release
//
// The cache tracks a logical nesting depth. Every Alloc or Realloc stamps the
// key's record with the current depth. ReleaseBelow(d) releases every cached
// buffer stamped deeper than d:
//
//	m := c.Enter()       // depth 0 -> 1
//	buf, err := c.Alloc(k, n)
//	...
//	m.Release()          // depth back to 0, buffers stamped 1+ released
//
// Records stamped at or above d are left alone, so a frame can keep reusing its
// buffer across loop iterations while deeper frames come and go.
//
// # Invariants
//
// Verify checks the table invariants (unique keys, aligned slices, exact
// live-byte accounting, capacity doubling) and returns a descriptive error.
// Building with the invariants tag runs the same checks after every mutating
// call, and validates keys on entry, panicking on violation:
//
//	go test -tags invariants ./...
//
// # Thread Safety
//
// Cache instances are not safe for concurrent use. Use one Cache per goroutine,
// or wrap a shared instance in Locked.
package cache

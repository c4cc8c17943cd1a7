// Package heap defines the heap allocator contract that the temporary-memory
// cache builds on, along with the concrete backends it ships with.
//
// # Allocator Interface
//
// An Allocator hands out byte buffers of an exact size and takes them back:
//
//   - Allocate(size): return a buffer with len == size, or an error
//   - Release(buf): give a buffer previously returned by Allocate back
//
// There is no resize-in-place primitive. Callers that need to grow or shrink a
// buffer allocate a new one, copy, and release the old one.
//
// # Backends
//
// Go: plain make([]byte, n). Release is a no-op and the garbage collector
// reclaims the memory.
//
// Pool: buffers recycled through github.com/valyala/bytebufferpool, which
// calibrates its default buffer size from observed usage.
//
// Mmap: anonymous private mappings (unix only). Memory is outside the Go heap
// and is returned to the kernel on Release.
//
// Wrappers:
//
//   - Limit: enforces a byte budget and fails with ErrExhausted when exceeded
//   - Counting: counts calls and outstanding bytes
//   - Failing: fails requests matching a predicate (tests, fault injection)
//
// # Usage Example
//
//	a, err := heap.ByName("pool")
//	if err != nil {
//	    return err
//	}
//	a = heap.NewLimit(a, 64<<20)
//
//	buf, err := a.Allocate(4096)
//	if err != nil {
//	    return err
//	}
//	defer a.Release(buf)
//
// # Thread Safety
//
// All backends and wrappers in this package are safe for concurrent use.
package heap

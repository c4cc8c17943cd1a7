package heap

import (
	"fmt"
	"strings"
)

// Allocator is the underlying heap the cache allocates from.
//
// Implementations:
//   - Go: runtime heap via make
//   - Pool: bytebufferpool-backed recycling
//   - Mmap: anonymous mappings (unix)
//   - Limit, Counting, Failing: wrappers around another Allocator
type Allocator interface {
	// Allocate returns a buffer of exactly size bytes. Contents are unspecified.
	// A size of 0 is valid and returns an empty, non-nil buffer.
	Allocate(size int) ([]byte, error)

	// Release returns a buffer obtained from Allocate. The caller must not use
	// buf afterwards. Releasing an empty buffer is a no-op.
	Release(buf []byte)
}

// Backend names accepted by ByName.
const (
	BackendGo   = "go"
	BackendPool = "pool"
	BackendMmap = "mmap"
)

// Go allocates from the Go runtime heap.
type Go struct{}

// NewGo returns the runtime-heap allocator.
func NewGo() *Go { return &Go{} }

// Allocate returns make([]byte, size).
func (*Go) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	return makeBuf(size)
}

// makeBuf is make([]byte, size) with the runtime's "len out of range" panic
// for oversized requests turned into ErrExhausted.
func makeBuf(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrExhausted, size, r)
		}
	}()
	return make([]byte, size), nil
}

// Release is a no-op; the garbage collector reclaims the buffer once it is
// unreachable.
func (*Go) Release([]byte) {}

// ByName returns a fresh backend for the given configuration name.
func ByName(name string) (Allocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendGo:
		return NewGo(), nil
	case BackendPool:
		return NewPool(), nil
	case BackendMmap:
		return NewMmap()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Backends lists the names accepted by ByName.
func Backends() []string {
	return []string{BackendGo, BackendPool, BackendMmap}
}

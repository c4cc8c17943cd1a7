//go:build !unix

package heap

// Mmap is unavailable on this platform.
type Mmap struct{}

// NewMmap reports ErrUnsupported on platforms without anonymous mappings.
func NewMmap() (*Mmap, error) {
	return nil, ErrUnsupported
}

// Allocate always fails with ErrUnsupported.
func (*Mmap) Allocate(int) ([]byte, error) { return nil, ErrUnsupported }

// Release is a no-op.
func (*Mmap) Release([]byte) {}

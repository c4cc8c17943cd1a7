//go:build unix

package heap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap allocates every buffer as its own anonymous private mapping. Memory
// lives outside the Go heap and goes back to the kernel on Release.
type Mmap struct{}

// NewMmap returns the mmap-backed allocator.
func NewMmap() (*Mmap, error) {
	return &Mmap{}, nil
}

// Allocate maps size bytes of zeroed, read-write memory.
func (*Mmap) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	if size == 0 {
		return []byte{}, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		if errors.Is(err, unix.ENOMEM) {
			return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrExhausted, size, err)
		}
		return nil, fmt.Errorf("heap: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Release unmaps buf. buf must be the exact slice returned by Allocate.
func (*Mmap) Release(buf []byte) {
	if len(buf) == 0 {
		return
	}
	// EINVAL means buf was not a live mapping; treat as a no-op like a
	// double unmap.
	_ = unix.Munmap(buf)
}

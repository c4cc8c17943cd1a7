package heap

import (
	"fmt"
	"sync"
)

// Limit caps the number of bytes outstanding from the wrapped allocator.
// Requests that would push the total above Max fail with ErrExhausted without
// reaching the wrapped allocator.
type Limit struct {
	a   Allocator
	max int

	mu   sync.Mutex
	used int
}

// NewLimit wraps a with a budget of max bytes. A max <= 0 disables the limit.
func NewLimit(a Allocator, max int) *Limit {
	return &Limit{a: a, max: max}
}

// Allocate reserves size bytes from the budget and allocates from the wrapped
// allocator.
func (l *Limit) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}

	l.mu.Lock()
	if l.max > 0 && l.used+size > l.max {
		used := l.used
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: request %d bytes, %d of %d in use", ErrExhausted, size, used, l.max)
	}
	l.used += size
	l.mu.Unlock()

	buf, err := l.a.Allocate(size)
	if err != nil {
		l.mu.Lock()
		l.used -= size
		l.mu.Unlock()
		return nil, err
	}
	return buf, nil
}

// Release returns buf to the wrapped allocator and credits the budget.
func (l *Limit) Release(buf []byte) {
	n := len(buf)
	l.a.Release(buf)

	l.mu.Lock()
	l.used -= n
	if l.used < 0 {
		l.used = 0
	}
	l.mu.Unlock()
}

// Used reports the bytes currently charged against the budget.
func (l *Limit) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Max reports the configured budget.
func (l *Limit) Max() int { return l.max }

package heap

import (
	"fmt"
	"sync"
)

// Failing wraps an Allocator and fails every request for which FailOn returns
// true. It is meant for fault injection in tests and trace replays.
type Failing struct {
	a Allocator

	mu     sync.Mutex
	failOn func(size int) bool
}

// NewFailing wraps a. With a nil predicate no request fails.
func NewFailing(a Allocator, failOn func(size int) bool) *Failing {
	return &Failing{a: a, failOn: failOn}
}

// FailAbove returns a predicate failing requests larger than n bytes.
func FailAbove(n int) func(int) bool {
	return func(size int) bool { return size > n }
}

// FailAll is a predicate failing every request.
func FailAll(int) bool { return true }

// SetFailOn replaces the predicate.
func (f *Failing) SetFailOn(fn func(size int) bool) {
	f.mu.Lock()
	f.failOn = fn
	f.mu.Unlock()
}

// Allocate fails with ErrExhausted when the predicate matches.
func (f *Failing) Allocate(size int) ([]byte, error) {
	f.mu.Lock()
	fn := f.failOn
	f.mu.Unlock()

	if fn != nil && fn(size) {
		return nil, fmt.Errorf("%w: injected failure for %d bytes", ErrExhausted, size)
	}
	return f.a.Allocate(size)
}

// Release forwards to the wrapped allocator.
func (f *Failing) Release(buf []byte) { f.a.Release(buf) }

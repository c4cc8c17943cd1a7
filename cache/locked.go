package cache

import "sync"

// Locked serializes access to a shared Cache with a mutex.
//
// Buffers returned by Alloc and Realloc are still borrowed from the shared
// cache: another goroutine using the same key, or releasing below the depth
// the buffer was stamped at, invalidates them. Give each goroutine its own
// keys, or use Do to run a whole sequence under the lock.
type Locked struct {
	mu sync.Mutex
	c  *Cache
}

// NewLocked wraps c. c must not be used directly afterwards.
func NewLocked(c *Cache) *Locked {
	return &Locked{c: c}
}

// Do runs fn with exclusive access to the underlying cache.
func (l *Locked) Do(fn func(c *Cache)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.c)
}

// NewKey issues a key. See Cache.NewKey.
func (l *Locked) NewKey(name string) Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.NewKey(name)
}

// Alloc is Cache.Alloc under the lock.
func (l *Locked) Alloc(key Key, size int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Alloc(key, size)
}

// Realloc is Cache.Realloc under the lock.
func (l *Locked) Realloc(key Key, size int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Realloc(key, size)
}

// Enter is Cache.Enter under the lock. It returns the depth to pass to Leave.
func (l *Locked) Enter() Depth {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Enter().Depth()
}

// Leave is Cache.Leave under the lock.
func (l *Locked) Leave(d Depth) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Leave(d)
}

// ReleaseBelow is Cache.ReleaseBelow under the lock.
func (l *Locked) ReleaseBelow(boundary Depth) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.ReleaseBelow(boundary)
}

// Stats is Cache.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Stats()
}

// Close is Cache.Close under the lock.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Close()
}

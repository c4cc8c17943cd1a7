package cache

import "errors"

var (
	// ErrOutOfMemory indicates the heap could not satisfy an allocation.
	// The cached state for the key is unchanged.
	ErrOutOfMemory = errors.New("cache: out of memory")

	// ErrTableFull indicates a new key would exceed the configured MaxKeys.
	ErrTableFull = errors.New("cache: key table full")

	// ErrNegativeSize indicates a request for a negative number of bytes.
	ErrNegativeSize = errors.New("cache: negative size")

	// ErrClosed indicates use of a cache after Close.
	ErrClosed = errors.New("cache: closed")

	// ErrInvalidKey indicates the zero key or a key not issued by this cache.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrCorrupt indicates a broken table invariant.
	ErrCorrupt = errors.New("cache: table invariant violated")
)

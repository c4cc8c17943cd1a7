package heap

import "errors"

var (
	// ErrExhausted indicates that the allocator could not satisfy the request.
	ErrExhausted = errors.New("heap: exhausted")

	// ErrUnsupported indicates that the backend is not available on this platform.
	ErrUnsupported = errors.New("heap: backend not supported on this platform")

	// ErrUnknownBackend indicates that ByName was given a name it does not know.
	ErrUnknownBackend = errors.New("heap: unknown backend")

	// ErrNegativeSize indicates a request for a negative number of bytes.
	ErrNegativeSize = errors.New("heap: negative size")
)

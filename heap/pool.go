package heap

import (
	"sync"
	"unsafe"

	"github.com/valyala/bytebufferpool"
)

// Pool recycles buffers through a bytebufferpool.Pool.
//
// bytebufferpool hands out *ByteBuffer values, so Pool remembers which
// ByteBuffer backs every slice it returned and puts that ByteBuffer back on
// Release.
type Pool struct {
	p bytebufferpool.Pool

	mu  sync.Mutex
	out map[*byte]*bytebufferpool.ByteBuffer
}

// NewPool returns an empty pooled allocator.
func NewPool() *Pool {
	return &Pool{out: make(map[*byte]*bytebufferpool.ByteBuffer)}
}

// Allocate returns a buffer of size bytes taken from the pool when possible.
func (p *Pool) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	if size == 0 {
		return []byte{}, nil
	}

	bb := p.p.Get()
	if cap(bb.B) < size {
		b, err := makeBuf(size)
		if err != nil {
			p.p.Put(bb)
			return nil, err
		}
		bb.B = b
	}
	bb.B = bb.B[:size]
	buf := bb.B[:size:size]

	p.mu.Lock()
	p.out[unsafe.SliceData(buf)] = bb
	p.mu.Unlock()

	return buf, nil
}

// Release puts the ByteBuffer backing buf back into the pool. Buffers not
// handed out by this Pool are ignored.
func (p *Pool) Release(buf []byte) {
	if len(buf) == 0 {
		return
	}

	key := unsafe.SliceData(buf)
	p.mu.Lock()
	bb, ok := p.out[key]
	if ok {
		delete(p.out, key)
	}
	p.mu.Unlock()

	if !ok {
		return
	}
	// Put calibrates on len(bb.B) and resets the buffer itself.
	p.p.Put(bb)
}

// Outstanding reports how many pooled buffers are currently handed out.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out)
}

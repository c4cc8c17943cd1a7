package cache

// Key identifies a call site. The zero Key is invalid.
type Key uint64

// Depth is a logical nesting level. The cache starts at depth 0.
type Depth int

// DefaultInitialCapacity is the number of key slots allocated on first use.
const DefaultInitialCapacity = 128

// record is the allocation state for one key.
type record struct {
	buf   []byte
	size  int   // len(buf) while live
	depth Depth // nesting depth at the most recent Alloc/Realloc
	live  bool  // false means no buffer is cached
}

// Stats is a snapshot of cache counters.
type Stats struct {
	LiveBytes int64 // bytes held by cached buffers
	Allocs    int64 // successful heap allocations
	Hits      int64 // requests served from a cached buffer
	Releases  int64 // buffers handed back to the heap
	Growths   int   // key table growth events
	Keys      int   // distinct keys seen
	Capacity  int   // key table capacity
	Depth     Depth // current nesting depth
}

// HitRate is Hits / (Hits + Allocs), or 0 before any request.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Allocs
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

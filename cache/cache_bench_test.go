package cache

import (
	"strconv"
	"testing"

	"github.com/joshuapare/tempalloc/heap"
)

// BenchmarkAlloc_Hit measures the reuse fast path.
func BenchmarkAlloc_Hit(b *testing.B) {
	c := New(heap.NewGo(), nil)
	k := c.NewKey("hit")
	if _, err := c.Alloc(k, 4096); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.Alloc(k, 3000); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAlloc_ScanDepth measures lookup cost with many distinct keys.
func BenchmarkAlloc_ScanDepth(b *testing.B) {
	for _, n := range []int{8, 128, 1024} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			c := New(heap.NewGo(), nil)
			keys := make([]Key, n)
			for i := range keys {
				keys[i] = c.NewKey("")
				if _, err := c.Alloc(keys[i], 64); err != nil {
					b.Fatal(err)
				}
			}
			last := keys[n-1]

			b.ReportAllocs()
			for b.Loop() {
				if _, err := c.Alloc(last, 40); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRecursion compares cached scratch buffers against plain make.
func BenchmarkRecursion(b *testing.B) {
	const depth = 16

	b.Run("cache", func(b *testing.B) {
		c := New(heap.NewGo(), nil)
		keys := make([]Key, depth)
		for i := range keys {
			keys[i] = c.NewKey("")
			// Warm every level with a buffer inside the reuse window.
			if _, err := c.Alloc(keys[i], 1500); err != nil {
				b.Fatal(err)
			}
		}
		var rec func(int)
		rec = func(level int) {
			if level == depth {
				return
			}
			buf, err := c.Alloc(keys[level], 1024+level)
			if err != nil {
				b.Fatal(err)
			}
			buf[0] = byte(level)
			rec(level + 1)
		}

		b.ReportAllocs()
		for b.Loop() {
			rec(0)
		}
		b.StopTimer()
		c.ReleaseBelow(-1)
	})

	b.Run("make", func(b *testing.B) {
		var sink []byte
		var rec func(int)
		rec = func(level int) {
			if level == depth {
				return
			}
			buf := make([]byte, 1024+level)
			buf[0] = byte(level)
			sink = buf
			rec(level + 1)
		}

		b.ReportAllocs()
		for b.Loop() {
			rec(0)
		}
		_ = sink
	})
}

package cache_test

import (
	"fmt"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/heap"
)

func Example() {
	c := cache.New(heap.NewGo(), nil)
	defer c.Close()

	scratch := c.NewKey("scratch")

	m := c.Enter()
	for _, n := range []int{64, 50, 10} {
		buf, err := c.Alloc(scratch, n)
		if err != nil {
			panic(err)
		}
		st := c.Stats()
		fmt.Printf("want %d got %d live %d hits %d\n", n, len(buf), st.LiveBytes, st.Hits)
	}
	m.Release()

	fmt.Println("after release:", c.Stats().LiveBytes)
	// Output:
	// want 64 got 64 live 64 hits 0
	// want 50 got 64 live 64 hits 1
	// want 10 got 10 live 10 hits 1
	// after release: 0
}

func ExampleCache_Realloc() {
	c := cache.New(nil, nil)
	k := c.NewKey("grow")

	buf, _ := c.Alloc(k, 5)
	copy(buf, "hello")

	buf, _ = c.Realloc(k, 11)
	copy(buf[5:], " world")
	fmt.Println(string(buf))
	// Output: hello world
}

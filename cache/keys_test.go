package cache

import (
	"strings"
	"testing"

	"github.com/joshuapare/tempalloc/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_Sequential(t *testing.T) {
	c := New(nil, nil)
	a := c.NewKey("a")
	b := c.NewKey("")
	assert.Equal(t, Key(1), a)
	assert.Equal(t, Key(2), b)
	assert.Equal(t, "a", c.KeyName(a))
	assert.Equal(t, "key#2", c.KeyName(b))
}

func siteKeyInLoop() []Key {
	var keys []Key
	for range 3 {
		keys = append(keys, SiteKey(0))
	}
	return keys
}

func TestSiteKey_StablePerCallSite(t *testing.T) {
	keys := siteKeyInLoop()
	require.Len(t, keys, 3)
	assert.NotZero(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, keys[0], keys[2])

	other := SiteKey(0)
	assert.NotEqual(t, keys[0], other, "distinct lines yield distinct keys")
}

func TestSiteKey_Name(t *testing.T) {
	c := New(nil, nil)
	k := SiteKey(0)
	assert.True(t, strings.Contains(c.KeyName(k), "keys_test.go:"), c.KeyName(k))
}

func TestSiteKey_NoCollisionWithNewKey(t *testing.T) {
	c := New(nil, nil)
	k := SiteKey(0)
	for range 100 {
		require.NotEqual(t, k, c.NewKey(""))
	}
}

func TestSiteKey_UsableAsCacheKey(t *testing.T) {
	c := New(nil, nil)
	for i := range 5 {
		_, err := c.Alloc(SiteKey(0), 100-i)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Stats().Keys)
	assert.Equal(t, int64(4), c.Stats().Hits)
}

func TestValidKey(t *testing.T) {
	c := New(nil, nil)
	k := c.NewKey("")
	assert.False(t, c.validKey(0))
	assert.True(t, c.validKey(k))
	assert.False(t, c.validKey(k+1), "not issued yet")
	assert.True(t, c.validKey(SiteKey(0)))
}

// descend allocates one buffer per level, keyed by keyFor, and returns the
// buffers the outer levels still hold once the innermost level has run.
func descend(c *Cache, keyFor func(level int) Key, level, depth int, held [][]byte) [][]byte {
	buf, err := c.Alloc(keyFor(level), 64<<level)
	if err != nil {
		panic(err)
	}
	held = append(held, buf)
	if level+1 < depth {
		return descend(c, keyFor, level+1, depth, held)
	}
	return held
}

func TestSiteKey_RecursionReplacesOuterBuffer(t *testing.T) {
	h := heap.NewCounting(heap.NewGo())
	c := New(h, nil)
	defer c.Close()

	held := descend(c, func(int) Key { return SiteKey(0) }, 0, 3, nil)

	assert.Equal(t, 1, c.Stats().Keys, "every level shares one site key")
	assert.Equal(t, int64(2), h.Releases(), "inner levels released the outer buffers")
	require.Len(t, held, 3)
	innermost, ok := c.Lookup(c.keys[0])
	require.True(t, ok)
	assert.Same(t, &held[2][0], &innermost[0])
	assert.NotSame(t, &held[0][0], &innermost[0], "outer frame's buffer is gone")
}

func TestNewKey_PerLevelKeepsOuterBuffers(t *testing.T) {
	h := heap.NewCounting(heap.NewGo())
	c := New(h, nil)
	defer c.Close()

	keys := []Key{c.NewKey("l0"), c.NewKey("l1"), c.NewKey("l2")}
	held := descend(c, func(level int) Key { return keys[level] }, 0, 3, nil)

	assert.Equal(t, 3, c.Stats().Keys)
	assert.Zero(t, h.Releases())
	for level, buf := range held {
		cached, ok := c.Lookup(keys[level])
		require.True(t, ok)
		assert.Same(t, &buf[0], &cached[0], "level %d", level)
	}
}

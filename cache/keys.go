package cache

import (
	"fmt"
	"runtime"
	"strconv"
)

// siteBit marks keys derived from a program counter so they never collide
// with keys issued by NewKey.
const siteBit Key = 1 << 63

// NewKey issues a fresh key for a call site. name is used only in logs and
// error messages and may be empty.
//
// Obtain the key once per call site and keep it, typically in a package or
// struct field:
//
//	type parser struct {
//	    scratch cache.Key
//	}
//	p.scratch = c.NewKey("parser.scratch")
func (c *Cache) NewKey(name string) Key {
	c.nextKey++
	k := c.nextKey
	if name != "" {
		c.names[k] = name
	}
	return k
}

// SiteKey returns a key identifying the call site skip frames above the
// caller of SiteKey. SiteKey(0) identifies the line calling SiteKey. The same
// line always yields the same key, so it suits loops: each iteration reuses
// or replaces the previous iteration's buffer.
//
// Recursive calls share the key too, and a nested call replaces, and may
// release to the heap, the buffer its caller still holds. Recursive code
// should issue one NewKey per nesting level instead.
func SiteKey(skip int) Key {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return 0
	}
	return siteBit | Key(pc)
}

// KeyName describes key for diagnostics.
func (c *Cache) KeyName(key Key) string {
	if name, ok := c.names[key]; ok {
		return name
	}
	if key&siteBit != 0 {
		frames := runtime.CallersFrames([]uintptr{uintptr(key &^ siteBit)})
		f, _ := frames.Next()
		if f.File != "" {
			return f.File + ":" + strconv.Itoa(f.Line)
		}
	}
	return fmt.Sprintf("key#%d", uint64(key))
}

// validKey reports whether key could have come from NewKey on this cache or
// from SiteKey.
func (c *Cache) validKey(key Key) bool {
	switch {
	case key == 0:
		return false
	case key&siteBit != 0:
		return true
	default:
		return key <= c.nextKey
	}
}

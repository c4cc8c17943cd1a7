package cache

import (
	"fmt"
	"math/bits"
)

// Verify checks the table invariants and returns an error wrapping
// ErrCorrupt describing the first violation found.
func (c *Cache) Verify() error {
	if len(c.keys) != len(c.recs) {
		return fmt.Errorf("%w: %d keys but %d records", ErrCorrupt, len(c.keys), len(c.recs))
	}
	if cap(c.keys) != cap(c.recs) {
		return fmt.Errorf("%w: key capacity %d, record capacity %d", ErrCorrupt, cap(c.keys), cap(c.recs))
	}
	if capacity := cap(c.keys); capacity != 0 && !c.validCapacity(capacity) {
		return fmt.Errorf("%w: capacity %d is not %d doubled", ErrCorrupt, capacity, c.initialCap)
	}

	seen := make(map[Key]int, len(c.keys))
	var live int64
	for i, k := range c.keys {
		if k == 0 {
			return fmt.Errorf("%w: zero key at slot %d", ErrCorrupt, i)
		}
		if j, dup := seen[k]; dup {
			return fmt.Errorf("%w: key %s in slots %d and %d", ErrCorrupt, c.KeyName(k), j, i)
		}
		seen[k] = i

		rec := c.recs[i]
		if !rec.live {
			if rec.buf != nil || rec.size != 0 {
				return fmt.Errorf("%w: released slot %d still holds %d bytes", ErrCorrupt, i, rec.size)
			}
			continue
		}
		if rec.size != len(rec.buf) {
			return fmt.Errorf("%w: slot %d size %d but buffer length %d", ErrCorrupt, i, rec.size, len(rec.buf))
		}
		live += int64(rec.size)
	}

	if c.liveBytes < 0 {
		return fmt.Errorf("%w: live bytes negative (%d)", ErrCorrupt, c.liveBytes)
	}
	if live != c.liveBytes {
		return fmt.Errorf("%w: live bytes %d but records hold %d", ErrCorrupt, c.liveBytes, live)
	}
	return nil
}

// validCapacity reports whether capacity is initialCap times a power of two,
// or the MaxKeys clamp.
func (c *Cache) validCapacity(capacity int) bool {
	if c.maxKeys > 0 && capacity == c.maxKeys {
		return true
	}
	if capacity%c.initialCap != 0 {
		return false
	}
	return bits.OnesCount(uint(capacity/c.initialCap)) == 1
}

func (c *Cache) mustVerify() {
	if err := c.Verify(); err != nil {
		panic(err)
	}
}

func (c *Cache) mustValidKey(key Key) {
	if !c.validKey(key) {
		panic(fmt.Errorf("%w: %s", ErrInvalidKey, c.KeyName(key)))
	}
}

package cache

import "log/slog"

// find returns the slot index of key, or -1.
func (c *Cache) find(key Key) int {
	for i, k := range c.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// insert appends an empty slot for key, growing the table when it is full.
func (c *Cache) insert(key Key) (int, error) {
	n := len(c.keys)
	if c.maxKeys > 0 && n >= c.maxKeys {
		return -1, ErrTableFull
	}
	if n == cap(c.keys) {
		c.grow()
	}

	c.keys = append(c.keys, key)
	c.recs = append(c.recs, record{})
	return n, nil
}

// grow doubles the capacity of both slices, starting from initialCap. The
// table never shrinks.
func (c *Cache) grow() {
	newCap := cap(c.keys) * 2
	if newCap == 0 {
		newCap = c.initialCap
	}
	if c.maxKeys > 0 && newCap > c.maxKeys {
		newCap = c.maxKeys
	}

	keys := make([]Key, len(c.keys), newCap)
	copy(keys, c.keys)
	recs := make([]record, len(c.recs), newCap)
	copy(recs, c.recs)

	c.keys = keys
	c.recs = recs
	c.growths++

	if c.logEnabled(slog.LevelDebug) {
		c.log.Debug("key table grown", "capacity", newCap, "keys", len(keys))
	}
}

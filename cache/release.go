package cache

import "log/slog"

// Mark is the depth a frame was entered from. Release it when the frame
// unwinds.
type Mark struct {
	c     *Cache
	depth Depth
}

// Depth is the depth the frame was entered from.
func (m Mark) Depth() Depth { return m.depth }

// Release restores the cache to the mark's depth and releases every buffer
// stamped deeper than it.
func (m Mark) Release() {
	if m.c != nil {
		m.c.Leave(m.depth)
	}
}

// Enter opens a nested frame: the current depth is incremented and the Mark
// records the depth being left.
//
//	m := c.Enter()
//	defer m.Release()
func (c *Cache) Enter() Mark {
	m := Mark{c: c, depth: c.depth}
	c.depth++
	return m
}

// Leave sets the current depth to d and releases every buffer stamped deeper
// than d.
func (c *Cache) Leave(d Depth) {
	if invariantsEnabled && d > c.depth {
		panic("cache: Leave to depth deeper than current")
	}
	c.depth = d
	c.ReleaseBelow(d)
}

// Depth reports the current nesting depth.
func (c *Cache) Depth() Depth { return c.depth }

// ReleaseBelow releases the cached buffer of every key whose record is
// stamped deeper than boundary. Keys stay in the table and records at or
// above boundary are untouched.
func (c *Cache) ReleaseBelow(boundary Depth) {
	n, bytes := c.releaseWhere(func(r *record) bool { return r.depth > boundary })
	if n > 0 && c.logEnabled(slog.LevelDebug) {
		c.log.Debug("released cached buffers",
			"boundary", int(boundary), "buffers", n, "bytes", bytes, "live", c.liveBytes)
	}
}

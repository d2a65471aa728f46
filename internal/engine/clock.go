package engine

import "sync/atomic"

// Clock is the simulation tick counter shared by the engine and the
// scheduler. Only the engine advances it.
type Clock struct {
	tick atomic.Int64
}

// Now returns the current tick.
func (c *Clock) Now() int64 {
	return c.tick.Load()
}

// Set moves the clock to tick.
func (c *Clock) Set(tick int64) {
	c.tick.Store(tick)
}

package engine

import "sync/atomic"

// Clock is the per-session logical clock that stamps events.
//
// Seq numbers start at 1 and strictly increase. Wall-clock time is never
// used for ordering, so two runs of the same session produce the same seqs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next returns start+1.
// Used to continue a session whose events were already logged.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

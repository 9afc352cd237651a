package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps every transaction.
//
// All ordering in the ledger (history, reconciliation fairness) uses seq
// numbers from this clock, never wall-clock timestamps, so order is
// stable across hosts, clock skew, and restarts.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known position. Used at
// startup to continue from the highest seq already in the ledger.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, strictly increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

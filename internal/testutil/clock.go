// Package testutil provides deterministic test doubles shared across
// packages: a resettable wall clock and a fault-injecting store wrapper.
package testutil

import (
	"sync"
	"time"
)

// FixedTime is the pinned timestamp used wherever tests need stable
// wall-clock output (golden files, seeded fixtures).
var FixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// TickingClock returns FixedTime plus one second per call.
//
// Unlike time.Now it is deterministic, so repeated runs produce identical
// timestamps. Thread-safe.
type TickingClock struct {
	mu    sync.Mutex
	ticks int
}

// NewTickingClock creates a clock whose first Now returns FixedTime.
func NewTickingClock() *TickingClock {
	return &TickingClock{}
}

// Now returns the next deterministic timestamp.
func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := FixedTime.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock so the next Now returns FixedTime again.
func (c *TickingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}

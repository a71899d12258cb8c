package testutil

import (
	"sync"
	"time"
)

// Epoch is the time of the first tick of a DeterministicClock.
var Epoch = time.UnixMilli(1700000000000)

// DeterministicClock is a thread-safe clock for tests that advances one
// second on every Now call.
//
// Can be reset for test reuse, so the same scenario produces identical
// timestamps on every run.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a new deterministic clock.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{seq: 0}
}

// Now returns Epoch plus one second per previous call.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := At(c.seq)
	c.seq++
	return t
}

// Current returns the number of ticks handed out so far.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock. After Reset(), the next call to Now() returns Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// At returns the time of the given tick.
func At(tick int64) time.Time {
	return Epoch.Add(time.Duration(tick) * time.Second)
}

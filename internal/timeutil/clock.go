// Package timeutil provides the simulation tick clock and a testable
// abstraction over wall-clock time.
package timeutil

import (
	"sync"
	"time"
)

// SimClock is the discrete simulation clock, advanced explicitly by the
// stepping loop. Every agent reads the same tick index for one step.
type SimClock struct {
	tick   int64
	length float64
}

// NewSimClock returns a clock at tick zero with the given step length.
func NewSimClock(tickLength float64) *SimClock {
	return &SimClock{length: tickLength}
}

// Tick returns the current tick index.
func (c *SimClock) Tick() int64 { return c.tick }

// TickLength returns the step length in seconds.
func (c *SimClock) TickLength() float64 { return c.length }

// Seconds returns simulated elapsed time.
func (c *SimClock) Seconds() float64 { return float64(c.tick) * c.length }

// Advance moves the clock forward one tick and returns the new index.
func (c *SimClock) Advance() int64 {
	c.tick++
	return c.tick
}

// Set jumps to a tick index.
func (c *SimClock) Set(tick int64) { c.tick = tick }

// ElapsedSeconds converts a tick delta to seconds. Non-positive deltas count
// as one tick.
func ElapsedSeconds(from, to int64, tickLength float64) float64 {
	d := to - from
	if d < 1 {
		d = 1
	}
	return float64(d) * tickLength
}

// Clock provides an abstraction over wall-clock time for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock is a manually controlled clock for testing.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set sets the mock clock to a specific time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the mock clock forward by the given duration.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since returns the duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

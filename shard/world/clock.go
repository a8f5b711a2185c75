package world

import (
	"sync"
	"time"
)

// Clock is the per-world game-time scalar: a cyclic day-time value
// advanced each world tick by TickSpeed scaled to real elapsed time.
type Clock struct {
	mu        sync.Mutex
	time      float32
	tickSpeed float32
	last      time.Time
}

// NewClock constructs a Clock at the given initial time and tick speed.
// A negative tickSpeed is clamped to zero: tick speed is never negative.
func NewClock(initialTime, tickSpeed float32) *Clock {
	if tickSpeed < 0 {
		tickSpeed = 0
	}
	return &Clock{time: initialTime, tickSpeed: tickSpeed, last: time.Now()}
}

// Time returns the current day-time value.
func (c *Clock) Time() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

// TickSpeed returns the current tick-speed multiplier.
func (c *Clock) TickSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickSpeed
}

// SetTime overrides the current day-time value, used by on_config.
func (c *Clock) SetTime(t float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = t
}

// SetTickSpeed overrides the tick-speed multiplier, used by on_config. A
// negative value is rejected (the invariant is preserved rather than
// clamped, since on_config is expected to pass validated input).
func (c *Clock) SetTickSpeed(speed float32) {
	if speed < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickSpeed = speed
}

// Tick advances Time by TickSpeed scaled to the real elapsed time since
// the previous Tick call.
func (c *Clock) Tick() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsedMS := float32(now.Sub(c.last).Milliseconds())
	c.last = now
	c.time += c.tickSpeed * elapsedMS
}

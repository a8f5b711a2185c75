package world

import "testing"

func TestNewClockClampsNegativeTickSpeed(t *testing.T) {
	c := NewClock(0, -5)
	if got := c.TickSpeed(); got != 0 {
		t.Fatalf("TickSpeed() = %v, want 0", got)
	}
}

func TestSetTimeAndSetTickSpeed(t *testing.T) {
	c := NewClock(100, 1)
	c.SetTime(250)
	if got := c.Time(); got != 250 {
		t.Fatalf("Time() = %v, want 250", got)
	}
	c.SetTickSpeed(3.5)
	if got := c.TickSpeed(); got != 3.5 {
		t.Fatalf("TickSpeed() = %v, want 3.5", got)
	}
}

func TestSetTickSpeedRejectsNegative(t *testing.T) {
	c := NewClock(0, 2)
	c.SetTickSpeed(-1)
	if got := c.TickSpeed(); got != 2 {
		t.Fatalf("TickSpeed() = %v after rejected negative set, want unchanged 2", got)
	}
}

func TestTickAdvancesTimeProportionallyToTickSpeed(t *testing.T) {
	zero := NewClock(0, 0)
	zero.Tick()
	if got := zero.Time(); got != 0 {
		t.Fatalf("zero tick speed should never advance time, got %v", got)
	}

	moving := NewClock(0, 1000)
	moving.Tick()
	if got := moving.Time(); got < 0 {
		t.Fatalf("Time() went negative after Tick(): %v", got)
	}
}

package timeutil

import (
	"testing"
	"time"
)

func TestSimClock(t *testing.T) {
	c := NewSimClock(1.0 / 60)
	if c.Tick() != 0 {
		t.Fatalf("Tick() = %d, want 0", c.Tick())
	}
	for i := 0; i < 120; i++ {
		c.Advance()
	}
	if c.Tick() != 120 {
		t.Errorf("Tick() = %d, want 120", c.Tick())
	}
	if got := c.Seconds(); got < 1.999999 || got > 2.000001 {
		t.Errorf("Seconds() = %v, want 2", got)
	}
	c.Set(6)
	if c.Advance() != 7 {
		t.Errorf("Advance after Set(6) = %d, want 7", c.Tick())
	}
	if c.TickLength() != 1.0/60 {
		t.Errorf("TickLength() = %v", c.TickLength())
	}
}

func TestElapsedSeconds(t *testing.T) {
	tests := []struct {
		from, to int64
		want     float64
	}{
		{0, 1, 0.5},
		{3, 9, 3},
		{5, 5, 0.5},
		{9, 3, 0.5},
	}
	for _, tt := range tests {
		if got := ElapsedSeconds(tt.from, tt.to, 0.5); got != tt.want {
			t.Errorf("ElapsedSeconds(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}
	c.Advance(90 * time.Second)
	if d := c.Since(start); d != 90*time.Second {
		t.Errorf("Since() = %v, want 90s", d)
	}
	c.Set(start)
	if d := c.Since(start); d != 0 {
		t.Errorf("Since() after Set = %v, want 0", d)
	}
}

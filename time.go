package particles

import (
	"time"
)

// Time is the frame record handed to every Update call.
type Time struct {
	Now time.Duration // elapsed since the clock started
	Dt  time.Duration
}

func (t Time) Seconds() float64   { return t.Now.Seconds() }
func (t Time) DtSeconds() float64 { return t.Dt.Seconds() }

// Clock turns wall-clock ticks or fixed steps into Time records.
type Clock struct {
	start   time.Time
	last    time.Time
	current Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{start: start, last: start}
}

func (c *Clock) Tick(now time.Time) Time {
	c.current = Time{
		Now: now.Sub(c.start),
		Dt:  now.Sub(c.last),
	}
	c.last = now
	return c.current
}

// Advance steps the clock by a fixed dt.
func (c *Clock) Advance(dt time.Duration) Time {
	return c.Tick(c.last.Add(dt))
}

func (c *Clock) Current() Time { return c.current }

// Package frame provides the frame clock that paces the trial loop.
package frame

import "time"

// Clock measures tick durations and throttles the loop to a frame rate.
type Clock interface {
	// Elapsed returns the time since the previous Elapsed call.
	Elapsed() time.Duration
	// Tick blocks until the next frame boundary at fps frames per second.
	Tick(fps int)
}

// WallClock is a Clock backed by the system monotonic clock.
type WallClock struct {
	now       func() time.Time
	sleep     func(time.Duration)
	lastQuery time.Time
	lastTick  time.Time
}

// NewWallClock returns a WallClock starting now.
func NewWallClock() *WallClock {
	c := &WallClock{now: time.Now, sleep: time.Sleep}
	start := c.now()
	c.lastQuery = start
	c.lastTick = start
	return c
}

// Elapsed returns the time since the previous Elapsed call.
func (c *WallClock) Elapsed() time.Duration {
	now := c.now()
	d := now.Sub(c.lastQuery)
	c.lastQuery = now
	return d
}

// Tick sleeps for whatever is left of the current frame. A frame that already
// overran its budget does not sleep.
func (c *WallClock) Tick(fps int) {
	if fps > 0 {
		budget := time.Second / time.Duration(fps)
		if spent := c.now().Sub(c.lastTick); spent < budget {
			c.sleep(budget - spent)
		}
	}
	c.lastTick = c.now()
}

// StepClock is a deterministic Clock where every tick lasts Step.
type StepClock struct {
	Step  time.Duration
	ticks int
}

// NewStepClock returns a StepClock with the given tick length.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{Step: step}
}

// Elapsed returns Step.
func (c *StepClock) Elapsed() time.Duration {
	return c.Step
}

// Tick counts the frame without sleeping.
func (c *StepClock) Tick(int) {
	c.ticks++
}

// Ticks returns the number of frames advanced.
func (c *StepClock) Ticks() int {
	return c.ticks
}

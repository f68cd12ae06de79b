// Package sim is a deterministic stand-in for the robot: a virtual clock,
// differential-drive kinematics and a few courses with walls, floor
// colours and a beam profile. A World implements every collaborator in
// pkg/robot, so levels run unchanged against it.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeLimit is returned by Sleep once the virtual clock passes its limit.
var ErrTimeLimit = errors.New("simulation time limit reached")

// Epoch is the virtual start time.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Clock is a virtual clock. Sleep advances time immediately and calls the
// step hook in fixed increments, so the world integrates motion while the
// caller "waits".
type Clock struct {
	mu    sync.Mutex
	now   time.Time
	limit time.Time
	step  time.Duration
	hook  func(dt time.Duration)

	// Pace, when positive, also blocks Sleep for d/Pace of wall time so a
	// run can be watched.
	Pace float64
}

// NewClock returns a clock at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch, step: 5 * time.Millisecond}
}

// Now returns the virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Elapsed returns the virtual time since Epoch.
func (c *Clock) Elapsed() time.Duration {
	return c.Now().Sub(Epoch)
}

// SetLimit makes Sleep fail once d of virtual time has passed. Zero
// disables the limit.
func (c *Clock) SetLimit(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d == 0 {
		c.limit = time.Time{}
		return
	}
	c.limit = Epoch.Add(d)
}

func (c *Clock) onStep(fn func(dt time.Duration)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Sleep advances the clock by d.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.expired() {
		return ErrTimeLimit
	}
	if c.Pace > 0 && d > 0 {
		t := time.NewTimer(time.Duration(float64(d) / c.Pace))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	for d > 0 {
		dt := min(d, c.step)
		c.mu.Lock()
		c.now = c.now.Add(dt)
		hook := c.hook
		c.mu.Unlock()
		if hook != nil {
			hook(dt)
		}
		d -= dt
	}
	return nil
}

func (c *Clock) expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.limit.IsZero() && c.now.After(c.limit)
}

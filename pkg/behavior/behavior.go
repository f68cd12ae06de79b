// Package behavior contains the level state machines and the runner that
// drives them.
//
// A behaviour never touches hardware directly. Each tick it is handed the
// sensors for that tick and answers with an Action (a short list of timed
// motion and light steps) and an Outcome. The Runner executes the action,
// consults the pause supervisor and paces the loop.
package behavior

import (
	"time"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// Outcome of a tick or of a whole run.
type Outcome int

const (
	Continue Outcome = iota
	Success
	Failure
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Senses gives a behaviour this tick's sensor readings. Each reading is
// taken at most once per tick; failed reads come back as absent values.
type Senses interface {
	Distances() sensor.DistanceFrame
	Color() color.RGB
	Pitch() sensor.PitchSample
	Bumped() bool
	Line() (left, center, right float64, ok bool)
}

// Behavior is one level.
type Behavior interface {
	Name() string
	// Interval is the pause between ticks.
	Interval() time.Duration
	// Start is called once after the operator pressed OK.
	Start(now time.Time, s Senses) Action
	// Tick consumes one sample. Any outcome other than Continue ends the run.
	Tick(now time.Time, s Senses) (Action, Outcome)
	// Resume returns the motion to re-issue after a pause.
	Resume() Action
	// Phase names the current state for telemetry.
	Phase() string
}

// pausedLighter is implemented by behaviours that show a different colour
// while paused.
type pausedLighter interface {
	PausedLight() robot.Light
}

// Wheels is a wheel speed pair in level units.
type Wheels struct {
	Left, Right float64
}

// Step is one actuation: optionally change the light, then either stop or
// command wheel speeds, then hold for a while.
type Step struct {
	Light    robot.Light
	SetLight bool
	Wheels   *Wheels
	Stop     bool
	Hold     time.Duration
}

// For returns s holding for d.
func (s Step) For(d time.Duration) Step {
	s.Hold = d
	return s
}

// Action is a sequence of steps executed within one tick.
type Action []Step

// Duration is the total hold time of the action.
func (a Action) Duration() time.Duration {
	var d time.Duration
	for _, s := range a {
		d += s.Hold
	}
	return d
}

// Final returns the last commanded wheel speeds, if any step commands them.
func (a Action) Final() (Wheels, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i].Stop:
			return Wheels{}, true
		case a[i].Wheels != nil:
			return *a[i].Wheels, true
		}
	}
	return Wheels{}, false
}

// Drive commands wheel speeds.
func Drive(left, right float64) Step {
	return Step{Wheels: &Wheels{Left: left, Right: right}}
}

// Straight drives both wheels at v.
func Straight(v float64) Step {
	return Drive(v, v)
}

// Pivot turns in place; positive v turns right (clockwise).
func Pivot(v float64) Step {
	return Drive(v, -v)
}

// Halt commands zero speed and brakes.
func Halt() Step {
	return Step{Stop: true}
}

// Lit changes the light.
func Lit(l robot.Light) Step {
	return Step{Light: l, SetLight: true}
}

// Wait holds without changing anything.
func Wait(d time.Duration) Step {
	return Step{Hold: d}
}

// Blink alternates two lights n times.
func Blink(n int, on, off time.Duration, a, b robot.Light) Action {
	act := make(Action, 0, 2*n)
	for i := 0; i < n; i++ {
		act = append(act, Lit(a).For(on), Lit(b).For(off))
	}
	return act
}

// Then concatenates actions.
func (a Action) Then(more ...Step) Action {
	return append(a, more...)
}

package behavior

import (
	"math"
	"time"

	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// The demos run until the operator stops the process. They share the
// runner and pause supervisor with the levels.

// BlinkDemo flashes the light red, one second on and one off.
type BlinkDemo struct {
	Period time.Duration
}

func NewBlinkDemo() *BlinkDemo {
	return &BlinkDemo{Period: time.Second}
}

func (b *BlinkDemo) Name() string                   { return "make_it_blink" }
func (b *BlinkDemo) Interval() time.Duration        { return 0 }
func (b *BlinkDemo) Phase() string                  { return "blink" }
func (b *BlinkDemo) Start(time.Time, Senses) Action { return nil }
func (b *BlinkDemo) Resume() Action                 { return nil }

func (b *BlinkDemo) Tick(time.Time, Senses) (Action, Outcome) {
	return Blink(1, b.Period, b.Period, robot.LightWarn, robot.LightOff), Continue
}

// DrivePattern repeats forward, left, right and back, two seconds each.
type DrivePattern struct {
	Leg  time.Duration
	step int
	name string
}

func NewDrivePattern() *DrivePattern {
	return &DrivePattern{Leg: 2 * time.Second, name: "idle"}
}

var drivePattern = []struct {
	name   string
	wheels Wheels
}{
	{"forward", Wheels{10, 10}},
	{"left", Wheels{0, 20}},
	{"right", Wheels{20, 0}},
	{"back", Wheels{-10, -10}},
}

func (d *DrivePattern) Name() string                   { return "make_it_move" }
func (d *DrivePattern) Interval() time.Duration        { return 0 }
func (d *DrivePattern) Phase() string                  { return d.name }
func (d *DrivePattern) Start(time.Time, Senses) Action { return nil }
func (d *DrivePattern) Resume() Action                 { return nil }

func (d *DrivePattern) Tick(time.Time, Senses) (Action, Outcome) {
	w := drivePattern[d.step].wheels
	d.name = drivePattern[d.step].name
	d.step = (d.step + 1) % len(drivePattern)
	return Action{Drive(w.Left, w.Right).For(d.Leg)}, Continue
}

// LineCentroid returns the line position under the three reflectance
// sensors, 0 when centred, positive when the line is to the left.
func LineCentroid(left, center, right float64) float64 {
	sum := left + center + right
	if sum == 0 {
		return 0
	}
	return 2 - (left+2*center+3*right)/sum
}

// LineFollower is a proportional line follower on the reflectance sensors.
type LineFollower struct {
	Kp       float64
	Base     float64
	Deadband float64
	Period   time.Duration

	cmd   Wheels
	phase string
}

func NewLineFollower() *LineFollower {
	return &LineFollower{Kp: 50, Base: 30, Deadband: 0.2, Period: 100 * time.Millisecond, phase: "idle"}
}

func (l *LineFollower) Name() string             { return "line_follower" }
func (l *LineFollower) Interval() time.Duration  { return l.Period }
func (l *LineFollower) Phase() string            { return l.phase }
func (l *LineFollower) PausedLight() robot.Light { return robot.LightWait }

func (l *LineFollower) Start(time.Time, Senses) Action {
	return Action{Lit(robot.LightGo)}
}

func (l *LineFollower) Resume() Action {
	return Action{Drive(l.cmd.Left, l.cmd.Right)}
}

func (l *LineFollower) Tick(_ time.Time, s Senses) (Action, Outcome) {
	left, center, right, ok := s.Line()
	if !ok {
		l.phase = "lost"
		l.cmd = Wheels{}
		return Action{Lit(robot.LightWarn), Halt()}, Continue
	}
	control := LineCentroid(left, center, right) * l.Kp
	l.cmd = Wheels{l.Base - control, l.Base + control}

	light := robot.LightGo
	l.phase = "centered"
	if math.Abs(control) > l.Deadband {
		light = robot.LightWarn
		l.phase = "correcting"
	}
	return Action{Lit(light), Drive(l.cmd.Left, l.cmd.Right)}, Continue
}

// HandFollower keeps a fixed distance to whatever is in front of the
// centre sensor, driving back and forth proportionally.
type HandFollower struct {
	Reference float64
	Gain      float64
	Period    time.Duration

	speed float64
}

func NewHandFollower() *HandFollower {
	return &HandFollower{Reference: 10, Gain: 10, Period: 100 * time.Millisecond}
}

func (h *HandFollower) Name() string             { return "hand_follower" }
func (h *HandFollower) Interval() time.Duration  { return h.Period }
func (h *HandFollower) PausedLight() robot.Light { return robot.LightGo }

func (h *HandFollower) Phase() string {
	switch {
	case h.speed > 0:
		return "approach"
	case h.speed < 0:
		return "retreat"
	default:
		return "hold"
	}
}

func (h *HandFollower) Start(time.Time, Senses) Action {
	return Action{Lit(robot.LightOff)}
}

func (h *HandFollower) Resume() Action {
	return Action{Lit(robot.LightOff), Straight(h.speed)}
}

func (h *HandFollower) Tick(_ time.Time, s Senses) (Action, Outcome) {
	h.speed = 0
	if c, ok := s.Distances().Get(sensor.Center); ok {
		h.speed = h.Gain * (c - h.Reference)
	}
	return Action{Straight(h.speed)}, Continue
}

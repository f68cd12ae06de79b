package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// Kinematics and sensor geometry.
const (
	CmPerUnit  = 0.5 // wheel speed unit in cm/s
	TrackWidth = 9.0 // cm between the wheels
	NoEcho     = 300 // cm reported when a ray hits nothing
	BumpCM     = 3.0
	gravity    = 9.81
)

// sensorAngles are the distance zone headings relative to the robot, in
// channel order L, CL, C, CR, R.
var sensorAngles = [sensor.NumChannels]float64{40, 20, 0, -20, -40}

// Button identifies a touch pad.
type Button int

const (
	OK Button = iota
	Cancel
)

type press struct {
	button Button
	from   time.Duration
	to     time.Duration
}

// Pose is the robot position in cm and heading in radians, 0 along +x and
// counter-clockwise positive.
type Pose struct {
	Pos     r2.Point
	Heading float64
}

// World is a simulated robot on a course.
type World struct {
	Clock  *Clock
	Course *Course

	// InvertPitch mirrors the robot config; the IMU then reports the
	// negated pitch as a reversed board would.
	InvertPitch bool

	// Degradations.
	NoOrientation bool
	NoGyro        bool
	NoColor       bool
	NoDistance    bool

	mu        sync.Mutex
	pose      Pose
	left      float64
	right     float64
	pitch     float64
	pitchRate float64
	yawRate   float64
	odometer  float64
	presses   []press
	lights    []robot.Light
}

// NewWorld places a robot at the origin facing +x.
func NewWorld(c *Course) *World {
	w := &World{Clock: NewClock(), Course: c, InvertPitch: true}
	w.Clock.onStep(w.step)
	return w
}

// Robot wires the world into a robot.
func (w *World) Robot() *robot.Robot {
	return &robot.Robot{
		Distance:    w,
		Color:       w,
		Line:        w,
		IMU:         w,
		Buttons:     w,
		Bumper:      w,
		Drive:       w,
		Indicator:   w,
		Clock:       w.Clock,
		InvertPitch: w.InvertPitch,
	}
}

// Place moves the robot.
func (w *World) Place(x, y, headingDeg float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pose = Pose{Pos: r2.Point{X: x, Y: y}, Heading: headingDeg * math.Pi / 180}
	w.pitch = w.Course.SlopeAt(w.pose.Pos) * math.Cos(w.pose.Heading)
}

// Pose returns the current pose.
func (w *World) Pose() Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pose
}

// Odometer returns the distance driven by the robot centre, in cm.
func (w *World) Odometer() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.odometer
}

// Wheels returns the commanded wheel speeds.
func (w *World) Wheels() (left, right float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.left, w.right
}

// Lights returns every light that was set, in order.
func (w *World) Lights() []robot.Light {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]robot.Light(nil), w.lights...)
}

// Press holds button b from at to at+d, relative to Epoch.
func (w *World) Press(b Button, at, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.presses = append(w.presses, press{button: b, from: at, to: at + d})
}

// AutoStart presses OK shortly after Epoch so a level starts immediately.
func (w *World) AutoStart() {
	w.Press(OK, 100*time.Millisecond, 200*time.Millisecond)
}

func (w *World) step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sec := dt.Seconds()
	vl, vr := w.left*CmPerUnit, w.right*CmPerUnit
	v := (vl + vr) / 2
	omega := (vr - vl) / TrackWidth

	h := w.pose.Heading + omega*sec/2
	delta := r2.Point{X: math.Cos(h), Y: math.Sin(h)}.Mul(v * sec)
	w.pose.Pos = w.pose.Pos.Add(delta)
	w.pose.Heading = math.Mod(w.pose.Heading+omega*sec, 2*math.Pi)
	w.odometer += math.Abs(v * sec)

	pitch := w.Course.SlopeAt(w.pose.Pos) * math.Cos(w.pose.Heading)
	w.pitchRate = (pitch - w.pitch) / sec
	w.pitch = pitch
	w.yawRate = omega * 180 / math.Pi
}

func (w *World) pressed(b Button) bool {
	t := w.Clock.Elapsed()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.presses {
		if p.button == b && t >= p.from && t < p.to {
			return true
		}
	}
	return false
}

func (w *World) ray(angleDeg float64) float64 {
	h := w.pose.Heading + angleDeg*math.Pi/180
	dir := r2.Point{X: math.Cos(h), Y: math.Sin(h)}
	if d, ok := w.Course.Cast(w.pose.Pos, dir); ok && d < NoEcho {
		return d
	}
	return NoEcho
}

func (w *World) ReadDistances(context.Context) (sensor.RawDistances, error) {
	if w.NoDistance {
		return sensor.RawDistances{}, fmt.Errorf("read distances: %w", robot.ErrUnsupported)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	vals := make([]float64, sensor.NumChannels)
	for i, a := range sensorAngles {
		vals[i] = math.Round(w.ray(a))
	}
	return sensor.RawDistances{Values: vals}, nil
}

// ReadColor reports the floor colour on a 0-255 scale.
func (w *World) ReadColor(context.Context) (r, g, b float64, err error) {
	if w.NoColor {
		return 0, 0, 0, fmt.Errorf("read color: %w", robot.ErrUnsupported)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.Course.FloorAt(w.pose.Pos)
	return c.R * 255, c.G * 255, c.B * 255, nil
}

func (w *World) ReadLine(context.Context) (left, center, right float64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	at := func(side float64) float64 {
		h := w.pose.Heading
		fwd := r2.Point{X: math.Cos(h), Y: math.Sin(h)}
		p := w.pose.Pos.Add(fwd.Mul(3)).Add(fwd.Ortho().Mul(side))
		return w.Course.Reflectance(p)
	}
	return at(1.5), at(0), at(-1.5), nil
}

func (w *World) rawPitch() float64 {
	if w.InvertPitch {
		return -w.pitch
	}
	return w.pitch
}

func (w *World) ReadOrientation(context.Context) (roll, pitch, yaw float64, err error) {
	if w.NoOrientation {
		return 0, 0, 0, robot.ErrUnsupported
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return 0, w.rawPitch(), w.pose.Heading * 180 / math.Pi, nil
}

func (w *World) ReadAcceleration(context.Context) (r3.Vector, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rad := w.rawPitch() * math.Pi / 180
	return r3.Vector{X: -math.Sin(rad) * gravity, Z: math.Cos(rad) * gravity}, nil
}

func (w *World) ReadAngularRate(context.Context) (r3.Vector, error) {
	if w.NoGyro {
		return r3.Vector{}, robot.ErrUnsupported
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return r3.Vector{Y: w.pitchRate, Z: w.yawRate}, nil
}

func (w *World) Confirm(context.Context) (bool, error) { return w.pressed(OK), nil }
func (w *World) Cancel(context.Context) (bool, error)  { return w.pressed(Cancel), nil }

func (w *World) Bumped(context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ray(0) < BumpCM, nil
}

func (w *World) SetWheelSpeeds(_ context.Context, left, right float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.left, w.right = left, right
	return nil
}

func (w *World) Brake(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.left, w.right = 0, 0
	return nil
}

func (w *World) SetIndicator(_ context.Context, l robot.Light) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := len(w.lights); n == 0 || w.lights[n-1] != l {
		w.lights = append(w.lights, l)
	}
	return nil
}

// Package robot defines the hardware contracts the levels drive, and bundles
// them into a Robot with failure-tolerant helpers.
//
// Every sensor read may fail; the helpers turn failures into "absent"
// values (empty distance frame, black colour, level pitch, button not
// pressed) and every actuation failure is logged and otherwise ignored.
package robot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang/geo/r3"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/logx"
	"github.com/gwillem/alvik/pkg/sensor"
)

// ErrUnsupported is returned by optional sensor methods the hardware lacks.
var ErrUnsupported = errors.New("unsupported")

// DistanceSensor reads the five-zone time-of-flight array.
type DistanceSensor interface {
	ReadDistances(ctx context.Context) (sensor.RawDistances, error)
}

// ColorSensor reads the floor colour sensor, on an unspecified scale.
type ColorSensor interface {
	ReadColor(ctx context.Context) (r, g, b float64, err error)
}

// LineSensor reads the three reflectance sensors (left, center, right).
type LineSensor interface {
	ReadLine(ctx context.Context) (left, center, right float64, err error)
}

// Inertial provides the IMU. Each method may return ErrUnsupported.
type Inertial interface {
	ReadOrientation(ctx context.Context) (roll, pitch, yaw float64, err error)
	ReadAcceleration(ctx context.Context) (r3.Vector, error)
	ReadAngularRate(ctx context.Context) (r3.Vector, error)
}

// Buttons are the OK (confirm) and CANCEL touch pads.
type Buttons interface {
	Confirm(ctx context.Context) (bool, error)
	Cancel(ctx context.Context) (bool, error)
}

// Bumper reports front contact.
type Bumper interface {
	Bumped(ctx context.Context) (bool, error)
}

// Drive commands the two wheels.
type Drive interface {
	SetWheelSpeeds(ctx context.Context, left, right float64) error
	Brake(ctx context.Context) error
}

// Indicator shows a status light.
type Indicator interface {
	SetIndicator(ctx context.Context, l Light) error
}

// Clock paces the sample loop.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Robot bundles the collaborators a level needs. Nil sensors are treated
// as permanently unavailable; Drive and Clock are required.
type Robot struct {
	Distance  DistanceSensor
	Color     ColorSensor
	Line      LineSensor
	IMU       Inertial
	Buttons   Buttons
	Bumper    Bumper
	Drive     Drive
	Indicator Indicator
	Clock     Clock

	// InvertPitch flips the pitch sign for the board's mounting orientation.
	InvertPitch bool

	Logger *slog.Logger
}

func (r *Robot) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logx.L()
}

// Distances reads and normalises the distance array. A failed read yields a
// frame with every channel absent.
func (r *Robot) Distances(ctx context.Context) sensor.DistanceFrame {
	if r.Distance == nil {
		return sensor.DistanceFrame{}
	}
	raw, err := r.Distance.ReadDistances(ctx)
	if err != nil {
		r.log().Debug("distance read failed", "err", err)
		return sensor.DistanceFrame{}
	}
	return sensor.NormalizeDistances(raw)
}

// RGB reads the floor colour, falling back to the line sensors and finally
// to black.
func (r *Robot) RGB(ctx context.Context) color.RGB {
	if r.Color != nil {
		red, green, blue, err := r.Color.ReadColor(ctx)
		if err == nil {
			return sensor.NormalizeColor(red, green, blue)
		}
		r.log().Debug("color read failed", "err", err)
	}
	if l, c, rr, ok := r.LineValues(ctx); ok {
		return sensor.NormalizeLine(l, c, rr)
	}
	return color.Black
}

// LineValues reads the raw line sensors.
func (r *Robot) LineValues(ctx context.Context) (left, center, right float64, ok bool) {
	if r.Line == nil {
		return 0, 0, 0, false
	}
	left, center, right, err := r.Line.ReadLine(ctx)
	if err != nil {
		r.log().Debug("line read failed", "err", err)
		return 0, 0, 0, false
	}
	return left, center, right, true
}

// Pitch estimates pitch from whatever inertial data is readable.
func (r *Robot) Pitch(ctx context.Context) sensor.PitchSample {
	var src sensor.PitchSource
	if r.IMU != nil {
		if _, p, _, err := r.IMU.ReadOrientation(ctx); err == nil {
			src.Orientation, src.HasOrientation = p, true
		}
		if !src.HasOrientation {
			if a, err := r.IMU.ReadAcceleration(ctx); err == nil {
				src.Accel, src.HasAccel = a, true
			}
		}
		if g, err := r.IMU.ReadAngularRate(ctx); err == nil {
			src.Gyro, src.HasGyro = g, true
		}
	}
	return sensor.EstimatePitch(src, r.InvertPitch)
}

// ConfirmPressed reports the OK pad; read failures count as released.
func (r *Robot) ConfirmPressed(ctx context.Context) bool {
	if r.Buttons == nil {
		return false
	}
	ok, err := r.Buttons.Confirm(ctx)
	return err == nil && ok
}

// CancelPressed reports the CANCEL pad; read failures count as released.
func (r *Robot) CancelPressed(ctx context.Context) bool {
	if r.Buttons == nil {
		return false
	}
	ok, err := r.Buttons.Cancel(ctx)
	return err == nil && ok
}

// Bumped reports front contact; failures count as no contact.
func (r *Robot) Bumped(ctx context.Context) bool {
	if r.Bumper == nil {
		return false
	}
	hit, err := r.Bumper.Bumped(ctx)
	return err == nil && hit
}

// SetSpeeds commands both wheels.
func (r *Robot) SetSpeeds(ctx context.Context, left, right float64) {
	if err := r.Drive.SetWheelSpeeds(ctx, left, right); err != nil {
		r.log().Warn("set wheel speeds", "left", left, "right", right, "err", err)
	}
}

// Stop commands zero speed and engages the brake.
func (r *Robot) Stop(ctx context.Context) {
	r.SetSpeeds(ctx, 0, 0)
	if err := r.Drive.Brake(ctx); err != nil {
		r.log().Warn("brake", "err", err)
	}
}

// Brake engages the brake without changing the commanded speed.
func (r *Robot) Brake(ctx context.Context) {
	if err := r.Drive.Brake(ctx); err != nil {
		r.log().Warn("brake", "err", err)
	}
}

// Indicate sets the status light; failures are ignored.
func (r *Robot) Indicate(ctx context.Context, l Light) {
	if r.Indicator == nil {
		return
	}
	_ = r.Indicator.SetIndicator(ctx, l)
}

// Now returns the robot clock time.
func (r *Robot) Now() time.Time {
	return r.Clock.Now()
}

// Sleep waits on the robot clock.
func (r *Robot) Sleep(ctx context.Context, d time.Duration) error {
	return r.Clock.Sleep(ctx, d)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

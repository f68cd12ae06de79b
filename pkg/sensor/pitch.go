package sensor

import (
	"math"

	"github.com/golang/geo/r3"
)

// PitchSample is one inertial observation: pitch in degrees (positive = nose
// up after axis correction) and, when available, angular rates in deg/s.
type PitchSample struct {
	Pitch   float64
	Gyro    r3.Vector
	HasGyro bool
}

// GyroSum returns |gx|+|gy|+|gz|, or 0 without gyro data.
func (s PitchSample) GyroSum() float64 {
	if !s.HasGyro {
		return 0
	}
	a := s.Gyro.Abs()
	return a.X + a.Y + a.Z
}

// PitchFromAccel derives pitch in degrees from an acceleration vector using
// the two-axis arctangent.
func PitchFromAccel(a r3.Vector) float64 {
	return math.Atan2(-a.X, math.Hypot(a.Y, a.Z)) * 180 / math.Pi
}

// PitchSource carries whichever raw inertial inputs could be read this tick.
type PitchSource struct {
	Orientation    float64 // pitch from the fused orientation, degrees
	HasOrientation bool
	Accel          r3.Vector
	HasAccel       bool
	Gyro           r3.Vector
	HasGyro        bool
}

// EstimatePitch prefers the orientation reading, falls back to the
// accelerometer and finally to level (0). invert flips the sign for boards
// mounted upside down relative to the drive direction.
func EstimatePitch(src PitchSource, invert bool) PitchSample {
	var p float64
	switch {
	case src.HasOrientation:
		p = src.Orientation
	case src.HasAccel:
		p = PitchFromAccel(src.Accel)
	}
	if invert {
		p = -p
	}
	return PitchSample{Pitch: p, Gyro: src.Gyro, HasGyro: src.HasGyro}
}

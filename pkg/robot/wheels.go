package robot

import "math"

// WheelName identifies a drive wheel.
type WheelName string

const (
	LeftWheel  WheelName = "left"
	RightWheel WheelName = "right"
)

// AllWheels returns the wheel names in servo order.
func AllWheels() []WheelName {
	return []WheelName{LeftWheel, RightWheel}
}

// MaxVelocity is the largest velocity (steps/s) sent to an STS servo.
const MaxVelocity = 3000

// Velocity converts a level speed for the named wheel into a signed servo
// velocity. The right servo is mounted mirrored, so its sign is flipped;
// trims scale each wheel by (1 + trim).
func (c DriveConfig) Velocity(wheel WheelName, speed float64) int {
	trim := c.TrimLeft
	if wheel == RightWheel {
		trim = c.TrimRight
	}
	v := speed * (1 + trim) * c.StepsPerUnit
	if c.Reverse {
		v = -v
	}
	if wheel == RightWheel {
		v = -v
	}
	v = math.Max(-MaxVelocity, math.Min(MaxVelocity, v))
	return int(math.Round(v))
}

// Speed is the inverse of Velocity, ignoring clamping.
func (c DriveConfig) Speed(wheel WheelName, velocity int) float64 {
	trim := c.TrimLeft
	if wheel == RightWheel {
		trim = c.TrimRight
	}
	scale := (1 + trim) * c.StepsPerUnit
	if scale == 0 {
		return 0
	}
	v := float64(velocity)
	if c.Reverse {
		v = -v
	}
	if wheel == RightWheel {
		v = -v
	}
	return v / scale
}

// ID returns the servo ID of the named wheel.
func (c DriveConfig) ID(wheel WheelName) int {
	if wheel == RightWheel {
		return c.RightID
	}
	return c.LeftID
}

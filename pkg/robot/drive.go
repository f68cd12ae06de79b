package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// WheelDrive drives two feetech STS servos configured for continuous
// rotation (wheel mode).
type WheelDrive struct {
	bus    *feetech.Bus
	wheels map[WheelName]*feetech.Servo
	config DriveConfig
}

var _ Drive = (*WheelDrive)(nil)

// NewWheelDrive opens the bus and locates both wheel servos.
func NewWheelDrive(ctx context.Context, cfg DriveConfig) (*WheelDrive, error) {
	// Open serial bus
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	lo, hi := cfg.LeftID, cfg.RightID
	if lo > hi {
		lo, hi = hi, lo
	}
	found, err := bus.Scan(scanCtx, lo, hi)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan wheels: %w", err)
	}

	wheels := make(map[WheelName]*feetech.Servo, 2)
	for _, name := range AllWheels() {
		id := cfg.ID(name)
		for _, s := range found {
			if s.ID == id {
				wheels[name] = feetech.NewServo(bus, s.ID, s.Model)
				break
			}
		}
		if wheels[name] == nil {
			bus.Close()
			return nil, fmt.Errorf("%s wheel servo %d not found on %s", name, id, cfg.Port)
		}
	}

	return &WheelDrive{
		bus:    bus,
		wheels: wheels,
		config: cfg,
	}, nil
}

// Close stops the wheels, releases torque and closes the bus.
func (d *WheelDrive) Close() error {
	ctx := context.Background()
	_ = d.SetWheelSpeeds(ctx, 0, 0)
	_ = d.Disable(ctx)
	return d.bus.Close()
}

// Enable enables torque on both wheels.
func (d *WheelDrive) Enable(ctx context.Context) error {
	for name, s := range d.wheels {
		if err := s.Enable(ctx); err != nil {
			return fmt.Errorf("enable %s wheel: %w", name, err)
		}
	}
	return nil
}

// Disable releases torque so the robot can be pushed by hand.
func (d *WheelDrive) Disable(ctx context.Context) error {
	for name, s := range d.wheels {
		if err := s.Disable(ctx); err != nil {
			return fmt.Errorf("disable %s wheel: %w", name, err)
		}
	}
	return nil
}

// SetWheelSpeeds commands both wheel velocities in level speed units.
func (d *WheelDrive) SetWheelSpeeds(ctx context.Context, left, right float64) error {
	speeds := map[WheelName]float64{LeftWheel: left, RightWheel: right}
	for _, name := range AllWheels() {
		v := d.config.Velocity(name, speeds[name])
		if err := d.wheels[name].SetVelocity(ctx, v); err != nil {
			return fmt.Errorf("set %s velocity: %w", name, err)
		}
	}
	return nil
}

// Brake holds both wheels at zero velocity with torque on.
func (d *WheelDrive) Brake(ctx context.Context) error {
	for _, name := range AllWheels() {
		if err := d.wheels[name].SetVelocity(ctx, 0); err != nil {
			return fmt.Errorf("brake %s: %w", name, err)
		}
	}
	return d.Enable(ctx)
}

// Speeds reads back both wheel velocities in level speed units.
func (d *WheelDrive) Speeds(ctx context.Context) (left, right float64, err error) {
	out := make(map[WheelName]float64, 2)
	for _, name := range AllWheels() {
		v, err := d.wheels[name].Velocity(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("read %s velocity: %w", name, err)
		}
		out[name] = d.config.Speed(name, v)
	}
	return out[LeftWheel], out[RightWheel], nil
}

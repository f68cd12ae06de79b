package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gwillem/alvik/pkg/level"
	"github.com/gwillem/alvik/pkg/link"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sim"
)

// session is a connected robot, real or simulated.
type session struct {
	robot *robot.Robot
	world *sim.World
	close func()
}

func loadConfig() (level.Config, error) {
	cfg, err := level.LoadConfig(opts.Config)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", opts.Config, err)
	}
	return cfg, nil
}

// openHardware connects the wheel servos and the sensor link.
func openHardware(ctx context.Context, cfg level.Config, logger *slog.Logger) (*session, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("robot not configured, run 'alvik setup' first")
	}

	drive, err := robot.NewWheelDrive(ctx, cfg.Drive)
	if err != nil {
		return nil, fmt.Errorf("connect wheels: %w", err)
	}
	if err := drive.Enable(ctx); err != nil {
		drive.Close()
		return nil, err
	}

	lnk, err := link.Open(cfg.Link)
	if err != nil {
		drive.Close()
		return nil, err
	}
	linkCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := lnk.Run(linkCtx); err != nil && linkCtx.Err() == nil {
			logger.Warn("sensor link stopped", "err", err)
		}
	}()

	r := &robot.Robot{
		Distance:    lnk,
		Color:       lnk,
		Line:        lnk,
		IMU:         lnk,
		Buttons:     lnk,
		Bumper:      lnk,
		Drive:       drive,
		Indicator:   lnk,
		Clock:       robot.SystemClock{},
		InvertPitch: cfg.InvertPitch,
		Logger:      logger,
	}
	return &session{
		robot: r,
		close: func() {
			cancel()
			lnk.Close()
			drive.Close()
		},
	}, nil
}

// courseFor picks the simulated course that fits a level.
func courseFor(key string) *sim.Course {
	switch key {
	case "level_1_no_way_out":
		return sim.Corridor(40, 120)
	case "level_2_perfect_balance":
		return sim.Beam()
	case "level_3_wrong_exit":
		return sim.TileStrip(10, sim.Red, sim.Red, sim.Green, sim.Red)
	case "line_follower":
		return sim.LineTrack()
	case "hand_follower":
		c := sim.OpenField()
		c.Walls = []sim.Segment{sim.Wall(30, -20, 30, 20)}
		return c
	default:
		return sim.OpenField()
	}
}

// openSim starts a simulated robot on the course for key. OK is pressed
// automatically.
func openSim(key string, cfg level.Config, pace float64, logger *slog.Logger) *session {
	w := sim.NewWorld(courseFor(key))
	w.InvertPitch = cfg.InvertPitch
	w.Clock.Pace = pace
	w.AutoStart()
	r := w.Robot()
	r.Logger = logger
	return &session{robot: r, world: w, close: func() {}}
}

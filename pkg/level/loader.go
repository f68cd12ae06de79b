package level

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gwillem/alvik/pkg/behavior"
	"github.com/gwillem/alvik/pkg/logx"
	"github.com/gwillem/alvik/pkg/robot"
)

// Loader runs levels one at a time and always leaves the robot braked and
// idle afterwards.
type Loader struct {
	Robot  *robot.Robot
	Runner *behavior.Runner
	Config Config
	Logger *slog.Logger
}

// NewLoader returns a loader sharing one runner across levels.
func NewLoader(r *robot.Robot, cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logx.L()
	}
	return &Loader{
		Robot:  r,
		Runner: behavior.NewRunner(r, logger),
		Config: cfg,
		Logger: logger,
	}
}

// Run builds and runs lvl. A panic inside the level is turned into an
// error; the robot is braked and the idle light shown whatever happens.
func (l *Loader) Run(ctx context.Context, lvl Level) (out behavior.Outcome, err error) {
	log := l.Logger.With("level", lvl.Key)
	stopCtx := context.WithoutCancel(ctx)

	defer func() {
		if p := recover(); p != nil {
			l.Robot.Indicate(stopCtx, robot.LightWarn)
			log.Error("level crashed", "panic", p)
			out, err = behavior.Aborted, fmt.Errorf("level %s: panic: %v", lvl.Key, p)
		}
		l.Robot.Brake(stopCtx)
		l.Robot.Indicate(stopCtx, robot.LightWait)
	}()

	log.Info("start level")
	l.Robot.Indicate(ctx, robot.LightGo)
	out, err = l.Runner.Run(ctx, lvl.New(l.Config))
	if err != nil {
		l.Robot.Indicate(stopCtx, robot.LightWarn)
		return out, fmt.Errorf("level %s: %w", lvl.Key, err)
	}
	log.Info("level finished", "outcome", out.String())
	return out, nil
}

// Loop alternates between the chooser and the chosen level until ctx is
// done. Level errors are logged and the menu comes back.
func (l *Loader) Loop(ctx context.Context, levels []Level, show func(idx int)) error {
	l.Robot.Indicate(ctx, robot.LightWait)
	for {
		lvl, err := Choose(ctx, l.Robot, levels, show)
		if err != nil {
			return err
		}
		if _, err := l.Run(ctx, lvl); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.Logger.Warn("level failed", "level", lvl.Key, "err", err)
		}
		if err := l.Robot.Sleep(ctx, 300*time.Millisecond); err != nil {
			return err
		}
	}
}

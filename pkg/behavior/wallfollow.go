package behavior

import (
	"math"
	"time"

	"github.com/gwillem/alvik/pkg/debounce"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// WallFollow follows the right-hand wall out of a maze. Each tick the
// states are tried in priority order: avoid, exit, corridor, opening,
// normal following. Any state other than normal following counts as
// progress; without progress for AntiSpin the robot probes forward.
type WallFollow struct {
	cfg WallFollowConfig

	exit     *debounce.Counter
	corridor *debounce.Counter
	opening  *debounce.Counter

	lastProgress time.Time
	cmd          Wheels
	phase        string
}

// NewWallFollow returns the maze level.
func NewWallFollow(cfg WallFollowConfig) *WallFollow {
	return &WallFollow{
		cfg:      cfg,
		exit:     debounce.NewCounter(cfg.StableSamples),
		corridor: debounce.NewCounter(cfg.StableSamples),
		opening:  debounce.NewCounter(cfg.StableSamples),
		cmd:      Wheels{cfg.SpeedForward, cfg.SpeedForward},
		phase:    "idle",
	}
}

func (w *WallFollow) Name() string            { return "no_way_out" }
func (w *WallFollow) Interval() time.Duration { return w.cfg.Interval }
func (w *WallFollow) Phase() string           { return w.phase }

// Steer is the proportional correction for a right wall distance, clamped
// to ±MaxSteer. Positive means too close: steer left, away from the wall.
func (c WallFollowConfig) Steer(right float64) float64 {
	s := c.Kp * (c.WallTarget - right)
	return math.Max(-c.MaxSteer, math.Min(c.MaxSteer, s))
}

func (w *WallFollow) Start(now time.Time, _ Senses) Action {
	w.lastProgress = now
	w.phase = "follow"
	return Action{Lit(robot.LightGo)}
}

func (w *WallFollow) Resume() Action {
	return Action{Drive(w.cmd.Left, w.cmd.Right)}
}

// progress marks the end of a maneuver starting now.
func (w *WallFollow) progress(now time.Time, act Action) {
	w.lastProgress = now.Add(act.Duration())
}

func (w *WallFollow) corridorAhead(f sensor.DistanceFrame) bool {
	left, lok := f.Left()
	right, rok := f.Right()
	front, fok := f.FrontMean()
	if !lok || !rok || !fok {
		return false
	}
	return left < w.cfg.WallNear && right < w.cfg.WallNear && front > w.cfg.GapAhead
}

func (w *WallFollow) Tick(now time.Time, s Senses) (Action, Outcome) {
	c := w.cfg
	f := s.Distances()

	if front, ok := f.FrontMin(); ok && front < c.SafeFront {
		w.phase = "avoid"
		w.opening.Reset()
		w.corridor.Reset()
		act := Action{
			Lit(robot.LightWarn),
			Straight(-c.SpeedForward).For(c.AvoidReverse),
			Pivot(-c.SpeedTurn).For(c.AvoidPivot),
			Lit(robot.LightGo),
		}
		w.cmd = Wheels{-c.SpeedTurn, c.SpeedTurn}
		w.progress(now, act)
		return act, Continue
	}

	nearest, ok := f.Min()
	if w.exit.Observe(ok && nearest > c.ExitThreshold) {
		w.phase = "exit"
		w.cmd = Wheels{}
		act := Action{Halt()}.Then(Blink(6, 150*time.Millisecond, 150*time.Millisecond, robot.LightDone, robot.LightOff)...)
		return act, Success
	}

	if w.corridor.Observe(w.corridorAhead(f)) {
		w.phase = "corridor"
		w.cmd = Wheels{c.SpeedForward, c.SpeedForward}
		act := Action{Straight(c.SpeedForward).For(c.Corridor)}
		w.progress(now, act)
		return act, Continue
	}

	right, rok := f.Right()
	if w.opening.Observe(rok && right > c.OpenSide) {
		w.phase = "open_turn"
		w.cmd = Wheels{c.SpeedForward, c.SpeedForward}
		act := Action{
			Pivot(c.SpeedTurn).For(c.TurnIn),
			Straight(c.SpeedForward).For(c.TurnSettle),
		}
		w.progress(now, act)
		return act, Continue
	}

	if rok {
		w.phase = "follow"
		steer := c.Steer(right)
		w.cmd = Wheels{c.SpeedForward - steer, c.SpeedForward + steer}
	} else {
		// wall lost: turn slowly clockwise to find it again
		w.phase = "reacquire"
		w.cmd = Wheels{c.SpeedTurn, -c.SpeedTurn}
	}
	act := Action{Drive(w.cmd.Left, w.cmd.Right)}

	if now.Sub(w.lastProgress) > c.AntiSpin {
		w.phase = "anti_spin"
		act = act.Then(
			Straight(c.SpeedForward).For(c.Probe),
			Pivot(c.SpeedTurn).For(c.ProbePivot),
		)
		w.cmd = Wheels{c.SpeedTurn, -c.SpeedTurn}
		w.progress(now, act)
	}
	return act, Continue
}

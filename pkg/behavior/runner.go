package behavior

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/logx"
	"github.com/gwillem/alvik/pkg/pause"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// ErrAlreadyRunning is returned when Run is called on a busy runner.
var ErrAlreadyRunning = errors.New("already running")

// State is a snapshot published after every tick.
type State struct {
	Run       string
	Level     string
	Phase     string
	Pause     pause.State
	Wheels    Wheels
	Light     robot.Light
	Outcome   Outcome
	Timestamp time.Time

	// Readings taken during the tick; the Has flags mark which were read.
	Frame    sensor.DistanceFrame
	HasFrame bool
	Pitch    sensor.PitchSample
	HasPitch bool
	Color    color.RGB
	HasColor bool
}

// Runner executes behaviours against a robot, one at a time.
type Runner struct {
	robot  *robot.Robot
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	wheels  Wheels
	light   robot.Light

	stateCh chan State
	logCh   chan string
}

// NewRunner returns a runner for r. A nil logger uses the package default.
func NewRunner(r *robot.Robot, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logx.L()
	}
	return &Runner{
		robot:   r,
		logger:  logger,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 32),
	}
}

// States returns a channel that receives the latest state.
func (r *Runner) States() <-chan State {
	return r.stateCh
}

// Logs returns a channel that receives log lines.
func (r *Runner) Logs() <-chan string {
	return r.logCh
}

func (r *Runner) logf(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", r.robot.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case r.logCh <- msg:
	default:
		// Drop if channel full
	}
}

func (r *Runner) sendState(s State) {
	select {
	case r.stateCh <- s:
	default:
		select {
		case <-r.stateCh:
		default:
		}
		select {
		case r.stateCh <- s:
		default:
		}
	}
}

// Run waits for OK, then ticks b until it reports an outcome. Cancelling
// ctx stops the robot and returns Aborted with the context error.
func (r *Runner) Run(ctx context.Context, b Behavior) (Outcome, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return Aborted, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	runID := uuid.NewString()
	log := r.logger.With("run", runID, "level", b.Name())

	sup := pause.New(r.robot)
	if pl, ok := b.(pausedLighter); ok {
		sup.PausedLight = pl.PausedLight()
	}
	sup.OnChange = func(st pause.State) {
		log.Info("supervisor", "state", st.String())
		r.logf("%s: %s", b.Name(), st)
		r.sendState(State{Run: runID, Level: b.Name(), Phase: b.Phase(), Pause: st, Timestamp: r.robot.Now()})
	}

	r.logf("%s: press OK to start", b.Name())
	if err := sup.WaitForStart(ctx); err != nil {
		return r.abort(ctx, log, err)
	}

	log.Info("start")
	if err := r.exec(ctx, b.Start(r.robot.Now(), r.senses(ctx))); err != nil {
		return r.abort(ctx, log, err)
	}

	phase := b.Phase()
	for {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, log, err)
		}

		resumed, err := sup.Check(ctx)
		if err != nil {
			return r.abort(ctx, log, err)
		}
		if resumed {
			if err := r.exec(ctx, b.Resume()); err != nil {
				return r.abort(ctx, log, err)
			}
		}

		s := r.senses(ctx)
		act, out := b.Tick(r.robot.Now(), s)
		if err := r.exec(ctx, act); err != nil {
			return r.abort(ctx, log, err)
		}

		if p := b.Phase(); p != phase {
			log.Debug("phase", "from", phase, "to", p)
			r.logf("%s: %s -> %s", b.Name(), phase, p)
			phase = p
		}
		r.publish(runID, b, sup.State(), s, out)

		if out != Continue {
			log.Info("finished", "outcome", out.String())
			r.logf("%s: %s", b.Name(), out)
			return out, nil
		}

		if err := r.robot.Sleep(ctx, b.Interval()); err != nil {
			return r.abort(ctx, log, err)
		}
	}
}

func (r *Runner) abort(ctx context.Context, log *slog.Logger, err error) (Outcome, error) {
	r.robot.Stop(context.WithoutCancel(ctx))
	r.wheels = Wheels{}
	log.Info("aborted", "err", err)
	r.logf("aborted: %v", err)
	return Aborted, err
}

// exec carries out an action step by step.
func (r *Runner) exec(ctx context.Context, act Action) error {
	for _, s := range act {
		if s.SetLight {
			r.robot.Indicate(ctx, s.Light)
			r.light = s.Light
		}
		switch {
		case s.Stop:
			r.robot.Stop(ctx)
			r.wheels = Wheels{}
		case s.Wheels != nil:
			r.robot.SetSpeeds(ctx, s.Wheels.Left, s.Wheels.Right)
			r.wheels = *s.Wheels
		}
		if s.Hold > 0 {
			if err := r.robot.Sleep(ctx, s.Hold); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) publish(runID string, b Behavior, ps pause.State, s *tickSenses, out Outcome) {
	st := State{
		Run:       runID,
		Level:     b.Name(),
		Phase:     b.Phase(),
		Pause:     ps,
		Wheels:    r.wheels,
		Light:     r.light,
		Outcome:   out,
		Timestamp: r.robot.Now(),
	}
	st.Frame, st.HasFrame = s.frame, s.hasFrame
	st.Pitch, st.HasPitch = s.pitch, s.hasPitch
	st.Color, st.HasColor = s.rgb, s.hasRGB
	r.sendState(st)
}

func (r *Runner) senses(ctx context.Context) *tickSenses {
	return &tickSenses{ctx: ctx, robot: r.robot}
}

// tickSenses reads each sensor at most once per tick.
type tickSenses struct {
	ctx   context.Context
	robot *robot.Robot

	frame    sensor.DistanceFrame
	hasFrame bool
	rgb      color.RGB
	hasRGB   bool
	pitch    sensor.PitchSample
	hasPitch bool
	bumped   *bool

	lineRead bool
	lineOK   bool
	lineVals [3]float64
}

func (t *tickSenses) Distances() sensor.DistanceFrame {
	if !t.hasFrame {
		t.frame, t.hasFrame = t.robot.Distances(t.ctx), true
	}
	return t.frame
}

func (t *tickSenses) Color() color.RGB {
	if !t.hasRGB {
		t.rgb, t.hasRGB = t.robot.RGB(t.ctx), true
	}
	return t.rgb
}

func (t *tickSenses) Pitch() sensor.PitchSample {
	if !t.hasPitch {
		t.pitch, t.hasPitch = t.robot.Pitch(t.ctx), true
	}
	return t.pitch
}

func (t *tickSenses) Bumped() bool {
	if t.bumped == nil {
		hit := t.robot.Bumped(t.ctx)
		t.bumped = &hit
	}
	return *t.bumped
}

func (t *tickSenses) Line() (left, center, right float64, ok bool) {
	if !t.lineRead {
		l, c, r, ok := t.robot.LineValues(t.ctx)
		t.lineVals, t.lineOK, t.lineRead = [3]float64{l, c, r}, ok, true
	}
	return t.lineVals[0], t.lineVals[1], t.lineVals[2], t.lineOK
}

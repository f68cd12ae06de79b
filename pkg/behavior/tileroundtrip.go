package behavior

import (
	"time"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

type tilePhase int

const (
	outboundScan tilePhase = iota
	inboundReturn
	tileDone
)

// TileRoundTrip records the colour tiles on the way out, picks the one that
// occurs only once and reverses back to it before turning off the strip.
type TileRoundTrip struct {
	cfg        TileConfig
	classifier color.Classifier
	phase      tilePhase

	log      *TileLog
	detector *TileDetector
	target   color.Bucket

	legStart time.Time
	last     color.Bucket
}

// NewTileRoundTrip returns the tile level.
func NewTileRoundTrip(cfg TileConfig) *TileRoundTrip {
	cl := color.Classifier{HueBins: cfg.HueBins, DarkCutoff: cfg.DarkCutoff}
	return &TileRoundTrip{
		cfg:        cfg,
		classifier: cl,
		log:        NewTileLog(),
		detector:   NewTileDetector(cl, cfg.TileDwell, cfg.Tolerance),
	}
}

func (t *TileRoundTrip) Name() string            { return "wrong_exit" }
func (t *TileRoundTrip) Interval() time.Duration { return t.cfg.Interval }

// PausedLight keeps the waiting colour while paused on the strip.
func (t *TileRoundTrip) PausedLight() robot.Light { return robot.LightWait }

func (t *TileRoundTrip) Phase() string {
	switch t.phase {
	case outboundScan:
		return "outbound"
	case inboundReturn:
		return "inbound"
	default:
		return "done"
	}
}

// Log exposes the outbound tile memory.
func (t *TileRoundTrip) Log() *TileLog { return t.log }

// Target is the tile selected for the return leg.
func (t *TileRoundTrip) Target() color.Bucket { return t.target }

// LastBucket is the most recent classification.
func (t *TileRoundTrip) LastBucket() color.Bucket { return t.last }

func (t *TileRoundTrip) Start(now time.Time, s Senses) Action {
	t.phase = outboundScan
	t.legStart = now
	// the first sample only seeds the detector
	t.last = t.classifier.Classify(s.Color())
	t.detector.Observe(t.last)
	return Action{Lit(robot.LightScan), Straight(t.cfg.SpeedForward)}
}

func (t *TileRoundTrip) Resume() Action {
	switch t.phase {
	case outboundScan:
		return Action{Lit(robot.LightScan), Straight(t.cfg.SpeedForward)}
	case inboundReturn:
		return Action{Straight(t.cfg.SpeedBack)}
	default:
		return nil
	}
}

func (t *TileRoundTrip) hardStop() Action {
	return Action{Lit(robot.LightStop), Halt().For(t.cfg.Settle)}
}

func (t *TileRoundTrip) endReached(now time.Time, s Senses) bool {
	if front, ok := s.Distances().FrontMin(); ok && front <= t.cfg.EndStopCM {
		return true
	}
	if s.Bumped() {
		return true
	}
	// a timeout still counts as the end of the strip
	return now.Sub(t.legStart) > t.cfg.EndTimeout
}

func (t *TileRoundTrip) Tick(now time.Time, s Senses) (Action, Outcome) {
	switch t.phase {
	case outboundScan:
		return t.outbound(now, s)
	case inboundReturn:
		return t.inbound(now, s)
	default:
		return nil, Success
	}
}

func (t *TileRoundTrip) outbound(now time.Time, s Senses) (Action, Outcome) {
	t.last = t.classifier.Classify(s.Color())
	if t.detector.Observe(t.last) {
		t.log.Append(t.detector.Current())
	}
	if !t.endReached(now, s) {
		return nil, Continue
	}

	act := t.hardStop()
	target, ok := t.log.Target()
	if !ok {
		t.phase = tileDone
		return act.Then(Blink(3, 160*time.Millisecond, 160*time.Millisecond, robot.LightDone, robot.LightOff)...), Aborted
	}
	t.target = target
	t.phase = inboundReturn
	t.legStart = now.Add(act.Duration())
	t.detector.Reset()
	return act.Then(Lit(robot.LightGo), Straight(t.cfg.SpeedBack)), Continue
}

func (t *TileRoundTrip) inbound(now time.Time, s Senses) (Action, Outcome) {
	t.last = t.classifier.Classify(s.Color())
	t.detector.Observe(t.last)
	if t.detector.Stable() && t.classifier.Same(t.detector.Current(), t.target, t.cfg.Tolerance) {
		t.phase = tileDone
		act := t.hardStop().
			Then(t.exitManeuver(s.Distances())...).
			Then(t.celebrate()...)
		return act, Success
	}
	if now.Sub(t.legStart) > t.cfg.BackTimeout {
		t.phase = tileDone
		act := t.hardStop().Then(Blink(4, 140*time.Millisecond, 140*time.Millisecond, robot.LightDone, robot.LightOff)...)
		return act, Failure
	}
	return nil, Continue
}

// exitManeuver pivots toward the side with more clearance and drives off
// the strip. Ties and unknown sides go left.
func (t *TileRoundTrip) exitManeuver(f sensor.DistanceFrame) Action {
	left, lok := f.Get(sensor.Left)
	right, rok := f.Get(sensor.Right)
	pivot := Pivot(-t.cfg.SpeedPivot)
	if lok && rok && left < right {
		pivot = Pivot(t.cfg.SpeedPivot)
	}
	return Action{Lit(robot.LightTurn), pivot.For(t.cfg.Turn)}.
		Then(t.hardStop()...).
		Then(Lit(robot.LightGo), Straight(t.cfg.SpeedExit).For(t.cfg.ExitRun)).
		Then(t.hardStop()...)
}

func (t *TileRoundTrip) celebrate() Action {
	act := Blink(3, 120*time.Millisecond, 80*time.Millisecond, robot.LightDone, robot.LightOff)
	for i := 0; i < 3; i++ {
		act = act.Then(
			Pivot(26).For(250*time.Millisecond),
			Pivot(-26).For(250*time.Millisecond),
		)
	}
	return act.Then(t.hardStop()...).
		Then(Blink(6, 120*time.Millisecond, 120*time.Millisecond, robot.LightDone, robot.LightOff)...)
}

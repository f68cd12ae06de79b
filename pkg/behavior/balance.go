package behavior

import (
	"math"
	"time"

	"github.com/gwillem/alvik/pkg/debounce"
	"github.com/gwillem/alvik/pkg/robot"
)

type balancePhase int

const (
	climbToMiddle balancePhase = iota
	descendToFlat
	balanceDone
)

// Balance drives over a tilting beam: climb, stop once level in the middle,
// then descend and stop once level and still on the floor.
type Balance struct {
	cfg   BalanceConfig
	phase balancePhase
	speed float64

	prev    float64
	hasPrev bool

	// climb
	climbing bool
	crested  bool
	crestAt  time.Time
	flat     *debounce.Counter

	// descend
	arming *debounce.Decaying
	stable *debounce.Counter
}

// NewBalance returns the balance beam level.
func NewBalance(cfg BalanceConfig) *Balance {
	return &Balance{
		cfg:    cfg,
		speed:  cfg.SpeedUp,
		flat:   debounce.NewCounter(cfg.MidStableSamples),
		arming: debounce.NewDecaying(cfg.DescSamplesArm),
		stable: debounce.NewCounter(cfg.FinalStableSamples),
	}
}

func (b *Balance) Name() string            { return "perfect_balance" }
func (b *Balance) Interval() time.Duration { return b.cfg.Interval }

func (b *Balance) Phase() string {
	switch b.phase {
	case climbToMiddle:
		if b.crested {
			return "crest"
		}
		if b.climbing {
			return "climb"
		}
		return "approach"
	case descendToFlat:
		if b.arming.Armed() {
			return "armed"
		}
		return "descend"
	default:
		return "done"
	}
}

// forward applies the per-wheel trims.
func (b *Balance) forward(v float64) Step {
	return Drive(v*(1+b.cfg.TrimLeft), v*(1+b.cfg.TrimRight))
}

func (b *Balance) Start(_ time.Time, s Senses) Action {
	b.prev, b.hasPrev = s.Pitch().Pitch, true
	b.speed = b.cfg.SpeedUp
	return Action{Lit(robot.LightGo), b.forward(b.speed)}
}

func (b *Balance) Resume() Action {
	if b.phase == balanceDone {
		return nil
	}
	return Action{b.forward(b.speed)}
}

func (b *Balance) delta(p float64) float64 {
	if !b.hasPrev {
		return 0
	}
	return p - b.prev
}

func (b *Balance) Tick(now time.Time, s Senses) (Action, Outcome) {
	switch b.phase {
	case climbToMiddle:
		return b.climb(now, s)
	case descendToFlat:
		return b.descend(s)
	default:
		return nil, Success
	}
}

func (b *Balance) climb(now time.Time, s Senses) (Action, Outcome) {
	c := b.cfg
	p := s.Pitch().Pitch
	dp := b.delta(p)

	if p >= c.UpMinDeg {
		b.climbing = true
	}

	b.speed = c.SpeedUp
	if p >= c.UpSlowDeg {
		b.speed = c.SpeedUpSlow
	}

	if b.climbing && !b.crested {
		if dp <= -c.TiltDropDeg || (b.hasPrev && b.prev > p) {
			b.crested = true
			b.crestAt = now
		}
	}

	level := math.Abs(p) <= c.MidZeroDeg
	middle := b.flat.Observe(b.climbing && level)
	if b.crested && now.Sub(b.crestAt) <= c.MidWindow && level {
		middle = true
	}

	b.prev, b.hasPrev = p, true

	if !middle {
		return Action{b.forward(b.speed)}, Continue
	}

	b.phase = descendToFlat
	b.speed = c.SpeedDown
	act := Action{Halt()}.
		Then(Blink(3, 100*time.Millisecond, 100*time.Millisecond, robot.LightDone, robot.LightGo)...).
		Then(b.forward(b.speed))
	return act, Continue
}

func (b *Balance) descend(s Senses) (Action, Outcome) {
	c := b.cfg
	sample := s.Pitch()
	p := sample.Pitch
	dp := b.delta(p)
	b.prev, b.hasPrev = p, true

	b.arming.Observe(p <= -c.DescMinDeg)
	if b.arming.Armed() {
		still := math.Abs(dp) <= c.DerivEps
		quiet := !sample.HasGyro || sample.GyroSum() <= c.GyroStillDPS
		if b.stable.Observe(math.Abs(p) <= c.FinalZeroDeg && still && quiet) {
			b.phase = balanceDone
			act := Action{Halt()}.
				Then(Blink(4, 120*time.Millisecond, 120*time.Millisecond, robot.LightDone, robot.LightGo)...)
			return act, Success
		}
	}
	return Action{b.forward(b.speed)}, Continue
}

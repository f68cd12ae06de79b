package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/alvik/pkg/robot"
)

func TestWallFollowConfig_Steer(t *testing.T) {
	c := DefaultWallFollowConfig()

	tests := []struct {
		right float64
		want  float64
	}{
		{14, 0},
		{10, 4},
		{20, -6},
		{30, -12}, // clamped
		{0, 12},   // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Steer(tt.right), "right %v", tt.right)
	}
}

func newStartedWallFollow() (*WallFollow, WallFollowConfig) {
	cfg := DefaultWallFollowConfig()
	w := NewWallFollow(cfg)
	w.Start(t0, framed(50, 100, 100, 20, 8))
	return w, cfg
}

func TestWallFollow_Follow(t *testing.T) {
	w, cfg := newStartedWallFollow()

	act, out := w.Tick(t0, framed(50, 100, 100, 20, 8))
	assert.Equal(t, Continue, out)
	assert.Equal(t, "follow", w.Phase())
	assert.Equal(t, Action{Drive(cfg.SpeedForward, cfg.SpeedForward)}, act)

	// too far from the wall: right wheel slower, turn towards it
	act, _ = w.Tick(t0, framed(50, 100, 100, 20, 20))
	wheels, ok := act.Final()
	require.True(t, ok)
	assert.Equal(t, Wheels{28, 16}, wheels)

	// too close: turn away
	act, _ = w.Tick(t0, framed(50, 100, 100, 18, 2))
	wheels, _ = act.Final()
	assert.Equal(t, Wheels{18, 26}, wheels)
	assert.Equal(t, Action{Drive(18, 26)}, w.Resume())
}

func TestWallFollow_Reacquire(t *testing.T) {
	w, cfg := newStartedWallFollow()
	act, out := w.Tick(t0, framed(50, 100, 100, 0, 0))
	assert.Equal(t, Continue, out)
	assert.Equal(t, "reacquire", w.Phase())
	assert.Equal(t, Action{Pivot(cfg.SpeedTurn)}, act)
}

func TestWallFollow_AvoidFirst(t *testing.T) {
	w, cfg := newStartedWallFollow()

	// everything far except the front: avoidance wins over exit and opening
	act, out := w.Tick(t0, framed(200, 200, 10, 200, 200))
	assert.Equal(t, Continue, out)
	assert.Equal(t, "avoid", w.Phase())
	assert.Equal(t, robot.LightWarn, act[0].Light)
	assert.Equal(t, cfg.AvoidReverse+cfg.AvoidPivot, act.Duration())
	assert.Equal(t, Wheels{-cfg.SpeedForward, -cfg.SpeedForward}, *act[1].Wheels)
	assert.Equal(t, Wheels{-cfg.SpeedTurn, cfg.SpeedTurn}, *act[2].Wheels)
}

func TestWallFollow_Exit(t *testing.T) {
	w, cfg := newStartedWallFollow()

	for i := 1; i < cfg.StableSamples; i++ {
		_, out := w.Tick(t0, framed(300, 300, 300, 300, 300))
		require.Equal(t, Continue, out, "sample %d", i)
	}
	act, out := w.Tick(t0, framed(300, 300, 300, 300, 300))
	assert.Equal(t, Success, out)
	assert.Equal(t, "exit", w.Phase())
	assert.True(t, act[0].Stop)
}

func TestWallFollow_ExitNeedsConsecutiveSamples(t *testing.T) {
	w, _ := newStartedWallFollow()
	open := framed(300, 300, 300, 300, 300)

	w.Tick(t0, open)
	w.Tick(t0, open)
	w.Tick(t0, framed(50, 100, 100, 20, 8))
	_, out := w.Tick(t0, open)
	assert.Equal(t, Continue, out)

	// absent channels never count as open
	w2, _ := newStartedWallFollow()
	for i := 0; i < 5; i++ {
		_, out = w2.Tick(t0, framed(0, 0, 0, 0, 0))
		assert.Equal(t, Continue, out)
	}
}

func TestWallFollow_Corridor(t *testing.T) {
	w, cfg := newStartedWallFollow()
	corridor := framed(20, 100, 100, 20, 20)

	w.Tick(t0, corridor)
	w.Tick(t0, corridor)
	act, out := w.Tick(t0, corridor)
	assert.Equal(t, Continue, out)
	assert.Equal(t, "corridor", w.Phase())
	assert.Equal(t, Action{Straight(cfg.SpeedForward).For(cfg.Corridor)}, act)
}

func TestWallFollow_Opening(t *testing.T) {
	w, cfg := newStartedWallFollow()
	opening := framed(20, 100, 100, 100, 100)

	w.Tick(t0, opening)
	w.Tick(t0, opening)
	act, out := w.Tick(t0, opening)
	assert.Equal(t, Continue, out)
	assert.Equal(t, "open_turn", w.Phase())
	assert.Equal(t, Pivot(cfg.SpeedTurn).For(cfg.TurnIn), act[0])
	assert.Equal(t, Straight(cfg.SpeedForward).For(cfg.TurnSettle), act[1])
}

func TestWallFollow_AntiSpin(t *testing.T) {
	w, cfg := newStartedWallFollow()
	follow := framed(50, 100, 100, 20, 8)

	_, _ = w.Tick(t0.Add(cfg.AntiSpin), follow)
	assert.Equal(t, "follow", w.Phase())

	now := t0.Add(cfg.AntiSpin + cfg.Interval)
	act, out := w.Tick(now, follow)
	assert.Equal(t, Continue, out)
	assert.Equal(t, "anti_spin", w.Phase())
	assert.Equal(t, cfg.Probe+cfg.ProbePivot, act.Duration())

	// the probe counts as progress
	_, _ = w.Tick(now.Add(time.Second), follow)
	assert.Equal(t, "follow", w.Phase())
}

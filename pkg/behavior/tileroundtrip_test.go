package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

var (
	floorRed   = color.RGB{R: 0.3}
	floorGreen = color.RGB{R: 0.24, G: 0.9}
	floorBlue  = color.RGB{B: 0.9}
	farAhead   = sensor.FrameOf(60, 120, 120, 120, 60)
)

// tileRun drives a TileRoundTrip with scripted floor colours.
type tileRun struct {
	t  *testing.T
	tr *TileRoundTrip
	n  int
}

func newTileRun(t *testing.T, cfg TileConfig, first color.RGB) *tileRun {
	tr := NewTileRoundTrip(cfg)
	act := tr.Start(t0, &fakeSenses{rgb: first, frame: farAhead})
	assert.Equal(t, Action{Lit(robot.LightScan), Straight(cfg.SpeedForward)}, act)
	return &tileRun{t: t, tr: tr}
}

func (r *tileRun) now() time.Time {
	return at(r.n, r.tr.Interval())
}

// floor ticks once per colour, n times each, and fails on a terminal outcome.
func (r *tileRun) floor(c color.RGB, n int) {
	r.t.Helper()
	for i := 0; i < n; i++ {
		r.n++
		_, out := r.tr.Tick(r.now(), &fakeSenses{rgb: c, frame: farAhead})
		require.Equal(r.t, Continue, out)
	}
}

func (r *tileRun) tick(s *fakeSenses) (Action, Outcome) {
	r.n++
	return r.tr.Tick(r.now(), s)
}

func outboundStrip(r *tileRun) {
	r.floor(floorRed, 3)
	r.floor(floorBlue, 2)
	r.floor(floorRed, 4)
	r.floor(floorBlue, 2)
	r.floor(floorGreen, 4)
	r.floor(floorBlue, 2)
	r.floor(floorRed, 4)
}

func TestTileRoundTrip_PicksUniqueTile(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorRed)
	outboundStrip(r)

	red := r.tr.classifier.Classify(floorRed)
	green := r.tr.classifier.Classify(floorGreen)
	assert.Equal(t, []color.Bucket{red, red, green, red}, r.tr.Log().Buckets())
	assert.Equal(t, "outbound", r.tr.Phase())

	act, out := r.tick(&fakeSenses{rgb: floorRed, frame: sensor.FrameOf(60, 30, 12, 30, 60)})
	assert.Equal(t, Continue, out)
	assert.Equal(t, "inbound", r.tr.Phase())
	assert.Equal(t, green, r.tr.Target())
	assert.Equal(t, robot.LightStop, act[0].Light)
	assert.True(t, act[1].Stop)
	assert.Equal(t, cfg.Settle, act[1].Hold)
	wheels, _ := act.Final()
	assert.Equal(t, Wheels{cfg.SpeedBack, cfg.SpeedBack}, wheels)
	assert.Equal(t, Action{Straight(cfg.SpeedBack)}, r.tr.Resume())

	r.floor(floorRed, 4)
	r.floor(floorBlue, 2)
	r.floor(floorGreen, 3)

	// more room on the right: pivot clockwise off the strip
	act, out = r.tick(&fakeSenses{rgb: floorGreen, frame: sensor.FrameOf(20, 120, 120, 120, 60)})
	assert.Equal(t, Success, out)
	assert.Equal(t, "done", r.tr.Phase())
	assert.Equal(t, robot.LightTurn, act[2].Light)
	assert.Equal(t, Pivot(cfg.SpeedPivot).For(cfg.Turn), act[3])
}

func TestTileRoundTrip_ExitTieGoesLeft(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorGreen)
	r.floor(floorGreen, 4)
	r.tick(&fakeSenses{rgb: floorGreen, bumped: true})
	require.Equal(t, "inbound", r.tr.Phase())

	r.floor(floorGreen, 3)
	act, out := r.tick(&fakeSenses{rgb: floorGreen})
	assert.Equal(t, Success, out)
	assert.Equal(t, Pivot(-cfg.SpeedPivot).For(cfg.Turn), act[3])
}

func TestTileRoundTrip_ExitUnknownSideGoesLeft(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorGreen)
	r.floor(floorGreen, 4)
	r.tick(&fakeSenses{rgb: floorGreen, bumped: true})
	require.Equal(t, "inbound", r.tr.Phase())

	// open space on the left reads out of band, wall at 30 cm on the right
	frame := sensor.NormalizeDistances(sensor.RawDistances{Values: []float64{9999, 100, 100, 100, 30}})
	_, ok := frame.Get(sensor.Left)
	require.False(t, ok)

	r.floor(floorGreen, 3)
	act, out := r.tick(&fakeSenses{rgb: floorGreen, frame: frame})
	assert.Equal(t, Success, out)
	assert.Equal(t, Pivot(-cfg.SpeedPivot).For(cfg.Turn), act[3])
}

func TestTileRoundTrip_EndTimeout(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorRed)
	r.floor(floorRed, 5)

	_, out := r.tr.Tick(t0.Add(cfg.EndTimeout+time.Millisecond), &fakeSenses{rgb: floorRed, frame: farAhead})
	assert.Equal(t, Continue, out)
	assert.Equal(t, "inbound", r.tr.Phase())
}

func TestTileRoundTrip_EmptyLogAborts(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorRed)

	act, out := r.tick(&fakeSenses{rgb: floorRed, frame: sensor.FrameOf(60, 10, 10, 10, 60)})
	assert.Equal(t, Aborted, out)
	assert.Equal(t, "done", r.tr.Phase())
	assert.Equal(t, 0, r.tr.Log().Len())
	assert.True(t, act[1].Stop)
	assert.Nil(t, r.tr.Resume())
}

func TestTileRoundTrip_BackTimeoutFails(t *testing.T) {
	cfg := DefaultTileConfig()
	r := newTileRun(t, cfg, floorRed)
	outboundStrip(r)
	_, out := r.tick(&fakeSenses{rgb: floorRed, bumped: true})
	require.Equal(t, Continue, out)
	end := r.now()

	r.floor(floorRed, 10)
	act, out := r.tr.Tick(end.Add(cfg.Settle+cfg.BackTimeout+time.Millisecond), &fakeSenses{rgb: floorRed})
	assert.Equal(t, Failure, out)
	assert.Equal(t, "done", r.tr.Phase())
	assert.True(t, act[1].Stop)
}

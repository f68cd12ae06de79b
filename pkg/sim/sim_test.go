package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/sensor"
)

func TestClock_Sleep(t *testing.T) {
	c := NewClock()
	var steps int
	var total time.Duration
	c.onStep(func(dt time.Duration) {
		steps++
		total += dt
	})

	require.NoError(t, c.Sleep(context.Background(), 23*time.Millisecond))
	assert.Equal(t, 23*time.Millisecond, c.Elapsed())
	assert.Equal(t, 5, steps)
	assert.Equal(t, 23*time.Millisecond, total)
	assert.Equal(t, Epoch.Add(23*time.Millisecond), c.Now())
}

func TestClock_Limit(t *testing.T) {
	c := NewClock()
	c.SetLimit(500 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Sleep(ctx, time.Second))
	assert.ErrorIs(t, c.Sleep(ctx, 0), ErrTimeLimit)

	c.SetLimit(0)
	assert.NoError(t, c.Sleep(ctx, time.Millisecond))
}

func TestClock_Cancelled(t *testing.T) {
	c := NewClock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Second), context.Canceled)
	assert.Zero(t, c.Elapsed())
}

func TestWorld_DriveStraight(t *testing.T) {
	w := NewWorld(OpenField())
	r := w.Robot()
	ctx := context.Background()

	r.SetSpeeds(ctx, 20, 20)
	require.NoError(t, r.Sleep(ctx, time.Second))

	p := w.Pose()
	assert.InDelta(t, 20*CmPerUnit, p.Pos.X, 1e-6)
	assert.InDelta(t, 0, p.Pos.Y, 1e-6)
	assert.InDelta(t, 20*CmPerUnit, w.Odometer(), 1e-6)

	r.Stop(ctx)
	require.NoError(t, r.Sleep(ctx, time.Second))
	assert.InDelta(t, 20*CmPerUnit, w.Pose().Pos.X, 1e-6)
}

func TestWorld_PivotTurnsRight(t *testing.T) {
	w := NewWorld(OpenField())
	r := w.Robot()
	ctx := context.Background()

	// positive left, negative right: clockwise
	r.SetSpeeds(ctx, 10, -10)
	require.NoError(t, r.Sleep(ctx, 500*time.Millisecond))

	p := w.Pose()
	assert.Less(t, p.Heading, 0.0)
	assert.InDelta(t, 0, p.Pos.Norm(), 1e-6)
	assert.InDelta(t, 0, w.Odometer(), 1e-9)
}

func TestWorld_CorridorDistances(t *testing.T) {
	w := NewWorld(Corridor(40, 120))
	raw, err := w.ReadDistances(context.Background())
	require.NoError(t, err)

	side := math.Round(20 / math.Sin(40*math.Pi/180))
	assert.Equal(t, []float64{side, math.Round(20 / math.Sin(20*math.Pi/180)), NoEcho, math.Round(20 / math.Sin(20*math.Pi/180)), side}, raw.Values)

	f := w.Robot().Distances(context.Background())
	right, ok := f.Right()
	assert.True(t, ok)
	assert.Greater(t, right, 40.0)
}

func TestWorld_EndWall(t *testing.T) {
	w := NewWorld(TileStrip(10, Red))
	r := w.Robot()
	ctx := context.Background()

	f := r.Distances(ctx)
	c, ok := f.Get(sensor.Center)
	require.True(t, ok)
	assert.Equal(t, 15.0, c)
	assert.False(t, r.Bumped(ctx))

	w.Place(13, 0, 0)
	assert.True(t, r.Bumped(ctx))
}

func TestWorld_BeamPitch(t *testing.T) {
	ctx := context.Background()
	for _, invert := range []bool{false, true} {
		w := NewWorld(Beam())
		w.InvertPitch = invert
		r := w.Robot()

		w.Place(30, 0, 0)
		assert.InDelta(t, 14, r.Pitch(ctx).Pitch, 1e-9, "climbing, invert=%v", invert)

		w.Place(80, 0, 0)
		assert.InDelta(t, -14, r.Pitch(ctx).Pitch, 1e-9, "descending, invert=%v", invert)

		w.Place(80, 0, 180)
		assert.InDelta(t, 14, r.Pitch(ctx).Pitch, 1e-9, "reversed onto the descent, invert=%v", invert)

		w.NoOrientation = true
		w.Place(30, 0, 0)
		assert.InDelta(t, 14, r.Pitch(ctx).Pitch, 1e-6, "accel fallback, invert=%v", invert)
	}
}

func TestWorld_PitchRateWhileClimbing(t *testing.T) {
	w := NewWorld(Beam())
	r := w.Robot()
	ctx := context.Background()
	w.Place(5, 0, 0)

	r.SetSpeeds(ctx, 20, 20)
	require.NoError(t, r.Sleep(ctx, 2*time.Second))
	s := r.Pitch(ctx)
	assert.InDelta(t, 14, s.Pitch, 1e-9)
	assert.True(t, s.HasGyro)

	w.NoGyro = true
	assert.False(t, r.Pitch(ctx).HasGyro)
}

func TestWorld_FloorColor(t *testing.T) {
	w := NewWorld(TileStrip(10, Red, Green))
	r := w.Robot()
	ctx := context.Background()
	cl := color.DefaultClassifier()

	assert.Equal(t, color.Bucket{Hue: 0, Value: 0}, cl.Classify(r.RGB(ctx)))
	w.Place(5.5, 0, 0)
	assert.Equal(t, color.Bucket{Hue: 8, Value: 1}, cl.Classify(r.RGB(ctx)), "joint")
	w.Place(10, 0, 0)
	assert.Equal(t, color.Bucket{Hue: 3, Value: 1}, cl.Classify(r.RGB(ctx)))
	w.Place(40, 0, 0)
	assert.Equal(t, color.Bucket{Hue: 0, Value: 1}, cl.Classify(r.RGB(ctx)), "grey floor")
}

func TestWorld_Line(t *testing.T) {
	w := NewWorld(LineTrack())
	l, c, r, err := w.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 900, 50}, []float64{l, c, r})

	// line now under the right sensor
	w.Place(0, 1.5, 0)
	l, c, r, err = w.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 50, 900}, []float64{l, c, r})
}

func TestWorld_Buttons(t *testing.T) {
	w := NewWorld(OpenField())
	r := w.Robot()
	ctx := context.Background()
	w.Press(Cancel, 100*time.Millisecond, 50*time.Millisecond)

	assert.False(t, r.CancelPressed(ctx))
	require.NoError(t, r.Sleep(ctx, 120*time.Millisecond))
	assert.True(t, r.CancelPressed(ctx))
	assert.False(t, r.ConfirmPressed(ctx))
	require.NoError(t, r.Sleep(ctx, 50*time.Millisecond))
	assert.False(t, r.CancelPressed(ctx))
}

func TestWorld_Degraded(t *testing.T) {
	w := NewWorld(Corridor(40, 120))
	w.NoDistance = true
	w.NoColor = true
	r := w.Robot()
	ctx := context.Background()

	assert.Zero(t, r.Distances(ctx).Present())
	// the colour falls back to the line sensors
	assert.Equal(t, color.RGB{R: 1, G: 1, B: 1}, r.RGB(ctx))
}

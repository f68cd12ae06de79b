package link

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

type fakePort struct {
	io.Reader
	out    bytes.Buffer
	closed bool
	closes int
}

func (p *fakePort) Write(b []byte) (int, error) { return p.out.Write(b) }

func (p *fakePort) Close() error {
	p.closed = true
	p.closes++
	return nil
}

func newTestLink(input string) (*Link, *fakePort, *time.Time) {
	port := &fakePort{Reader: strings.NewReader(input)}
	l := New(port)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, port, &now
}

const fullFrame = `{"d":[120,35,2500,40,9999],"rgb":[255,0,0],"line":[10,800,10],"euler":[0,-12,90],"acc":[0,0,9.81],"gyro":[1,2,3],"ok":true,"cancel":false,"bump":false}`

func TestFeed_FullFrame(t *testing.T) {
	l, _, _ := newTestLink("")
	ctx := context.Background()
	require.NoError(t, l.Feed([]byte(fullFrame)))

	raw, err := l.ReadDistances(ctx)
	require.NoError(t, err)
	f := sensor.NormalizeDistances(raw)
	c, ok := f.Get(sensor.Center)
	assert.True(t, ok)
	assert.Equal(t, 250.0, c)
	_, ok = f.Get(sensor.Right)
	assert.False(t, ok)

	r, g, b, err := l.ReadColor(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{255, 0, 0}, []float64{r, g, b})

	_, center, _, err := l.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, 800.0, center)

	_, pitch, _, err := l.ReadOrientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, -12.0, pitch)

	acc, err := l.ReadAcceleration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9.81, acc.Z)

	gyro, err := l.ReadAngularRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, gyro.Y)

	pressed, err := l.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, pressed)
	pressed, err = l.Cancel(ctx)
	require.NoError(t, err)
	assert.False(t, pressed)
	hit, err := l.Bumped(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFeed_KeyedDistances(t *testing.T) {
	l, _, _ := newTestLink("")
	require.NoError(t, l.Feed([]byte(`{"d":{"L":12,"CL":20,"C":30,"CR":40,"R":50}}`)))

	raw, err := l.ReadDistances(context.Background())
	require.NoError(t, err)
	f := sensor.NormalizeDistances(raw)
	assert.Equal(t, 5, f.Present())
}

func TestFeed_MissingFields(t *testing.T) {
	l, _, _ := newTestLink("")
	ctx := context.Background()
	require.NoError(t, l.Feed([]byte(`{"rgb":[1,2]}`)))

	_, err := l.ReadDistances(ctx)
	assert.ErrorIs(t, err, robot.ErrUnsupported)
	_, _, _, err = l.ReadOrientation(ctx)
	assert.ErrorIs(t, err, robot.ErrUnsupported)
	_, err = l.Confirm(ctx)
	assert.ErrorIs(t, err, robot.ErrUnsupported)

	_, _, _, err = l.ReadColor(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, robot.ErrUnsupported)
}

func TestFeed_Malformed(t *testing.T) {
	l, _, _ := newTestLink("")
	require.NoError(t, l.Feed([]byte(`{"ok":true}`)))
	assert.Error(t, l.Feed([]byte(`{"ok":tr`)))
	assert.Equal(t, 1, l.Dropped())

	// the last good frame is still served
	pressed, err := l.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, pressed)
}

func TestStale(t *testing.T) {
	l, _, now := newTestLink("")
	ctx := context.Background()

	_, err := l.Confirm(ctx)
	assert.ErrorIs(t, err, ErrStale, "no frame yet")

	require.NoError(t, l.Feed([]byte(`{"ok":true}`)))
	*now = now.Add(DefaultStaleAfter)
	_, err = l.Confirm(ctx)
	assert.NoError(t, err)

	*now = now.Add(time.Millisecond)
	_, err = l.Confirm(ctx)
	assert.ErrorIs(t, err, ErrStale)

	l.StaleAfter = time.Second
	_, err = l.Confirm(ctx)
	assert.NoError(t, err)
}

func TestRobotDegradesOnStaleLink(t *testing.T) {
	l, _, now := newTestLink("")
	require.NoError(t, l.Feed([]byte(fullFrame)))
	*now = now.Add(time.Second)

	r := &robot.Robot{Distance: l, Buttons: l, IMU: l}
	ctx := context.Background()
	assert.Zero(t, r.Distances(ctx).Present())
	assert.False(t, r.ConfirmPressed(ctx))
	assert.Zero(t, r.Pitch(ctx).Pitch)
}

func TestRun(t *testing.T) {
	input := `{"ok":false}` + "\n" + "garbage\n" + `{"ok":true,"bump":true}` + "\n"
	l, port, _ := newTestLink(input)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := l.Run(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, l.Dropped())

	hit, err := l.Bumped(ctx)
	require.NoError(t, err)
	assert.True(t, hit)

	require.NoError(t, l.Close())
	assert.True(t, port.closed)
	_, err = l.Bumped(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRun_EndOfStreamLeavesNothingBehind(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		l, port, _ := newTestLink(`{"ok":true}` + "\n")
		ctx, cancel := context.WithCancel(context.Background())
		assert.ErrorIs(t, l.Run(ctx), io.EOF)
		cancel()
		assert.Zero(t, port.closes, "cancel after the stream ended must not close it")

		require.NoError(t, l.Close())
		require.NoError(t, l.Close())
		assert.Equal(t, 1, port.closes)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

func TestRun_CancelClosesStream(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	l := New(struct {
		io.Reader
		io.Writer
		io.Closer
	}{pr, io.Discard, pr})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	_, err := pw.Write([]byte(`{"ok":true}` + "\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, l.Close())
}

func TestSetIndicator(t *testing.T) {
	l, port, _ := newTestLink("")
	ctx := context.Background()

	require.NoError(t, l.SetIndicator(ctx, robot.LightGo))
	require.NoError(t, l.SetIndicator(ctx, robot.LightOff))
	assert.Equal(t, "{\"led\":[0,1,0]}\n{\"led\":[0,0,0]}\n", port.out.String())
}

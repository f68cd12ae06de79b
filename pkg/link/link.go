// Package link talks to the sensor board over a serial line. The board
// streams newline-delimited JSON telemetry frames; the link keeps the most
// recent one and serves the pkg/robot sensor contracts from it. Indicator
// changes go back down the same line.
package link

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"go.bug.st/serial"

	"github.com/gwillem/alvik/pkg/robot"
	"github.com/gwillem/alvik/pkg/sensor"
)

// DefaultStaleAfter is how old a frame may be before reads fail.
const DefaultStaleAfter = 500 * time.Millisecond

var (
	// ErrStale is returned when no recent frame has arrived.
	ErrStale = errors.New("no recent telemetry")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("link closed")
)

// Frame is one telemetry message. Absent fields mean the board did not
// report that sensor.
type Frame struct {
	Distances *sensor.RawDistances `json:"d,omitempty"`
	RGB       []float64            `json:"rgb,omitempty"`
	Line      []float64            `json:"line,omitempty"`
	Euler     []float64            `json:"euler,omitempty"`
	Accel     []float64            `json:"acc,omitempty"`
	Gyro      []float64            `json:"gyro,omitempty"`
	OK        *bool                `json:"ok,omitempty"`
	Cancel    *bool                `json:"cancel,omitempty"`
	Bump      *bool                `json:"bump,omitempty"`
}

type ledCommand struct {
	LED [3]float64 `json:"led"`
}

// Link is a telemetry connection.
type Link struct {
	rw io.ReadWriteCloser

	// StaleAfter overrides DefaultStaleAfter when non-zero.
	StaleAfter time.Duration
	now        func() time.Time

	mu     sync.Mutex
	last   Frame
	at     time.Time
	closed bool
	bad    int

	wmu sync.Mutex
}

// Open opens the serial port named in cfg.
func Open(cfg robot.LinkConfig) (*Link, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open sensor link %s: %w", cfg.Port, err)
	}
	return New(port), nil
}

// New wraps an already open stream.
func New(rw io.ReadWriteCloser) *Link {
	return &Link{rw: rw, now: time.Now}
}

// Close closes the underlying stream. Later calls do nothing.
func (l *Link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	return l.rw.Close()
}

// Run reads frames until ctx is done or the stream ends.
func (l *Link) Run(ctx context.Context) error {
	// cancelling ctx unblocks the scanner by closing the stream
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			l.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		<-stopped
	}()

	sc := bufio.NewScanner(l.rw)
	for sc.Scan() {
		// malformed lines are counted and skipped
		_ = l.Feed(sc.Bytes())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read telemetry: %w", err)
	}
	return io.EOF
}

// Feed decodes one telemetry line and makes it the current frame.
func (l *Link) Feed(line []byte) error {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		l.mu.Lock()
		l.bad++
		l.mu.Unlock()
		return fmt.Errorf("decode frame: %w", err)
	}
	l.mu.Lock()
	l.last, l.at = f, l.now()
	l.mu.Unlock()
	return nil
}

// Dropped returns the number of lines that failed to decode.
func (l *Link) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bad
}

func (l *Link) frame() (Frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return Frame{}, ErrClosed
	}
	stale := l.StaleAfter
	if stale == 0 {
		stale = DefaultStaleAfter
	}
	if l.at.IsZero() || l.now().Sub(l.at) > stale {
		return Frame{}, ErrStale
	}
	return l.last, nil
}

func triple(v []float64, what string) (a, b, c float64, err error) {
	if v == nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", what, robot.ErrUnsupported)
	}
	if len(v) < 3 {
		return 0, 0, 0, fmt.Errorf("%s: want 3 values, got %d", what, len(v))
	}
	return v[0], v[1], v[2], nil
}

func (l *Link) ReadDistances(context.Context) (sensor.RawDistances, error) {
	f, err := l.frame()
	if err != nil {
		return sensor.RawDistances{}, err
	}
	if f.Distances == nil {
		return sensor.RawDistances{}, fmt.Errorf("distances: %w", robot.ErrUnsupported)
	}
	return *f.Distances, nil
}

func (l *Link) ReadColor(context.Context) (r, g, b float64, err error) {
	f, err := l.frame()
	if err != nil {
		return 0, 0, 0, err
	}
	return triple(f.RGB, "color")
}

func (l *Link) ReadLine(context.Context) (left, center, right float64, err error) {
	f, err := l.frame()
	if err != nil {
		return 0, 0, 0, err
	}
	return triple(f.Line, "line")
}

func (l *Link) ReadOrientation(context.Context) (roll, pitch, yaw float64, err error) {
	f, err := l.frame()
	if err != nil {
		return 0, 0, 0, err
	}
	return triple(f.Euler, "orientation")
}

func (l *Link) vector(v []float64, what string) (r3.Vector, error) {
	x, y, z, err := triple(v, what)
	if err != nil {
		return r3.Vector{}, err
	}
	return r3.Vector{X: x, Y: y, Z: z}, nil
}

func (l *Link) ReadAcceleration(context.Context) (r3.Vector, error) {
	f, err := l.frame()
	if err != nil {
		return r3.Vector{}, err
	}
	return l.vector(f.Accel, "acceleration")
}

func (l *Link) ReadAngularRate(context.Context) (r3.Vector, error) {
	f, err := l.frame()
	if err != nil {
		return r3.Vector{}, err
	}
	return l.vector(f.Gyro, "angular rate")
}

func flag(v *bool, what string) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("%s: %w", what, robot.ErrUnsupported)
	}
	return *v, nil
}

func (l *Link) Confirm(context.Context) (bool, error) {
	f, err := l.frame()
	if err != nil {
		return false, err
	}
	return flag(f.OK, "ok button")
}

func (l *Link) Cancel(context.Context) (bool, error) {
	f, err := l.frame()
	if err != nil {
		return false, err
	}
	return flag(f.Cancel, "cancel button")
}

func (l *Link) Bumped(context.Context) (bool, error) {
	f, err := l.frame()
	if err != nil {
		return false, err
	}
	return flag(f.Bump, "bumper")
}

// SetIndicator sends the light colour to the board.
func (l *Link) SetIndicator(_ context.Context, light robot.Light) error {
	r, g, b := light.RGB()
	data, err := json.Marshal(ledCommand{LED: [3]float64{r, g, b}})
	if err != nil {
		return err
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if _, err := l.rw.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write led: %w", err)
	}
	return nil
}

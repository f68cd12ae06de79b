package behavior

import (
	"time"

	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/sensor"
)

// fakeSenses serves fixed readings to a behaviour.
type fakeSenses struct {
	frame  sensor.DistanceFrame
	rgb    color.RGB
	pitch  sensor.PitchSample
	bumped bool
	line   [3]float64
	lineOK bool
}

func (f *fakeSenses) Distances() sensor.DistanceFrame { return f.frame }
func (f *fakeSenses) Color() color.RGB                { return f.rgb }
func (f *fakeSenses) Pitch() sensor.PitchSample       { return f.pitch }
func (f *fakeSenses) Bumped() bool                    { return f.bumped }

func (f *fakeSenses) Line() (float64, float64, float64, bool) {
	return f.line[0], f.line[1], f.line[2], f.lineOK
}

func framed(l, cl, c, cr, r float64) *fakeSenses {
	return &fakeSenses{frame: sensor.FrameOf(l, cl, c, cr, r)}
}

func pitched(p float64) *fakeSenses {
	return &fakeSenses{pitch: sensor.PitchSample{Pitch: p}}
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// at returns t0 plus n ticks of d.
func at(n int, d time.Duration) time.Time {
	return t0.Add(time.Duration(n) * d)
}

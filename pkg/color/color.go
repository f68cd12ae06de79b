// Package color classifies floor colours into coarse hue/brightness buckets.
package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Defaults used by the tile levels.
const (
	DefaultHueBins    = 12
	DefaultDarkCutoff = 0.35
	DefaultTolerance  = 1
)

// RGB is a colour reading with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// Black is what a failed colour read reports.
var Black = RGB{}

// Colorful converts the reading for display purposes.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
}

// Max returns the brightest channel.
func (c RGB) Max() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Hue returns the chroma-projected hue angle in [0,360).
func (c RGB) Hue() float64 {
	x := 2*c.R - c.G - c.B
	y := math.Sqrt(3) * (c.G - c.B)
	deg := math.Atan2(y, x) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Bucket is a discretised (hue, brightness) class. Value is 0 for dark and 1
// for light readings.
type Bucket struct {
	Hue   int
	Value int
}

func (b Bucket) String() string {
	return fmt.Sprintf("(%d,%d)", b.Hue, b.Value)
}


func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Classifier maps readings to buckets.
type Classifier struct {
	HueBins    int
	DarkCutoff float64
}

// DefaultClassifier returns the 12-bin classifier used by the tile levels.
func DefaultClassifier() Classifier {
	return Classifier{HueBins: DefaultHueBins, DarkCutoff: DefaultDarkCutoff}
}

func (cl Classifier) bins() int {
	if cl.HueBins <= 0 {
		return DefaultHueBins
	}
	return cl.HueBins
}

// Same reports whether a and b are the same tile: both axes differ by at
// most tol bins. Hue is circular, so the first and last bins are neighbours.
func (cl Classifier) Same(a, b Bucket, tol int) bool {
	bins := cl.bins()
	dh := absInt(a.Hue-b.Hue) % bins
	if bins-dh < dh {
		dh = bins - dh
	}
	return dh <= tol && absInt(a.Value-b.Value) <= tol
}

// Classify buckets a normalised reading.
func (cl Classifier) Classify(c RGB) Bucket {
	bins := cl.bins()
	hue := int(math.Floor(c.Hue() / 360 * float64(bins)))
	if hue >= bins {
		hue = bins - 1
	}
	value := 0
	if c.Max() >= cl.DarkCutoff {
		value = 1
	}
	return Bucket{Hue: hue, Value: value}
}

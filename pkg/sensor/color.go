package sensor

import (
	"math"

	"github.com/gwillem/alvik/pkg/color"
)

// ByteScaleThreshold: readings whose brightest channel exceeds this are taken
// to be on a 0..255 scale.
const ByteScaleThreshold = 1.5

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// NormalizeColor brings an RGB reading of unknown scale into [0,1].
func NormalizeColor(r, g, b float64) color.RGB {
	if math.Max(1, math.Max(r, math.Max(g, b))) > ByteScaleThreshold {
		r, g, b = r/255, g/255, b/255
	}
	return color.RGB{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// NormalizeLine uses the three reflectance line sensors as a crude colour
// reading when no colour sensor is available.
func NormalizeLine(left, center, right float64) color.RGB {
	mx := math.Max(1, math.Max(left, math.Max(center, right)))
	return color.RGB{R: left / mx, G: center / mx, B: right / mx}
}

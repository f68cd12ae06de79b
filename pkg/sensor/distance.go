// Package sensor turns raw robot readings into bounded, validated values.
package sensor

import (
	"encoding/json"
	"fmt"
)

// Valid distance band in centimetres.
const (
	MinCM = 2.0
	MaxCM = 400.0
)

// MillimeterCutoff is the raw magnitude above which a reading is taken to be
// in millimetres. The time-of-flight board occasionally reports mm.
const MillimeterCutoff = 1000.0

// Channel identifies one of the five distance zones, left to right.
type Channel int

const (
	Left Channel = iota
	CenterLeft
	Center
	CenterRight
	Right

	NumChannels
)

var channelNames = [NumChannels]string{"L", "CL", "C", "CR", "R"}

// String returns the short channel name used in telemetry.
func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// keyAliases lists the accepted keys for the key/value form of a reading.
var keyAliases = [NumChannels][]string{
	{"L", "left"},
	{"CL", "center_left"},
	{"C", "center"},
	{"CR", "center_right"},
	{"R", "right"},
}

// RawDistances is a distance reading as delivered by the sensing hardware:
// either an array of at least five values or a keyed form. Units are
// ambiguous (cm or mm).
type RawDistances struct {
	Values []float64
	Keyed  map[string]float64
}

// UnmarshalJSON accepts both `[l, cl, c, cr, r]` and `{"L": .., "CL": ..}`.
func (r *RawDistances) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err == nil {
		r.Values, r.Keyed = values, nil
		return nil
	}
	var keyed map[string]float64
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("parse distances: %w", err)
	}
	r.Values, r.Keyed = nil, keyed
	return nil
}

// channel returns the raw value for c, or 0 when the reading lacks it.
func (r RawDistances) channel(c Channel) float64 {
	if len(r.Values) >= int(NumChannels) {
		return r.Values[c]
	}
	for _, key := range keyAliases[c] {
		if v, ok := r.Keyed[key]; ok {
			return v
		}
	}
	return 0
}

// DistanceFrame holds one sample of the five distance channels in cm.
// Absent channels carry no value; present ones lie within [MinCM, MaxCM].
type DistanceFrame struct {
	cm    [NumChannels]float64
	valid [NumChannels]bool
}

// ToCentimeters rescales millimetre-looking readings.
func ToCentimeters(raw float64) float64 {
	if raw > MillimeterCutoff {
		return raw / 10
	}
	return raw
}

// NormalizeDistances builds a frame from a raw reading. Channels outside the
// valid band after unit correction are absent.
func NormalizeDistances(raw RawDistances) DistanceFrame {
	var f DistanceFrame
	if len(raw.Values) < int(NumChannels) && raw.Keyed == nil {
		return f
	}
	for c := Channel(0); c < NumChannels; c++ {
		f.Set(c, ToCentimeters(raw.channel(c)))
	}
	return f
}

// FrameOf builds a frame from centimetre values; out-of-band values are absent.
func FrameOf(l, cl, c, cr, r float64) DistanceFrame {
	var f DistanceFrame
	for ch, v := range [NumChannels]float64{l, cl, c, cr, r} {
		f.Set(Channel(ch), v)
	}
	return f
}

// Set stores v for channel c if it lies in the valid band, otherwise marks
// the channel absent.
func (f *DistanceFrame) Set(c Channel, cm float64) {
	if cm < MinCM || cm > MaxCM {
		f.cm[c], f.valid[c] = 0, false
		return
	}
	f.cm[c], f.valid[c] = cm, true
}

// Get returns the distance for channel c.
func (f DistanceFrame) Get(c Channel) (float64, bool) {
	return f.cm[c], f.valid[c]
}

// Present returns the number of valid channels.
func (f DistanceFrame) Present() int {
	n := 0
	for _, ok := range f.valid {
		if ok {
			n++
		}
	}
	return n
}

func (f DistanceFrame) min(chs ...Channel) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, c := range chs {
		if !f.valid[c] {
			continue
		}
		if !found || f.cm[c] < best {
			best, found = f.cm[c], true
		}
	}
	return best, found
}

func (f DistanceFrame) mean(chs ...Channel) (float64, bool) {
	var sum float64
	n := 0
	for _, c := range chs {
		if f.valid[c] {
			sum += f.cm[c]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Min is the closest distance over all channels ("too close" checks).
func (f DistanceFrame) Min() (float64, bool) {
	return f.min(Left, CenterLeft, Center, CenterRight, Right)
}

// FrontMin is the closest of the three forward channels.
func (f DistanceFrame) FrontMin() (float64, bool) {
	return f.min(CenterLeft, Center, CenterRight)
}

// FrontMean averages the three forward channels.
func (f DistanceFrame) FrontMean() (float64, bool) {
	return f.mean(CenterLeft, Center, CenterRight)
}

// Right averages the centre-right and right channels (right wall proximity).
func (f DistanceFrame) Right() (float64, bool) {
	return f.mean(CenterRight, Right)
}

// Left is the left wall proximity.
func (f DistanceFrame) Left() (float64, bool) {
	return f.mean(Left)
}

// String formats the frame for logs, "-" for absent channels.
func (f DistanceFrame) String() string {
	s := ""
	for c := Channel(0); c < NumChannels; c++ {
		if c > 0 {
			s += " "
		}
		if f.valid[c] {
			s += fmt.Sprintf("%s=%.0f", c, f.cm[c])
		} else {
			s += c.String() + "=-"
		}
	}
	return s
}

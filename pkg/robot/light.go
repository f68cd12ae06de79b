package robot

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Light is a status colour shown on both RGB LEDs.
type Light int

const (
	LightOff   Light = iota
	LightWait        // blue: waiting for OK
	LightGo          // green: running
	LightPause       // yellow: paused
	LightDone        // white: highlight / finished
	LightWarn        // red: avoiding, error
	LightStop        // red: hard stop
	LightTurn        // magenta: pivoting
	LightScan        // cyan: scanning tiles
	LightOrange      // orange: menu colour of level 2
)

var lightColors = map[Light]colorful.Color{
	LightOff:    {R: 0, G: 0, B: 0},
	LightWait:   {R: 0, G: 0, B: 1},
	LightGo:     {R: 0, G: 1, B: 0},
	LightPause:  {R: 1, G: 1, B: 0},
	LightDone:   {R: 1, G: 1, B: 1},
	LightWarn:   {R: 1, G: 0, B: 0},
	LightStop:   {R: 1, G: 0, B: 0},
	LightTurn:   {R: 1, G: 0, B: 1},
	LightScan:   {R: 0, G: 1, B: 1},
	LightOrange: {R: 1, G: 0.5, B: 0},
}

var lightNames = map[Light]string{
	LightOff:    "off",
	LightWait:   "wait",
	LightGo:     "go",
	LightPause:  "pause",
	LightDone:   "done",
	LightWarn:   "warn",
	LightStop:   "stop",
	LightTurn:   "turn",
	LightScan:   "scan",
	LightOrange: "orange",
}

func (l Light) String() string {
	if n, ok := lightNames[l]; ok {
		return n
	}
	return "unknown"
}

// Color returns the LED colour.
func (l Light) Color() colorful.Color {
	return lightColors[l]
}

// RGB returns the LED channels in [0,1].
func (l Light) RGB() (r, g, b float64) {
	c := l.Color()
	return c.R, c.G, c.B
}

// Hex returns the colour as "#rrggbb" for terminal rendering.
func (l Light) Hex() string {
	return l.Color().Hex()
}

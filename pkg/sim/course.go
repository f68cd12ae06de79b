package sim

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/gwillem/alvik/pkg/color"
)

// Segment is a wall between two points, in cm.
type Segment struct {
	A, B r2.Point
}

// Wall returns the segment from (x1,y1) to (x2,y2).
func Wall(x1, y1, x2, y2 float64) Segment {
	return Segment{A: r2.Point{X: x1, Y: y1}, B: r2.Point{X: x2, Y: y2}}
}

// cast returns the distance along the unit ray from origin to s.
func (s Segment) cast(origin, dir r2.Point) (float64, bool) {
	edge := s.B.Sub(s.A)
	den := dir.Cross(edge)
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	rel := s.A.Sub(origin)
	t := rel.Cross(edge) / den
	u := rel.Cross(dir) / den
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// Tile is a stretch of floor colour along the x axis, [From,To).
type Tile struct {
	From, To float64
	Color    color.RGB
}

// Ramp is a stretch of constant slope along the x axis, [From,To), in
// degrees; positive climbs when driving towards +x.
type Ramp struct {
	From, To float64
	Deg      float64
}

// Course is the environment the robot drives in.
type Course struct {
	Name  string
	Walls []Segment
	Tiles []Tile
	Ramps []Ramp
	Floor color.RGB

	// LineY is the y of a dark line along the x axis; NaN for none.
	LineY     float64
	LineWidth float64
}

// FloorAt returns the floor colour under p.
func (c *Course) FloorAt(p r2.Point) color.RGB {
	for _, t := range c.Tiles {
		if p.X >= t.From && p.X < t.To {
			return t.Color
		}
	}
	return c.Floor
}

// SlopeAt returns the slope along +x under p, in degrees.
func (c *Course) SlopeAt(p r2.Point) float64 {
	for _, r := range c.Ramps {
		if p.X >= r.From && p.X < r.To {
			return r.Deg
		}
	}
	return 0
}

// Reflectance returns a line sensor value for p: high over the line.
func (c *Course) Reflectance(p r2.Point) float64 {
	if math.IsNaN(c.LineY) || c.LineWidth <= 0 {
		return 50
	}
	if math.Abs(p.Y-c.LineY) <= c.LineWidth/2 {
		return 900
	}
	return 50
}

// Cast returns the nearest wall along the ray, if any.
func (c *Course) Cast(origin, dir r2.Point) (float64, bool) {
	best, hit := math.Inf(1), false
	for _, w := range c.Walls {
		if d, ok := w.cast(origin, dir); ok && d < best {
			best, hit = d, true
		}
	}
	return best, hit
}

// Floor colours.
var (
	Red   = color.RGB{R: 0.3}
	Green = color.RGB{R: 0.24, G: 0.9}
	Blue  = color.RGB{B: 0.9}
	Grey  = color.RGB{R: 0.5, G: 0.5, B: 0.5}
)

// OpenField has no walls and a grey floor.
func OpenField() *Course {
	return &Course{Name: "open", Floor: Grey, LineY: math.NaN()}
}

// Corridor is a straight corridor along +x of the given width and length,
// open at both ends.
func Corridor(width, length float64) *Course {
	h := width / 2
	return &Course{
		Name:  "corridor",
		Floor: Grey,
		LineY: math.NaN(),
		Walls: []Segment{
			Wall(-20, h, length, h),
			Wall(-20, -h, length, -h),
		},
	}
}

// Beam is a seesaw profile along +x: flat, climb, level middle, descent,
// flat floor.
func Beam() *Course {
	return &Course{
		Name:  "beam",
		Floor: Grey,
		LineY: math.NaN(),
		Ramps: []Ramp{
			{From: 10, To: 50, Deg: 14},
			{From: 50, To: 60, Deg: 0},
			{From: 60, To: 100, Deg: -14},
		},
	}
}

// TileStrip lays out the given tile colours along +x, each size cm long and
// separated by a thin blue joint, with an end wall after the last tile.
func TileStrip(size float64, tiles ...color.RGB) *Course {
	const joint = 1.0
	c := &Course{Name: "tiles", Floor: Grey, LineY: math.NaN()}
	x := -size / 2
	for i, col := range tiles {
		if i > 0 {
			c.Tiles = append(c.Tiles, Tile{From: x, To: x + joint, Color: Blue})
			x += joint
		}
		c.Tiles = append(c.Tiles, Tile{From: x, To: x + size, Color: col})
		x += size
	}
	end := x + 10
	c.Walls = []Segment{Wall(end, -50, end, 50)}
	return c
}

// LineTrack is a straight dark line along the x axis.
func LineTrack() *Course {
	return &Course{Name: "line", Floor: Grey, LineY: 0, LineWidth: 2}
}

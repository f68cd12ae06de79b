package behavior

import (
	"github.com/gwillem/alvik/pkg/color"
	"github.com/gwillem/alvik/pkg/debounce"
)

// TileLog remembers the tiles visited on the outbound leg, in order, and
// how often each bucket was seen.
type TileLog struct {
	tiles  []color.Bucket
	counts map[color.Bucket]int
}

func NewTileLog() *TileLog {
	return &TileLog{counts: make(map[color.Bucket]int)}
}

// Append records a stable tile.
func (l *TileLog) Append(b color.Bucket) {
	l.tiles = append(l.tiles, b)
	l.counts[b]++
}

func (l *TileLog) Len() int { return len(l.tiles) }

// Buckets returns a copy of the visit order.
func (l *TileLog) Buckets() []color.Bucket {
	return append([]color.Bucket(nil), l.tiles...)
}

// Count returns how often b was visited.
func (l *TileLog) Count(b color.Bucket) int {
	return l.counts[b]
}

// Target picks the tile to return to: the most recently visited tile seen
// exactly once, else the last tile visited. ok is false for an empty log.
func (l *TileLog) Target() (b color.Bucket, ok bool) {
	if len(l.tiles) == 0 {
		return color.Bucket{}, false
	}
	for i := len(l.tiles) - 1; i >= 0; i-- {
		if l.counts[l.tiles[i]] == 1 {
			return l.tiles[i], true
		}
	}
	return l.tiles[len(l.tiles)-1], true
}

// TileDetector reports a tile once its bucket has held, within tolerance,
// for the dwell count of consecutive samples.
type TileDetector struct {
	cl      color.Classifier
	tol     int
	anchor  color.Bucket
	has     bool
	counter *debounce.Counter
}

func NewTileDetector(cl color.Classifier, dwell, tol int) *TileDetector {
	return &TileDetector{cl: cl, tol: tol, counter: debounce.NewCounter(dwell)}
}

// Observe feeds one classified sample and reports whether a stable tile
// was entered on this tick. The tile is Current().
func (d *TileDetector) Observe(b color.Bucket) bool {
	if !d.has || !d.cl.Same(d.anchor, b, d.tol) {
		d.anchor, d.has = b, true
		d.counter.Reset()
	}
	return d.counter.Observe(true)
}

// Current returns the bucket the detector is dwelling on.
func (d *TileDetector) Current() color.Bucket {
	return d.anchor
}

// Stable reports whether the current bucket has held long enough.
func (d *TileDetector) Stable() bool {
	return d.has && d.counter.Reached()
}

// Reset forgets the current tile.
func (d *TileDetector) Reset() {
	d.has = false
	d.counter.Reset()
}

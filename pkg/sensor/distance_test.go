package sensor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCentimeters(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{2500, 250},
		{1000, 1000}, // at the cutoff the value is still taken as cm
		{1001, 100.1},
		{35, 35},
		{0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ToCentimeters(tt.raw), 1e-9, "raw %v", tt.raw)
	}
}

func TestNormalizeDistances(t *testing.T) {
	f := NormalizeDistances(RawDistances{Values: []float64{2500, 9999, 1.5, 400, 2}})

	v, ok := f.Get(Left)
	assert.True(t, ok)
	assert.Equal(t, 250.0, v)

	_, ok = f.Get(CenterLeft)
	assert.False(t, ok, "999.9 cm is out of band")
	_, ok = f.Get(Center)
	assert.False(t, ok, "1.5 cm is below the band")

	v, ok = f.Get(CenterRight)
	assert.True(t, ok)
	assert.Equal(t, 400.0, v)
	v, ok = f.Get(Right)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 3, f.Present())
}

func TestNormalizeDistances_Short(t *testing.T) {
	f := NormalizeDistances(RawDistances{Values: []float64{10, 20, 30}})
	assert.Equal(t, 0, f.Present())

	f = NormalizeDistances(RawDistances{})
	assert.Equal(t, 0, f.Present())
}

func TestRawDistances_UnmarshalJSON(t *testing.T) {
	var arr RawDistances
	require.NoError(t, json.Unmarshal([]byte(`[10, 20, 30, 40, 50, 60]`), &arr))
	f := NormalizeDistances(arr)
	assert.Equal(t, 5, f.Present())
	v, _ := f.Get(Right)
	assert.Equal(t, 50.0, v)

	var keyed RawDistances
	require.NoError(t, json.Unmarshal([]byte(`{"L": 12, "center_left": 250, "C": 30, "right": 3000}`), &keyed))
	f = NormalizeDistances(keyed)
	v, ok := f.Get(Left)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)
	v, ok = f.Get(CenterLeft)
	assert.True(t, ok)
	assert.Equal(t, 250.0, v)
	_, ok = f.Get(CenterRight)
	assert.False(t, ok, "missing key is absent")
	v, ok = f.Get(Right)
	assert.True(t, ok)
	assert.Equal(t, 300.0, v)

	var bad RawDistances
	assert.Error(t, json.Unmarshal([]byte(`"far"`), &bad))
}

func TestDistanceFrame_Aggregates(t *testing.T) {
	f := FrameOf(30, 20, 1, 10, 40)

	v, ok := f.Min()
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	v, ok = f.FrontMin()
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	v, ok = f.FrontMean()
	assert.True(t, ok)
	assert.Equal(t, 15.0, v, "absent centre is skipped")

	v, ok = f.Right()
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)

	v, ok = f.Left()
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)

	assert.Equal(t, "L=30 CL=20 C=- CR=10 R=40", f.String())
}

func TestDistanceFrame_EmptyAggregates(t *testing.T) {
	var f DistanceFrame
	for name, agg := range map[string]func() (float64, bool){
		"min":        f.Min,
		"front min":  f.FrontMin,
		"front mean": f.FrontMean,
		"right":      f.Right,
		"left":       f.Left,
	} {
		_, ok := agg()
		assert.False(t, ok, name)
	}
}

func TestChannel_String(t *testing.T) {
	assert.Equal(t, "CR", CenterRight.String())
	assert.Equal(t, "Channel(7)", Channel(7).String())
}

package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tolerance = 1e-9

func TestCartesianRoundTrip(t *testing.T) {
	tests := []Direction{
		{0, 0}, {90, 0}, {-90, 0}, {45, 30}, {-135, -60}, {179, 10}, {10, 89},
	}
	for _, d := range tests {
		v := ToCartesian(d)
		assert.InDelta(t, 1.0, r3.Norm(v), tolerance)

		got := FromCartesian(v)
		assert.InDelta(t, d.Azimuth, got.Azimuth, 1e-7, "azimuth of %v", d)
		assert.InDelta(t, d.Elevation, got.Elevation, 1e-7, "elevation of %v", d)
	}
}

func TestToCartesian_Axes(t *testing.T) {
	front := ToCartesian(Direction{0, 0})
	assert.InDelta(t, 1.0, front.X, tolerance)

	left := ToCartesian(Direction{90, 0})
	assert.InDelta(t, 1.0, left.Y, tolerance)

	up := ToCartesian(Direction{0, 90})
	assert.InDelta(t, 1.0, up.Z, tolerance)
}

func TestIsRing(t *testing.T) {
	ring := []Direction{{0, 10}, {90, 10}, {180, 10}, {-90, 10}}
	assert.True(t, IsRing(ring, 1e-6))

	spread := append(ring, Direction{0, 11})
	assert.False(t, IsRing(spread, 1e-6))

	lo, hi := ElevationRange(spread)
	assert.InDelta(t, 10.0, lo, tolerance)
	assert.InDelta(t, 11.0, hi, tolerance)
}

func TestIndex_Nearest(t *testing.T) {
	dirs := FibonacciGrid(200)
	idx := NewIndex(dirs)
	require.Equal(t, 200, idx.Len())

	for i := 0; i < len(dirs); i += 17 {
		n := idx.Nearest(ToCartesian(dirs[i]))
		assert.Equal(t, i, n.Index)
		assert.InDelta(t, 0.0, n.Distance, tolerance)
	}
}

func TestIndex_NearestN(t *testing.T) {
	dirs := []Direction{{0, 0}, {10, 0}, {20, 0}, {90, 0}, {180, 0}}
	idx := NewIndex(dirs)

	got := idx.NearestN(ToCartesian(Direction{2, 0}), 3)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, 2, got[2].Index)
	assert.LessOrEqual(t, got[0].Distance, got[1].Distance)

	assert.Len(t, idx.NearestN(ToCartesian(Direction{}), 10), len(dirs))
}

func TestGridWeights_Uniform(t *testing.T) {
	dirs := FibonacciGrid(100)
	w, err := GridWeights(dirs)
	require.NoError(t, err)
	require.Len(t, w, len(dirs))

	var sum float64
	for _, v := range w {
		sum += v
		assert.InDelta(t, 4*math.Pi/100, v, 0.5*4*math.Pi/100)
	}
	assert.InDelta(t, 4*math.Pi, sum, 1e-9)
}

func TestGridWeights_Failures(t *testing.T) {
	_, err := GridWeights(FibonacciGrid(MaxGridDirections + 1))
	require.ErrorIs(t, err, ErrGridWeights)

	_, err = GridWeights([]Direction{{0, 0}, {90, 0}})
	require.ErrorIs(t, err, ErrGridWeights)

	_, err = GridWeights([]Direction{{0, 0}, {90, 0}, {180, 0}, {-90, 0}})
	require.ErrorIs(t, err, ErrGridWeights)
}

func TestIndex_DistanceIsChordLength(t *testing.T) {
	dirs := []Direction{{0, 0}, {90, 0}, {180, 0}}
	idx := NewIndex(dirs)

	got := idx.NearestN(ToCartesian(Direction{0, 0}), 3)
	require.Len(t, got, 3)
	assert.InDelta(t, 0.0, got[0].Distance, tolerance)
	assert.InDelta(t, math.Sqrt2, got[1].Distance, 1e-9)
	assert.InDelta(t, 2.0, got[2].Distance, 1e-9)

	n := idx.Nearest(ToCartesian(Direction{Azimuth: 60}))
	assert.Equal(t, 1, n.Index)
	assert.InDelta(t, 2*math.Sin(math.Pi/12), n.Distance, 1e-9)
}

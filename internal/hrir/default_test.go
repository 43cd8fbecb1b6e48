package hrir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-binaural/internal/sphere"
	"github.com/tphakala/go-binaural/internal/testutil"
)

func findDir(t *testing.T, set *Set, az, el float64) int {
	t.Helper()
	for i, d := range set.Directions {
		if d.Azimuth == az && d.Elevation == el {
			return i
		}
	}
	require.Failf(t, "direction not found", "(%g, %g)", az, el)
	return -1
}

func TestDefault_Shape(t *testing.T) {
	set := Default()
	require.NoError(t, set.Validate())
	assert.Same(t, set, Default())

	assert.Equal(t, DefaultSampleRate, set.SampleRate)
	assert.Equal(t, DefaultLength, set.Length)
	assert.Len(t, set.Directions, len(DefaultDirections()))
	testutil.AssertNoNaNOrInf(t, set.Data)
}

func TestDefault_FrontIsSymmetric(t *testing.T) {
	set := Default()
	front := findDir(t, set, 0, 0)
	assert.InDeltaSlice(t, set.IR(front, 0), set.IR(front, 1), 1e-12)
}

func TestDefault_LateralMirror(t *testing.T) {
	set := Default()
	left := findDir(t, set, 90, 0)
	right := findDir(t, set, -90, 0)

	assert.InDeltaSlice(t, set.IR(left, 0), set.IR(right, 1), 1e-12)
	assert.InDeltaSlice(t, set.IR(left, 1), set.IR(right, 0), 1e-12)

	// The near ear is louder than the far ear at high frequencies.
	assert.Greater(t, testutil.Energy(set.IR(left, 0)), testutil.Energy(set.IR(left, 1)))
}

func TestDefault_UnitDCGain(t *testing.T) {
	set := Default()
	for _, d := range []int{0, 100, set.NumDirs() - 1} {
		for e := range NumEars {
			var sum float64
			for _, v := range set.IR(d, e) {
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-3, "dir %d ear %d", d, e)
		}
	}
}

func TestEstimateITDs(t *testing.T) {
	set := Default()
	itds, err := EstimateITDs(set)
	require.NoError(t, err)
	require.Len(t, itds, set.NumDirs())

	front := findDir(t, set, 0, 0)
	left := findDir(t, set, 90, 0)
	right := findDir(t, set, -90, 0)

	assert.InDelta(t, 0.0, itds[front], 1e-12)
	assert.Greater(t, itds[left], 0.0)
	assert.Less(t, itds[right], 0.0)
	assert.InDelta(t, itds[left], -itds[right], 1.0/DefaultSampleRate)

	// Woodworth lateral ITD (a/c)(1 + π/2), shifted by the shadow filters' group delay.
	maxITD := headRadius / speedOfSound * (1 + math.Pi/2)
	assert.InDelta(t, maxITD, itds[left], 0.5*maxITD)
}

func TestEstimateITDs_Truncates(t *testing.T) {
	set := NewSet([]sphere.Direction{{}}, 1000, 3000)
	set.IR(0, 0)[10] = 1
	set.IR(0, 1)[15] = 1
	// A later, larger peak beyond the analysis window is ignored.
	set.IR(0, 0)[2500] = 5

	itds, err := EstimateITDs(set)
	require.NoError(t, err)
	assert.InDelta(t, 5.0/1000, itds[0], 1e-12)
}

func TestResample(t *testing.T) {
	set := NewSet([]sphere.Direction{{}, {Azimuth: 90}}, 48000, 256)
	set.IR(0, 0)[64] = 1
	set.IR(1, 1)[64] = 1

	same, err := Resample(set, 48000, 0)
	require.NoError(t, err)
	assert.Same(t, set, same)

	out, err := Resample(set, 96000, 0)
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	assert.Equal(t, 96000, out.SampleRate)
	assert.Equal(t, 512, out.Length)
	testutil.AssertNoNaNOrInf(t, out.Data)
	assert.Greater(t, testutil.Energy(out.IR(0, 0)), 0.0)

	_, err = Resample(set, 0, 0)
	require.ErrorIs(t, err, ErrInvalidSet)
}

func TestResample_EmitterData(t *testing.T) {
	set := NewSet([]sphere.Direction{{}, {Azimuth: 90}}, 48000, 256)
	set.Emitters = []sphere.Direction{{Azimuth: 30}, {Azimuth: -30}}
	set.EmitterData = [][]float64{make([]float64, len(set.Data)), make([]float64, len(set.Data))}
	set.ForEmitter(0).IR(0, 0)[64] = 1
	set.ForEmitter(1).IR(0, 1)[64] = 1

	out, err := Resample(set, 96000, 0)
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	require.Equal(t, 2, out.NumResponseSets())

	assert.Greater(t, testutil.Energy(out.ForEmitter(0).IR(0, 0)), 0.0)
	assert.InDelta(t, 0.0, testutil.Energy(out.ForEmitter(0).IR(0, 1)), 1e-12)
	assert.InDelta(t, 0.0, testutil.Energy(out.ForEmitter(1).IR(0, 0)), 1e-12)
	assert.Greater(t, testutil.Energy(out.ForEmitter(1).IR(0, 1)), 0.0)
}

func TestNewTable(t *testing.T) {
	set := NewSet([]sphere.Direction{{}, {Azimuth: 90}}, 48000, 64)
	set.IR(0, 0)[0] = 1
	set.IR(0, 1)[0] = 0.5
	set.IR(1, 0)[3] = 2

	table := NewTable(set, []float64{0, 1e-4}, 128)
	assert.Equal(t, 2, table.NumDirs)
	assert.Equal(t, 129, table.Bands)
	require.Len(t, table.Coeffs, 2*129*NumEars)
	require.Len(t, table.Freqs, 129)

	for b := range table.Bands {
		assert.InDelta(t, 1.0, real(table.Coeffs[table.Index(0, b, 0)]), 1e-12)
		assert.InDelta(t, 0.5, table.Mags[table.Index(0, b, 1)], 1e-12)
		assert.InDelta(t, 2.0, table.Mags[table.Index(1, b, 0)], 1e-12)
		assert.InDelta(t, 0.0, table.Mags[table.Index(1, b, 1)], 1e-12)
	}

	dir := table.Direction(1)
	assert.Len(t, dir, 129*NumEars)
	assert.Equal(t, table.Coeffs[table.Index(1, 5, 0)], dir[5*NumEars])

	clone := table.Clone()
	clone.Coeffs[0] = 42
	assert.NotEqual(t, clone.Coeffs[0], table.Coeffs[0])
}

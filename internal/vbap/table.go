// Package vbap builds interpolation tables that map a coarse azimuth/elevation
// grid onto weighted triplets of measurement directions, using vector-base
// amplitude panning over the convex hull of the measurement grid.
package vbap

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-binaural/internal/mathutil"
	"github.com/tphakala/go-binaural/internal/sphere"
)

// ErrTriangulation is returned when no usable interpolation table can be built.
var ErrTriangulation = errors.New("vbap: triangulation failed")

const (
	// NumGains is the number of (index, weight) pairs stored per grid cell.
	NumGains = 3

	// DefaultAzimuthResolution and DefaultElevationResolution are the grid
	// resolutions in degrees used by the renderer.
	DefaultAzimuthResolution   = 2.0
	DefaultElevationResolution = 5.0

	// RingTolerance is the normalised elevation span below which a set is 2-D.
	RingTolerance = 1e-6

	coincidentDistance = 1e-6
	degenerateDet      = 1e-9
	negativeGainLimit  = -1e-9
)

// Table is a compressed interpolation table. Cell c holds its indices and
// weights at [c*NumGains : (c+1)*NumGains]; the weights of a cell are
// non-negative and sum to one.
type Table struct {
	AzimuthResolution   float64
	ElevationResolution float64
	NumAzimuths         int
	NumElevations       int
	TwoDimensional      bool

	Indices []int
	Weights []float64

	// NumTriangles is the number of distinct triangles (pairs in 2-D) referenced.
	NumTriangles int

	// FallbackCells counts the cells outside every triangle found, whose
	// gains come from inverse-distance weighting instead.
	FallbackCells int
}

// IsTwoDimensional reports whether dirs all share one elevation.
func IsTwoDimensional(dirs []sphere.Direction) bool {
	return sphere.IsRing(dirs, RingTolerance)
}

// Build chooses between Build2D and Build3D according to the elevation span of dirs.
func Build(dirs []sphere.Direction, azRes, elRes float64) (*Table, error) {
	if IsTwoDimensional(dirs) {
		return Build2D(dirs, azRes)
	}
	return Build3D(dirs, azRes, elRes)
}

func newTable(azRes, elRes float64, twoD bool) (*Table, error) {
	if azRes <= 0 || (!twoD && elRes <= 0) {
		return nil, fmt.Errorf("%w: invalid resolution az=%g el=%g", ErrTriangulation, azRes, elRes)
	}
	t := &Table{
		AzimuthResolution:   azRes,
		ElevationResolution: elRes,
		NumAzimuths:         int(mathutil.FullTurn/azRes+0.5) + 1,
		NumElevations:       1,
		TwoDimensional:      twoD,
	}
	if !twoD {
		t.NumElevations = int(mathutil.HalfTurn/elRes+0.5) + 1
	}
	n := t.NumCells() * NumGains
	t.Indices = make([]int, n)
	t.Weights = make([]float64, n)
	return t, nil
}

// NumCells returns the number of grid cells.
func (t *Table) NumCells() int { return t.NumAzimuths * t.NumElevations }

// cellDirection returns the grid direction of cell (ai, ei).
func (t *Table) cellDirection(ai, ei int) sphere.Direction {
	d := sphere.Direction{Azimuth: float64(ai)*t.AzimuthResolution - mathutil.HalfTurn}
	if !t.TwoDimensional {
		d.Elevation = float64(ei)*t.ElevationResolution - mathutil.QuarterTurn
	}
	return d
}

// CellIndex snaps a direction in degrees to its grid cell.
func (t *Table) CellIndex(azimuth, elevation float64) int {
	ai := int(mathutil.Mod(azimuth+mathutil.HalfTurn, mathutil.FullTurn)/t.AzimuthResolution + 0.5)
	ai = min(max(ai, 0), t.NumAzimuths-1)

	ei := 0
	if !t.TwoDimensional {
		ei = int((elevation+mathutil.QuarterTurn)/t.ElevationResolution + 0.5)
		ei = min(max(ei, 0), t.NumElevations-1)
	}
	return ei*t.NumAzimuths + ai
}

// Lookup returns the contributing direction indices and weights for a direction.
func (t *Table) Lookup(azimuth, elevation float64) (idx [NumGains]int, w [NumGains]float64) {
	off := t.CellIndex(azimuth, elevation) * NumGains
	copy(idx[:], t.Indices[off:off+NumGains])
	copy(w[:], t.Weights[off:off+NumGains])
	return idx, w
}

func (t *Table) set(cell int, idx [NumGains]int, w [NumGains]float64) {
	off := cell * NumGains
	copy(t.Indices[off:], idx[:])
	copy(t.Weights[off:], w[:])
}

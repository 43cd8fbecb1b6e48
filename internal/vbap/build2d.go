package vbap

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tphakala/go-binaural/internal/mathutil"
	"github.com/tphakala/go-binaural/internal/sphere"
)

// Build2D builds a table for directions on a single horizontal ring. Each
// cell is panned over the pair of ring directions that brackets its azimuth.
// The third gain of every cell has weight zero.
func Build2D(dirs []sphere.Direction, azRes float64) (*Table, error) {
	if len(dirs) < 2 {
		return nil, fmt.Errorf("%w: %d directions on ring", ErrTriangulation, len(dirs))
	}
	t, err := newTable(azRes, 0, true)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(dirs))
	for i := range order {
		order[i] = i
	}
	az := func(i int) float64 { return mathutil.Mod(dirs[i].Azimuth, mathutil.FullTurn) }
	sort.SliceStable(order, func(a, b int) bool { return az(order[a]) < az(order[b]) })

	for ai := range t.NumAzimuths {
		q := mathutil.Mod(t.cellDirection(ai, 0).Azimuth, mathutil.FullTurn)

		// First ring direction at or beyond q; the pair is (previous, that one).
		hi := sort.Search(len(order), func(i int) bool { return az(order[i]) >= q })
		lo := (hi - 1 + len(order)) % len(order)
		hi %= len(order)

		idx, w := pan2D(dirs, order[lo], order[hi], q)
		t.set(ai, idx, w)
	}

	t.NumTriangles = len(dirs)
	return t, nil
}

func pan2D(dirs []sphere.Direction, i, j int, q float64) ([NumGains]int, [NumGains]float64) {
	idx := [NumGains]int{i, j, i}
	ai := mathutil.Mod(dirs[i].Azimuth, mathutil.FullTurn)
	aj := mathutil.Mod(dirs[j].Azimuth, mathutil.FullTurn)

	switch {
	case angularDistance(aj, q) < coincidentDistance:
		return [NumGains]int{j, j, j}, [NumGains]float64{1, 0, 0}
	case angularDistance(ai, q) < coincidentDistance:
		return [NumGains]int{i, i, i}, [NumGains]float64{1, 0, 0}
	}

	if g, ok := solvePair(ai, aj, q); ok {
		return idx, [NumGains]float64{g[0], g[1], 0}
	}

	// Pairs spanning half a turn or more: interpolate linearly in angle.
	span := mathutil.Mod(aj-ai, mathutil.FullTurn)
	if span == 0 {
		return idx, [NumGains]float64{1, 0, 0}
	}
	frac := mathutil.Mod(q-ai, mathutil.FullTurn) / span
	return idx, [NumGains]float64{1 - frac, frac, 0}
}

// solvePair solves the 2-D panning equations for the pair (ai, aj) at q, all in degrees.
func solvePair(ai, aj, q float64) ([2]float64, bool) {
	ri, rj, rq := mathutil.DegToRad(ai), mathutil.DegToRad(aj), mathutil.DegToRad(q)
	base := mat.NewDense(2, 2, []float64{
		math.Cos(ri), math.Cos(rj),
		math.Sin(ri), math.Sin(rj),
	})
	if math.Abs(mat.Det(base)) < degenerateDet {
		return [2]float64{}, false
	}

	var g mat.VecDense
	if err := g.SolveVec(base, mat.NewVecDense(2, []float64{math.Cos(rq), math.Sin(rq)})); err != nil {
		return [2]float64{}, false
	}

	out := [2]float64{g.AtVec(0), g.AtVec(1)}
	if out[0] < negativeGainLimit || out[1] < negativeGainLimit {
		return out, false
	}
	out[0], out[1] = max(out[0], 0), max(out[1], 0)
	sum := out[0] + out[1]
	if sum <= 0 {
		return out, false
	}
	return [2]float64{out[0] / sum, out[1] / sum}, true
}

func angularDistance(a, b float64) float64 {
	d := math.Abs(mathutil.Mod(a-b, mathutil.FullTurn))
	return min(d, mathutil.FullTurn-d)
}

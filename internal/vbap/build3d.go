package vbap

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tphakala/go-binaural/internal/sphere"
)

const (
	// searchNeighbours is how many nearby directions are tried as triangle
	// vertices. The search doubles up to maxSearchNeighbours when none of
	// them encloses the cell.
	searchNeighbours    = 8
	maxSearchNeighbours = 32
)

// panKind says how the gains of a cell were found.
type panKind int

const (
	panCoincident panKind = iota
	panTriangle
	panFallback
)

// Build3D builds a table over the full sphere. Each grid cell is panned over
// the triangle of nearby measurement directions whose plane lies furthest out
// along the cell direction, which is the enclosing face of the convex hull.
func Build3D(dirs []sphere.Direction, azRes, elRes float64) (*Table, error) {
	if len(dirs) < NumGains {
		return nil, fmt.Errorf("%w: %d directions", ErrTriangulation, len(dirs))
	}
	t, err := newTable(azRes, elRes, false)
	if err != nil {
		return nil, err
	}

	index := sphere.NewIndex(dirs)
	triangles := make(map[[NumGains]int]struct{})

	for ei := range t.NumElevations {
		for ai := range t.NumAzimuths {
			q := sphere.ToCartesian(t.cellDirection(ai, ei))
			idx, w, kind := pan3D(index, q)
			switch kind {
			case panTriangle:
				key := idx
				slices.Sort(key[:])
				triangles[key] = struct{}{}
			case panFallback:
				t.FallbackCells++
			}
			t.set(ei*t.NumAzimuths+ai, idx, w)
		}
	}

	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no enclosing triangles found", ErrTriangulation)
	}
	t.NumTriangles = len(triangles)
	return t, nil
}

// pan3D returns the gains for direction q.
func pan3D(index *sphere.Index, q r3.Vec) (idx [NumGains]int, w [NumGains]float64, kind panKind) {
	nb := index.NearestN(q, searchNeighbours)

	if nb[0].Distance < coincidentDistance {
		idx = [NumGains]int{nb[0].Index, nb[0].Index, nb[0].Index}
		w = [NumGains]float64{1, 0, 0}
		return idx, w, panCoincident
	}

	for k := searchNeighbours; ; k *= 2 {
		if idx, w, ok := enclosingTriangle(nb, q); ok {
			return idx, w, panTriangle
		}
		if k >= maxSearchNeighbours || len(nb) == index.Len() {
			break
		}
		nb = index.NearestN(q, 2*k)
	}

	// Outside every candidate triangle: inverse-distance weighting of the nearest three.
	for i := range NumGains {
		n := nb[min(i, len(nb)-1)]
		idx[i] = n.Index
		w[i] = 1 / n.Distance
	}
	normalise(w[:])
	return idx, w, panFallback
}

// enclosingTriangle picks the triplet of nb that encloses q with the
// smallest gain sum and returns its normalised gains.
func enclosingTriangle(nb []sphere.Neighbour, q r3.Vec) (idx [NumGains]int, w [NumGains]float64, ok bool) {
	best := math.Inf(1)
	for i := 0; i < len(nb); i++ {
		for j := i + 1; j < len(nb); j++ {
			for k := j + 1; k < len(nb); k++ {
				g, valid := solveTriplet(nb[i].Vec, nb[j].Vec, nb[k].Vec, q)
				if !valid {
					continue
				}
				if sum := g[0] + g[1] + g[2]; sum < best {
					best = sum
					idx = [NumGains]int{nb[i].Index, nb[j].Index, nb[k].Index}
					w = g
				}
			}
		}
	}

	if math.IsInf(best, 1) {
		return idx, w, false
	}
	normalise(w[:])
	return idx, w, true
}

// solveTriplet solves [a b c]·g = q by Cramer's rule and reports whether
// every gain is non-negative.
func solveTriplet(a, b, c, q r3.Vec) ([NumGains]float64, bool) {
	bc := r3.Cross(b, c)
	det := r3.Dot(a, bc)
	if math.Abs(det) < degenerateDet {
		return [NumGains]float64{}, false
	}

	g := [NumGains]float64{
		r3.Dot(q, bc) / det,
		r3.Dot(q, r3.Cross(c, a)) / det,
		r3.Dot(q, r3.Cross(a, b)) / det,
	}
	for i, v := range g {
		if v < negativeGainLimit {
			return g, false
		}
		g[i] = max(v, 0)
	}
	return g, g[0]+g[1]+g[2] > 0
}

// normalise scales w to sum to one.
func normalise(w []float64) {
	if sum := floats.Sum(w); sum > 0 {
		floats.Scale(1/sum, w)
	}
}

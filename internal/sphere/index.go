package sphere

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// point is a unit vector tagged with its position in the source direction list.
type point struct {
	r3.Vec
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (p point) Dims() int { return 3 }

// Distance is the squared chord length, as kdtree expects.
func (p point) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.Vec, c.(point).Vec))
}

// sqrtDist converts a kdtree distance to a chord length.
func sqrtDist(d float64) float64 { return math.Sqrt(d) }

type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                      { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot uses median of medians so trees are built identically on every run.
func (p points) Pivot(d kdtree.Dim) int {
	pl := plane{Dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.Dim) < 0
}

func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// Neighbour is a search result.
type Neighbour struct {
	Index int
	// Distance is the chord length between the query and the neighbour.
	Distance float64
	Vec      r3.Vec
}

// Index answers nearest-neighbour queries over a fixed set of directions.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex builds a search index over dirs.
func NewIndex(dirs []Direction) *Index {
	pts := make(points, len(dirs))
	for i, d := range dirs {
		pts[i] = point{Vec: ToCartesian(d), idx: i}
	}
	return &Index{tree: kdtree.New(pts, false), n: len(dirs)}
}

// Len returns the number of indexed directions.
func (x *Index) Len() int { return x.n }

// Nearest returns the closest indexed direction to v.
func (x *Index) Nearest(v r3.Vec) Neighbour {
	c, d := x.tree.Nearest(point{Vec: v})
	p := c.(point)
	return Neighbour{Index: p.idx, Distance: sqrtDist(d), Vec: p.Vec}
}

// NearestN returns up to k indexed directions closest to v, nearest first.
// Ties are broken by index.
func (x *Index) NearestN(v r3.Vec, k int) []Neighbour {
	k = min(k, x.n)
	if k <= 0 {
		return nil
	}
	keeper := kdtree.NewNKeeper(k)
	x.tree.NearestSet(keeper, point{Vec: v})

	out := make([]Neighbour, 0, k)
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(point)
		out = append(out, Neighbour{Index: p.idx, Distance: sqrtDist(cd.Dist), Vec: p.Vec})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Package rotation rotates source directions to compensate for listener head movement.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tphakala/go-binaural/internal/sphere"
)

// Order is the order in which the Euler angles are applied.
type Order int

const (
	// YawPitchRoll applies yaw, then pitch, then roll.
	YawPitchRoll Order = iota
	// RollPitchYaw applies roll, then pitch, then yaw.
	RollPitchYaw
)

func (o Order) String() string {
	if o == RollPitchYaw {
		return "roll-pitch-yaw"
	}
	return "yaw-pitch-roll"
}

// Matrix returns the 3×3 rotation matrix for the given angles in radians.
// Directions are rotated as row vectors: v' = v·R.
func Matrix(yaw, pitch, roll float64, order Order) *mat.Dense {
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	ryaw := mat.NewDense(3, 3, []float64{
		cy, sy, 0,
		-sy, cy, 0,
		0, 0, 1,
	})
	rpitch := mat.NewDense(3, 3, []float64{
		cp, 0, -sp,
		0, 1, 0,
		sp, 0, cp,
	})
	rroll := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cr, sr,
		0, -sr, cr,
	})

	var tmp, r mat.Dense
	if order == RollPitchYaw {
		tmp.Mul(rroll, rpitch)
		r.Mul(&tmp, ryaw)
	} else {
		tmp.Mul(ryaw, rpitch)
		r.Mul(&tmp, rroll)
	}
	return &r
}

// Rotate applies r to every direction in src and writes the result to dst,
// which must be at least as long as src.
func Rotate(dst, src []sphere.Direction, r mat.Matrix) {
	if len(src) == 0 {
		return
	}

	vecs := mat.NewDense(len(src), 3, nil)
	for i, d := range src {
		v := sphere.ToCartesian(d)
		vecs.SetRow(i, []float64{v.X, v.Y, v.Z})
	}

	var rotated mat.Dense
	rotated.Mul(vecs, r)

	for i := range src {
		dst[i] = sphere.FromCartesian(r3.Vec{
			X: rotated.At(i, 0),
			Y: rotated.At(i, 1),
			Z: rotated.At(i, 2),
		})
	}
}

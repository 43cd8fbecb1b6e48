package sphere

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrGridWeights is returned when integration weights cannot be computed for a grid.
var ErrGridWeights = errors.New("sphere: cannot compute grid weights")

const (
	// MaxGridDirections bounds the grid size accepted by GridWeights.
	MaxGridDirections = 3600

	minGridDirections = 4
	samplesPerDir     = 32
	minSamples        = 8192
	ringTolerance     = 1e-6
)

// GridWeights returns an integration weight per direction, proportional to the
// area of the sphere closer to it than to any other direction. The weights sum to 4π.
func GridWeights(dirs []Direction) ([]float64, error) {
	switch {
	case len(dirs) > MaxGridDirections:
		return nil, fmt.Errorf("%w: %d directions exceeds %d", ErrGridWeights, len(dirs), MaxGridDirections)
	case len(dirs) < minGridDirections:
		return nil, fmt.Errorf("%w: only %d directions", ErrGridWeights, len(dirs))
	case IsRing(dirs, ringTolerance):
		return nil, fmt.Errorf("%w: directions lie on a single elevation ring", ErrGridWeights)
	}

	idx := NewIndex(dirs)
	nSamples := max(samplesPerDir*len(dirs), minSamples)

	counts := make([]float64, len(dirs))
	for _, s := range FibonacciGrid(nSamples) {
		counts[idx.Nearest(ToCartesian(s)).Index]++
	}

	floats.Scale(4*math.Pi/float64(nSamples), counts)
	return counts, nil
}

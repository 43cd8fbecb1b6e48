package hrir

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/conv"
)

// MaxITDLength is the number of leading samples used for ITD estimation.
const MaxITDLength = 1000

// EstimateITDs returns the interaural time difference of every direction in seconds.
// The ITD is positive when the left ear leads, i.e. for sources on the left.
func EstimateITDs(set *Set) ([]float64, error) {
	n := min(set.Length, MaxITDLength)
	itds := make([]float64, set.NumDirs())

	for d := range itds {
		left := set.IR(d, 0)[:n]
		right := set.IR(d, 1)[:n]

		corr, err := conv.Correlate(left, right)
		if err != nil {
			return nil, fmt.Errorf("hrir: ITD direction %d: %w", d, err)
		}
		idx, _ := conv.FindPeak(corr)

		// A positive lag means the left response trails the right one.
		lag := conv.LagFromIndex(idx, len(right))
		itds[d] = -float64(lag) / float64(set.SampleRate)
	}

	return itds, nil
}

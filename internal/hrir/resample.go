package hrir

import (
	"fmt"
	"math"

	resampler "github.com/tphakala/go-audio-resampler"
)

// Resample converts every response in set to targetRate and returns a new set.
// The input set is not modified. A set already at targetRate is returned as is.
func Resample(set *Set, targetRate int, quality resampler.QualityPreset) (*Set, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("%w: target rate %d", ErrInvalidSet, targetRate)
	}
	if set.SampleRate == targetRate {
		return set, nil
	}

	ratio := float64(targetRate) / float64(set.SampleRate)
	length := int(math.Ceil(float64(set.Length) * ratio))

	out := NewSet(set.Directions, targetRate, length)
	out.Emitters = append(out.Emitters, set.Emitters...)
	out.Name = set.Name

	if err := resampleResponses(out, set, quality); err != nil {
		return nil, err
	}
	for e := range set.EmitterData {
		dst := &Set{Directions: out.Directions, SampleRate: targetRate, Length: length}
		dst.Data = make([]float64, len(out.Data))
		if err := resampleResponses(dst, set.ForEmitter(e), quality); err != nil {
			return nil, fmt.Errorf("hrir: emitter %d: %w", e, err)
		}
		out.EmitterData = append(out.EmitterData, dst.Data)
	}

	return out, nil
}

// resampleResponses resamples every response of src into dst.
func resampleResponses(dst, src *Set, quality resampler.QualityPreset) error {
	for d := range src.NumDirs() {
		for e := range NumEars {
			y, err := resampler.ResampleMono(src.IR(d, e), float64(src.SampleRate), float64(dst.SampleRate), quality)
			if err != nil {
				return fmt.Errorf("hrir: resample direction %d ear %d: %w", d, e, err)
			}
			copy(dst.IR(d, e), y)
		}
	}
	return nil
}

// Package hrir holds head-related impulse response sets and everything needed
// to turn them into the subband tables used for rendering: validation, the
// built-in default set, resampling, ITD estimation and band conversion.
package hrir

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-binaural/internal/sphere"
)

// NumEars is the number of receivers every set must provide.
const NumEars = 2

var (
	// ErrNoProvider is returned when a file is requested but no provider is configured.
	ErrNoProvider = errors.New("hrir: no provider configured")

	// ErrReceiverCount is returned when a set does not have exactly two receivers.
	ErrReceiverCount = errors.New("hrir: receiver count must be 2")

	// ErrInvalidSet is returned for malformed sets.
	ErrInvalidSet = errors.New("hrir: invalid set")
)

// Set is a collection of impulse response pairs measured at known directions.
type Set struct {
	// Directions in degrees, one per measurement.
	Directions []sphere.Direction

	// SampleRate of the impulse responses in Hz.
	SampleRate int

	// Length of every impulse response in samples.
	Length int

	// Receivers is the number of ears the data was measured with.
	Receivers int

	// Data holds the samples laid out as [direction][ear][sample].
	Data []float64

	// Emitters lists source positions stored with room responses, if any.
	Emitters []sphere.Direction

	// EmitterData holds one response set per emitter, each laid out like Data,
	// for room responses measured separately for every source position. It is
	// empty when all emitters share Data.
	EmitterData [][]float64

	// Name identifies where the set came from.
	Name string
}

// NewSet allocates a zeroed set for the given directions.
func NewSet(dirs []sphere.Direction, sampleRate, length int) *Set {
	return &Set{
		Directions: append([]sphere.Direction(nil), dirs...),
		SampleRate: sampleRate,
		Length:     length,
		Receivers:  NumEars,
		Data:       make([]float64, len(dirs)*NumEars*length),
	}
}

// NumDirs returns the number of measurement directions.
func (s *Set) NumDirs() int { return len(s.Directions) }

// IR returns the impulse response for a direction and ear as a sub-slice of Data.
func (s *Set) IR(dir, ear int) []float64 {
	off := (dir*NumEars + ear) * s.Length
	return s.Data[off : off+s.Length]
}

// Validate checks the set for consistency.
func (s *Set) Validate() error {
	if s.Receivers != NumEars {
		return fmt.Errorf("%w: got %d", ErrReceiverCount, s.Receivers)
	}
	if len(s.Directions) == 0 {
		return fmt.Errorf("%w: no directions", ErrInvalidSet)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidSet, s.SampleRate)
	}
	if s.Length <= 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidSet, s.Length)
	}
	want := len(s.Directions) * NumEars * s.Length
	if len(s.Data) != want {
		return fmt.Errorf("%w: %d samples, expected %d", ErrInvalidSet, len(s.Data), want)
	}
	if len(s.EmitterData) == 0 {
		return nil
	}
	if len(s.EmitterData) != len(s.Emitters) {
		return fmt.Errorf("%w: %d emitter response sets for %d emitters", ErrInvalidSet, len(s.EmitterData), len(s.Emitters))
	}
	for e, data := range s.EmitterData {
		if len(data) != want {
			return fmt.Errorf("%w: emitter %d has %d samples, expected %d", ErrInvalidSet, e, len(data), want)
		}
	}
	return nil
}

// NumResponseSets returns the number of independent response sets: one per
// emitter when EmitterData is present, otherwise one.
func (s *Set) NumResponseSets() int { return max(1, len(s.EmitterData)) }

// ForEmitter returns the responses measured for emitter e as a set of its own,
// sharing storage with s. Sets without per-emitter data return s.
func (s *Set) ForEmitter(e int) *Set {
	if len(s.EmitterData) == 0 {
		return s
	}
	c := *s
	c.Data = s.EmitterData[min(max(e, 0), len(s.EmitterData)-1)]
	c.EmitterData = nil
	return &c
}

// NormalizeDirections folds azimuths measured over [0, 360) into [-180, 180].
func (s *Set) NormalizeDirections() {
	for i := range s.Directions {
		if s.Directions[i].Azimuth > 180 {
			s.Directions[i].Azimuth -= 360
		}
	}
	for i := range s.Emitters {
		if s.Emitters[i].Azimuth > 180 {
			s.Emitters[i].Azimuth -= 360
		}
	}
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := *s
	c.Directions = append([]sphere.Direction(nil), s.Directions...)
	c.Emitters = append([]sphere.Direction(nil), s.Emitters...)
	c.Data = append([]float64(nil), s.Data...)
	c.EmitterData = nil
	for _, data := range s.EmitterData {
		c.EmitterData = append(c.EmitterData, append([]float64(nil), data...))
	}
	return &c
}

// IRs returns every impulse response as [direction*2+ear][sample] sub-slices.
func (s *Set) IRs() [][]float64 {
	out := make([][]float64, s.NumDirs()*NumEars)
	for d := range s.NumDirs() {
		for e := range NumEars {
			out[d*NumEars+e] = s.IR(d, e)
		}
	}
	return out
}

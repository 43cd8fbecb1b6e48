package hrir

import (
	"gonum.org/v1/gonum/cmplxs"

	"github.com/tphakala/go-binaural/internal/filterbank"
)

// Table is the subband representation of an HRIR set.
//
// Coeffs and Mags are laid out as [direction][band][ear].
type Table struct {
	NumDirs int
	Bands   int

	Coeffs []complex128
	Mags   []float64

	// ITDs in seconds, one per direction.
	ITDs []float64

	// Freqs holds the centre frequency of every band in Hz.
	Freqs []float64
}

// NewTable converts set to subband coefficients for a filterbank with the
// given hop, and computes the magnitude table.
func NewTable(set *Set, itds []float64, hop int) *Table {
	bands := filterbank.FIRToBands(set.IRs(), hop)

	t := &Table{
		NumDirs: set.NumDirs(),
		Bands:   len(bands),
		ITDs:    append([]float64(nil), itds...),
		Freqs:   filterbank.CentreFrequencies(float64(set.SampleRate), hop),
	}
	t.Coeffs = make([]complex128, t.NumDirs*t.Bands*NumEars)
	for b, perFilter := range bands {
		for d := range t.NumDirs {
			for e := range NumEars {
				t.Coeffs[t.Index(d, b, e)] = perFilter[d*NumEars+e]
			}
		}
	}
	t.UpdateMagnitudes()
	return t
}

// Index returns the flat offset of (dir, band, ear).
func (t *Table) Index(dir, band, ear int) int {
	return (dir*t.Bands+band)*NumEars + ear
}

// Direction returns the [band][ear] coefficients of one direction as a sub-slice.
func (t *Table) Direction(dir int) []complex128 {
	n := t.Bands * NumEars
	return t.Coeffs[dir*n : (dir+1)*n]
}

// DirectionMags returns the [band][ear] magnitudes of one direction as a sub-slice.
func (t *Table) DirectionMags(dir int) []float64 {
	n := t.Bands * NumEars
	return t.Mags[dir*n : (dir+1)*n]
}

// UpdateMagnitudes recomputes Mags from Coeffs. Call it after modifying Coeffs.
func (t *Table) UpdateMagnitudes() {
	if len(t.Mags) != len(t.Coeffs) {
		t.Mags = make([]float64, len(t.Coeffs))
	}
	cmplxs.Abs(t.Mags, t.Coeffs)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	c.Coeffs = append([]complex128(nil), t.Coeffs...)
	c.Mags = append([]float64(nil), t.Mags...)
	c.ITDs = append([]float64(nil), t.ITDs...)
	c.Freqs = append([]float64(nil), t.Freqs...)
	return &c
}

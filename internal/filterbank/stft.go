// Package filterbank implements the short-time Fourier transform used to move
// audio blocks in and out of the subband domain.
//
// Each call consumes one hop of samples per channel and yields one time slot
// of Bands = hop+1 complex coefficients. Analysis and synthesis use periodic
// square-root Hann windows over 2*hop samples at 50% overlap, so a forward
// transform followed by an inverse one reconstructs the input delayed by
// exactly one hop.
package filterbank

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidChannels is returned when a channel count is out of range.
var ErrInvalidChannels = errors.New("filterbank: invalid channel count")

const (
	// DefaultHop is the hop size used by the renderer.
	DefaultHop = 128

	// TimeSlots is the number of time slots produced per hop.
	TimeSlots = 1

	fftOverlap = 2
)

// STFT is a multichannel analysis/synthesis filterbank.
// It is not safe for concurrent use.
type STFT struct {
	hop     int
	fftSize int
	nCh     int
	nEars   int

	fft    *fourier.FFT
	window []float64 // sqrt-Hann, used for both analysis and synthesis

	history [][]float64 // per input channel, last fftSize samples
	overlap [][]float64 // per output ear, pending second half
	buf     []float64
	spec    []complex128
}

// New creates a filterbank with nChannels analysis inputs and nEars synthesis outputs.
func New(nChannels, nEars, hop int) (*STFT, error) {
	if nChannels < 1 || nEars < 1 {
		return nil, fmt.Errorf("%w: channels=%d ears=%d", ErrInvalidChannels, nChannels, nEars)
	}
	if hop < 1 {
		return nil, fmt.Errorf("filterbank: invalid hop size %d", hop)
	}

	fftSize := fftOverlap * hop
	win, err := sqrtHann(fftSize)
	if err != nil {
		return nil, err
	}

	s := &STFT{
		hop:     hop,
		fftSize: fftSize,
		nEars:   nEars,
		fft:     fourier.NewFFT(fftSize),
		window:  win,
		overlap: make([][]float64, nEars),
		buf:     make([]float64, fftSize),
		spec:    make([]complex128, fftSize/2+1),
	}
	for e := range s.overlap {
		s.overlap[e] = make([]float64, hop)
	}
	if err := s.SetChannels(nChannels); err != nil {
		return nil, err
	}

	return s, nil
}

func sqrtHann(n int) ([]float64, error) {
	w, err := window.Hann(n, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("filterbank: window: %w", err)
	}
	for i, v := range w {
		w[i] = math.Sqrt(max(v, 0))
	}
	return w, nil
}

// SetChannels changes the number of analysis channels. History of channels
// that survive the change is kept.
func (s *STFT) SetChannels(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, n)
	}
	if n == s.nCh {
		return nil
	}

	history := make([][]float64, n)
	copy(history, s.history)
	for ch := range history {
		if history[ch] == nil {
			history[ch] = make([]float64, s.fftSize)
		}
	}
	s.history = history
	s.nCh = n

	return nil
}

// Channels returns the number of analysis channels.
func (s *STFT) Channels() int { return s.nCh }

// Ears returns the number of synthesis channels.
func (s *STFT) Ears() int { return s.nEars }

// Hop returns the hop size in samples.
func (s *STFT) Hop() int { return s.hop }

// Bands returns the number of subbands.
func (s *STFT) Bands() int { return s.fftSize/2 + 1 }

// Delay returns the analysis-synthesis group delay in samples.
func (s *STFT) Delay() int { return s.hop }

// NewFrame allocates a frame sized for this filterbank with nCh channels.
func (s *STFT) NewFrame(nCh int) *Frame {
	return NewFrame(s.Bands(), nCh, TimeSlots)
}

// CentreFrequencies returns the centre frequency of every band in Hz.
func (s *STFT) CentreFrequencies(sampleRate float64) []float64 {
	return CentreFrequencies(sampleRate, s.hop)
}

// CentreFrequencies returns band centre frequencies for a filterbank with the given hop.
func CentreFrequencies(sampleRate float64, hop int) []float64 {
	fftSize := fftOverlap * hop
	freqs := make([]float64, fftSize/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(fftSize)
	}
	return freqs
}

// Forward analyses one hop of samples per channel into dst.
// in is indexed [channel][sample]; missing or short channels read as zeros.
// dst must have Bands() bands and at least Channels() channels.
func (s *STFT) Forward(in [][]float64, dst *Frame) {
	for ch := range s.nCh {
		h := s.history[ch]
		copy(h, h[s.hop:])
		tail := h[s.fftSize-s.hop:]
		clear(tail)
		if ch < len(in) {
			copy(tail, in[ch])
		}

		for i, v := range h {
			s.buf[i] = v * s.window[i]
		}
		s.fft.Coefficients(s.spec, s.buf)

		for b, c := range s.spec {
			dst.Set(b, ch, 0, c)
		}
	}
}

// Backward synthesises one hop per ear from src, indexed [band][ear][slot].
// out is indexed [ear][sample] and each slice must hold Hop() samples.
func (s *STFT) Backward(src *Frame, out [][]float64) {
	scale := 1 / float64(s.fftSize)
	for ear := range s.nEars {
		for b := range s.spec {
			s.spec[b] = src.At(b, ear, 0)
		}
		s.fft.Sequence(s.buf, s.spec)

		ola := s.overlap[ear]
		for i := range s.hop {
			y := s.buf[i] * s.window[i] * scale
			if ear < len(out) {
				out[ear][i] = ola[i] + y
			}
		}
		for i := range s.hop {
			j := i + s.hop
			ola[i] = s.buf[j] * s.window[j] * scale
		}
	}
}

// Reset clears the analysis history and overlap state.
func (s *STFT) Reset() {
	for _, h := range s.history {
		clear(h)
	}
	for _, o := range s.overlap {
		clear(o)
	}
}

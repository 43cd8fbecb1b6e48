package filterbank

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-binaural/internal/testutil"
)

const (
	testHop        = 128
	testSampleRate = 48000.0
	reconTolerance = 1e-9
)

// runIdentity pushes signal through forward+backward with a unit transfer.
func runIdentity(t *testing.T, s *STFT, signal []float64) []float64 {
	t.Helper()

	frame := s.NewFrame(s.Channels())
	outFrame := NewFrame(s.Bands(), s.Ears(), TimeSlots)
	out := make([]float64, 0, len(signal))
	block := [][]float64{make([]float64, s.Hop())}

	for pos := 0; pos+s.Hop() <= len(signal); pos += s.Hop() {
		s.Forward([][]float64{signal[pos : pos+s.Hop()]}, frame)
		for b := range s.Bands() {
			outFrame.Set(b, 0, 0, frame.At(b, 0, 0))
		}
		s.Backward(outFrame, block)
		out = append(out, block[0]...)
	}
	return out
}

func TestSTFT_PerfectReconstruction(t *testing.T) {
	s, err := New(1, 1, testHop)
	require.NoError(t, err)

	signal := testutil.Sine(8*testHop, 1000, testSampleRate)
	out := runIdentity(t, s, signal)
	require.Len(t, out, len(signal))

	// Output equals input delayed by one hop.
	for n := s.Delay(); n < len(out); n++ {
		require.InDelta(t, signal[n-s.Delay()], out[n], reconTolerance, "sample %d", n)
	}
	for n := range s.Delay() {
		assert.InDelta(t, 0.0, out[n], reconTolerance)
	}
}

func TestSTFT_Dimensions(t *testing.T) {
	s, err := New(3, 2, testHop)
	require.NoError(t, err)

	assert.Equal(t, testHop+1, s.Bands())
	assert.Equal(t, testHop, s.Delay())
	assert.Equal(t, 3, s.Channels())
	assert.Equal(t, 2, s.Ears())

	freqs := s.CentreFrequencies(testSampleRate)
	require.Len(t, freqs, s.Bands())
	assert.InDelta(t, 0.0, freqs[0], 1e-12)
	assert.InDelta(t, testSampleRate/2, freqs[len(freqs)-1], 1e-9)
	testutil.AssertMonotonic(t, freqs)
}

func TestSTFT_SetChannels(t *testing.T) {
	s, err := New(2, 2, testHop)
	require.NoError(t, err)

	require.NoError(t, s.SetChannels(5))
	assert.Equal(t, 5, s.Channels())

	frame := s.NewFrame(5)
	s.Forward([][]float64{testutil.Impulse(testHop, 3)}, frame)
	assert.Equal(t, 5, frame.Channels)

	// Channels without input analyse silence.
	for b := range s.Bands() {
		assert.Equal(t, complex(0, 0), frame.At(b, 4, 0))
	}

	assert.ErrorIs(t, s.SetChannels(0), ErrInvalidChannels)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(0, 2, testHop)
	require.ErrorIs(t, err, ErrInvalidChannels)

	_, err = New(1, 2, 0)
	require.Error(t, err)
}

func TestSTFT_Reset(t *testing.T) {
	s, err := New(1, 1, testHop)
	require.NoError(t, err)

	frame := s.NewFrame(1)
	s.Forward([][]float64{testutil.Impulse(testHop, 10)}, frame)
	s.Reset()
	s.Forward([][]float64{make([]float64, testHop)}, frame)

	for _, c := range frame.Data {
		assert.InDelta(t, 0.0, cmplx.Abs(c), 1e-15)
	}
}

func TestFIRToBands(t *testing.T) {
	delay := 5
	bands := FIRToBands([][]float64{testutil.Impulse(64, 0), testutil.Impulse(64, delay)}, testHop)
	require.Len(t, bands, testHop+1)

	fftSize := 2 * testHop
	for b, coeffs := range bands {
		require.Len(t, coeffs, 2)
		assert.InDelta(t, 1.0, real(coeffs[0]), 1e-12)
		assert.InDelta(t, 0.0, imag(coeffs[0]), 1e-12)

		want := cmplx.Exp(complex(0, -2*math.Pi*float64(b*delay)/float64(fftSize)))
		assert.InDelta(t, real(want), real(coeffs[1]), 1e-9)
		assert.InDelta(t, imag(want), imag(coeffs[1]), 1e-9)
	}
}

func TestFIRToBands_FoldsLongResponses(t *testing.T) {
	long := make([]float64, 3*2*testHop)
	long[2*testHop+7] = 1
	bands := FIRToBands([][]float64{long, testutil.Impulse(2*testHop, 7)}, testHop)

	for _, coeffs := range bands {
		assert.InDelta(t, real(coeffs[1]), real(coeffs[0]), 1e-12)
		assert.InDelta(t, imag(coeffs[1]), imag(coeffs[0]), 1e-12)
	}
}

func TestFrame_Layout(t *testing.T) {
	f := NewFrame(4, 3, 2)
	f.Set(2, 1, 1, 5i)
	assert.Equal(t, (2*3+1)*2+1, f.Index(2, 1, 1))
	assert.Equal(t, 5i, f.Band(2)[1*2+1])

	f.Resize(2)
	assert.Len(t, f.Data, 4*2*2)
	assert.Equal(t, complex(0, 0), f.At(2, 1, 1))
}

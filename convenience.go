package binaural

import (
	"fmt"

	"github.com/tphakala/go-binaural/internal/filterbank"
	"github.com/tphakala/go-binaural/internal/pipeline"
	"github.com/tphakala/go-binaural/internal/simdops"
)

// frameRenderer adapts a Renderer to the pipeline framer.
type frameRenderer struct {
	r *Renderer
}

func (f frameRenderer) ProcessFrame(inputs, outputs [][]float32) {
	f.r.Process(inputs, outputs, FrameSize)
}

func (f frameRenderer) FrameSize() int { return FrameSize }

// Latency is the filterbank delay; the HRIR onset is part of the response.
func (f frameRenderer) Latency() int { return filterbank.DefaultHop }

// Stream feeds blocks of any length through a Renderer and queues the
// binaural output. It is not safe for concurrent use.
type Stream struct {
	framer *pipeline.Framer[float32]
}

// NewStream creates a stream for nSources input signals. The filterbank
// delay is removed from the output, so sample n of the output corresponds to
// sample n of the input. The renderer's filterbank history is cleared.
func (r *Renderer) NewStream(nSources int) (*Stream, error) {
	r.Reset()
	framer, err := pipeline.NewFramer[float32](frameRenderer{r}, nSources, NumEars, true)
	if err != nil {
		return nil, fmt.Errorf("binaural: %w", err)
	}
	return &Stream{framer: framer}, nil
}

// Write queues one block per source and renders every complete frame.
// Sources shorter than the longest one are zero padded.
func (s *Stream) Write(sources [][]float32) {
	s.framer.Write(sources)
}

// Flush renders the remaining input, padding it to whole frames.
func (s *Stream) Flush() {
	s.framer.Flush()
}

// Available returns the number of rendered samples ready to read.
func (s *Stream) Available() int {
	return s.framer.Available()
}

// Read moves up to min(len(left), len(right)) rendered samples into left
// and right and returns the number of samples read.
func (s *Stream) Read(left, right []float32) int {
	return s.framer.Read([][]float32{left, right})
}

// RenderStream renders whole source signals and returns the left and right
// ear signals. Sources shorter than the longest one are zero padded. The
// output has the length of the longest source. Passing more sources than
// NumSources is an error.
//
// RenderStream calls InitCodec if needed. It must not be used while another
// goroutine calls Process on the same renderer.
func (r *Renderer) RenderStream(sources [][]float32) (left, right []float32, err error) {
	if err := r.InitCodec(); err != nil {
		return nil, nil, err
	}
	if r.CodecStatus() != CodecInitialized {
		return nil, nil, ErrNotInitialized
	}
	if want := r.NumSources(); len(sources) > want {
		return nil, nil, fmt.Errorf("%w: %d sources for a renderer configured with %d", ErrInvalidConfig, len(sources), want)
	}

	n := 0
	for _, s := range sources {
		n = max(n, len(s))
	}
	if n == 0 {
		return []float32{}, []float32{}, nil
	}

	stream, err := r.NewStream(len(sources))
	if err != nil {
		return nil, nil, err
	}
	stream.Write(sources)
	stream.Flush()

	left = make([]float32, n)
	right = make([]float32, n)
	if got := stream.Read(left, right); got < n {
		return nil, nil, fmt.Errorf("binaural: rendered %d of %d samples", got, n)
	}

	return left, right, nil
}

// Binauralise renders sources placed at dirs with the built-in HRIR set and
// default settings, returning the left and right ear signals.
func Binauralise(sources [][]float32, dirs []Direction, sampleRate int) (left, right []float32, err error) {
	if len(sources) == 0 || len(sources) > MaxNumSources {
		return nil, nil, fmt.Errorf("%w: need 1-%d sources, got %d", ErrInvalidConfig, MaxNumSources, len(sources))
	}
	if len(dirs) != len(sources) {
		return nil, nil, fmt.Errorf("%w: %d directions for %d sources", ErrInvalidConfig, len(dirs), len(sources))
	}

	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.NumSources = len(sources)

	r, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	for i, d := range dirs {
		if err := r.SetSourceDirection(i, d); err != nil {
			return nil, nil, err
		}
	}

	return r.RenderStream(sources)
}

// Interleave converts a binaural pair to interleaved stereo.
// Output format: [L0, R0, L1, R1, ...]
func Interleave(left, right []float32) []float32 {
	n := min(len(left), len(right))
	out := make([]float32, n*NumEars)
	simdops.For[float32]().Interleave2(out, left[:n], right[:n])
	return out
}

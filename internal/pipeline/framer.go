// Package pipeline streams arbitrary-length multichannel signals through a
// processor that only accepts fixed-size frames.
package pipeline

import (
	"fmt"

	"github.com/tphakala/go-binaural/internal/simdops"
)

// FrameProcessor consumes exactly FrameSize samples per input channel and
// produces FrameSize samples per output channel.
type FrameProcessor[F simdops.Float] interface {
	// ProcessFrame renders one frame. Channel slices all have length FrameSize.
	ProcessFrame(inputs, outputs [][]F)

	// FrameSize returns the fixed frame length in samples.
	FrameSize() int

	// Latency returns the processor's group delay in samples.
	Latency() int
}

// Framer buffers host input until whole frames are available, runs them
// through a FrameProcessor and queues the rendered output.
type Framer[F simdops.Float] struct {
	proc      FrameProcessor[F]
	frameSize int

	in  []*RingBuffer[F]
	out []*RingBuffer[F]

	inFrame  [][]F
	outFrame [][]F

	compensate bool
	// samples of leading latency still to be trimmed from the output
	pendingTrim int
	// input samples accepted from the host
	written int
	// input samples consumed by rendered frames, padding included
	rendered int
}

// NewFramer creates a framer with nIn input and nOut output channels.
// When compensate is set the processor latency is trimmed from the output.
func NewFramer[F simdops.Float](proc FrameProcessor[F], nIn, nOut int, compensate bool) (*Framer[F], error) {
	if proc == nil {
		return nil, fmt.Errorf("pipeline: nil frame processor")
	}
	frameSize := proc.FrameSize()
	if frameSize < 1 {
		return nil, fmt.Errorf("pipeline: invalid frame size %d", frameSize)
	}
	if nIn < 1 || nOut < 1 {
		return nil, fmt.Errorf("pipeline: invalid channel counts in=%d out=%d", nIn, nOut)
	}

	f := &Framer[F]{
		proc:      proc,
		frameSize: frameSize,
		in:        make([]*RingBuffer[F], nIn),
		out:       make([]*RingBuffer[F], nOut),
		inFrame:   make([][]F, nIn),
		outFrame:  make([][]F, nOut),
	}
	for ch := range nIn {
		f.in[ch] = NewRingBuffer[F](minBufferFrames * frameSize)
		f.inFrame[ch] = make([]F, frameSize)
	}
	for ch := range nOut {
		f.out[ch] = NewRingBuffer[F](minBufferFrames * frameSize)
		f.outFrame[ch] = make([]F, frameSize)
	}
	f.Reset(compensate)

	return f, nil
}

// Write queues input samples and renders every complete frame.
// Missing or short channels are zero padded to the longest channel.
func (f *Framer[F]) Write(inputs [][]F) {
	n := 0
	for _, ch := range inputs {
		n = max(n, len(ch))
	}
	if n == 0 {
		return
	}

	for ch, buf := range f.in {
		var src []F
		if ch < len(inputs) {
			src = inputs[ch]
		}
		buf.Write(src)
		if pad := n - len(src); pad > 0 {
			buf.Write(make([]F, pad))
		}
	}
	f.written += n

	f.drain()
}

// Flush pads the input so every accepted sample, plus the processor latency
// when compensating, has been rendered.
func (f *Framer[F]) Flush() {
	target := f.written
	if f.compensate {
		target += f.proc.Latency()
	}
	queued := f.in[0].Available()
	need := max(target-f.rendered, queued)
	if rem := need % f.frameSize; rem != 0 {
		need += f.frameSize - rem
	}
	if pad := need - queued; pad > 0 {
		zeros := make([]F, pad)
		for _, buf := range f.in {
			buf.Write(zeros)
		}
	}

	f.drain()
}

// Read moves up to len(dst[ch]) rendered samples into each output channel.
// It returns the number of samples per channel that were read.
func (f *Framer[F]) Read(dst [][]F) int {
	n := f.Available()
	for _, ch := range dst {
		n = min(n, len(ch))
	}
	for ch, buf := range f.out {
		if ch < len(dst) {
			buf.ReadInto(dst[ch][:n])
		} else {
			buf.Discard(n)
		}
	}
	return n
}

// Available returns the number of rendered samples ready per output channel.
func (f *Framer[F]) Available() int {
	return f.out[0].Available()
}

// Reset discards all queued input and output.
func (f *Framer[F]) Reset(compensate bool) {
	for _, buf := range f.in {
		buf.Clear()
	}
	for _, buf := range f.out {
		buf.Clear()
	}
	f.written = 0
	f.rendered = 0
	f.compensate = compensate
	f.pendingTrim = 0
	if compensate {
		f.pendingTrim = f.proc.Latency()
	}
}

func (f *Framer[F]) drain() {
	for f.in[0].Available() >= f.frameSize {
		for ch, buf := range f.in {
			buf.ReadInto(f.inFrame[ch])
		}

		f.proc.ProcessFrame(f.inFrame, f.outFrame)
		f.rendered += f.frameSize

		skip := min(f.pendingTrim, f.frameSize)
		f.pendingTrim -= skip
		for ch, buf := range f.out {
			buf.Write(f.outFrame[ch][skip:])
		}
	}
}

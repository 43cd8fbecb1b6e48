package binaural

import (
	"math"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/tphakala/go-binaural/internal/filterbank"
	"github.com/tphakala/go-binaural/internal/interp"
	"github.com/tphakala/go-binaural/internal/rotation"
	"github.com/tphakala/go-binaural/internal/simdops"
)

// renderState is everything a frame is rendered with. The hrtf data is
// shared and read-only; the rest is owned by whoever holds procMu.
type renderState struct {
	hrtf     *hrtfData
	fb       *filterbank.STFT
	nSources int

	params frameParams
	method interp.Method

	in       [][]float64
	inFrame  *filterbank.Frame
	outFrame *filterbank.Frame
	out      [][]float64

	// per-source interpolated HRTFs, [band][ear]
	hrtfs         [][]complex128
	needsInterp   []bool
	rotated       []Direction
	rotationDirty bool
}

func newRenderState(data *hrtfData, fb *filterbank.STFT, nSources int, params *frameParams) *renderState {
	bands := data.table(0).Bands
	st := &renderState{
		hrtf:          data,
		fb:            fb,
		nSources:      nSources,
		params:        *params,
		method:        params.interpMode.method(),
		in:            make([][]float64, nSources),
		inFrame:       filterbank.NewFrame(bands, nSources, filterbank.TimeSlots),
		outFrame:      filterbank.NewFrame(bands, NumEars, filterbank.TimeSlots),
		out:           make([][]float64, NumEars),
		hrtfs:         make([][]complex128, nSources),
		needsInterp:   make([]bool, nSources),
		rotated:       make([]Direction, nSources),
		rotationDirty: true,
	}
	for i := range nSources {
		st.in[i] = make([]float64, FrameSize)
		st.hrtfs[i] = make([]complex128, bands*NumEars)
		st.needsInterp[i] = true
	}
	for e := range st.out {
		st.out[e] = make([]float64, FrameSize)
	}
	return st
}

// Process renders one frame. inputs holds one signal per source and
// outputs receives the left and right ear signals; further output channels
// are zeroed. nSamples must equal FrameSize.
//
// Process never blocks. It outputs silence when the frame size is wrong,
// when no tables are available, or while InitCodec is swapping tables.
func (r *Renderer) Process(inputs, outputs [][]float32, nSamples int) {
	if nSamples != FrameSize || r.CodecStatus() != CodecInitialized {
		silence(outputs, nSamples)
		return
	}
	if !r.procMu.TryLock() {
		silence(outputs, nSamples)
		return
	}
	defer r.procMu.Unlock()

	st := r.state.Load()
	if st == nil || r.CodecStatus() != CodecInitialized {
		silence(outputs, nSamples)
		return
	}

	r.procStatus.Store(int32(ProcProcessing))
	defer r.procStatus.Store(int32(ProcIdle))

	// Keep the previous parameters if a setter holds the lock.
	if r.settingsMu.TryLock() {
		st.update(&r.settings.params)
		r.settingsMu.Unlock()
	}

	st.render(inputs, outputs)
}

// Reset clears the filterbank history so the next frame starts from silence.
// It waits for a frame in flight to finish.
func (r *Renderer) Reset() {
	r.procMu.Lock()
	defer r.procMu.Unlock()
	if st := r.state.Load(); st != nil {
		st.fb.Reset()
	}
}

func silence(outputs [][]float32, n int) {
	for _, ch := range outputs {
		clear(ch[:min(n, len(ch))])
	}
}

// update adopts new frame parameters, flagging the sources whose HRTF
// must be recomputed.
func (st *renderState) update(next *frameParams) {
	prev := &st.params
	if next.interpMode != prev.interpMode {
		st.method = next.interpMode.method()
		st.invalidateSources()
	}

	moved := false
	for i := range st.nSources {
		if next.dirs[i] != prev.dirs[i] {
			st.needsInterp[i] = true
			moved = true
		}
	}

	if next.rotation != prev.rotation || (moved && next.rotation.enabled) {
		st.rotationDirty = true
		if next.rotation.enabled != prev.rotation.enabled {
			st.invalidateSources()
		}
	}

	*prev = *next
}

func (st *renderState) invalidateSources() {
	for i := range st.needsInterp {
		st.needsInterp[i] = true
	}
}

func (st *renderState) render(inputs, outputs [][]float32) {
	n := st.nSources
	p := &st.params
	bands := st.hrtf.table(0).Bands

	for ch, dst := range st.in {
		clear(dst)
		if ch < len(inputs) {
			src := inputs[ch][:min(len(inputs[ch]), FrameSize)]
			for i, v := range src {
				dst[i] = float64(v)
			}
		}
	}
	simdops.ScaleFrames(st.in, p.gains[:n])

	st.fb.Forward(st.in, st.inFrame)

	if p.rotation.enabled && st.rotationDirty {
		rot := p.rotation
		rotation.Rotate(st.rotated, p.dirs[:n], rotation.Matrix(rot.yaw, rot.pitch, rot.roll, rot.order))
		st.rotationDirty = false
		st.invalidateSources()
	}

	for s := range n {
		if !st.needsInterp[s] {
			continue
		}
		dir := p.dirs[s]
		if p.rotation.enabled {
			dir = st.rotated[s]
		}
		interp.ForDirection(st.hrtfs[s], st.hrtf.table(s), st.hrtf.gains, dir, st.method)
		st.needsInterp[s] = false
	}

	st.outFrame.Zero()
	for b := range bands {
		acc := st.outFrame.Band(b)
		lo, hi := b*NumEars, (b+1)*NumEars
		for s := range n {
			x := st.inFrame.At(b, s, 0)
			if x == 0 {
				continue
			}
			cmplxs.AddScaled(acc, x, st.hrtfs[s][lo:hi])
		}
	}
	cmplxs.ScaleReal(1/math.Sqrt(float64(n)), st.outFrame.Data)

	st.fb.Backward(st.outFrame, st.out)

	for ch, dst := range outputs {
		dst = dst[:min(FrameSize, len(dst))]
		if ch >= NumEars {
			clear(dst)
			continue
		}
		for i := range dst {
			dst[i] = float32(st.out[ch][i])
		}
	}
}

// interpolateDirection computes the HRTF source s would use at dir into dst.
func interpolateDirection(dst []complex128, d *hrtfData, s int, dir Direction, mode InterpMode) {
	interp.ForDirection(dst, d.table(s), d.gains, dir, mode.method())
}

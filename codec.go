package binaural

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-binaural/internal/diffeq"
	"github.com/tphakala/go-binaural/internal/filterbank"
	"github.com/tphakala/go-binaural/internal/hrir"
	"github.com/tphakala/go-binaural/internal/mathutil"
	"github.com/tphakala/go-binaural/internal/vbap"
)

// hrtfData is everything derived from one HRIR set. It is never modified
// after it has been built.
type hrtfData struct {
	loaded       *hrir.Set     // as returned by the provider
	runtime      *hrir.Set     // resampled to the host rate
	tables       []*hrir.Table // one per emitter with its own responses, otherwise one
	gains        *vbap.Table
	usingDefault bool
	eqApplied    bool

	// sources replaces the configured layout when non-nil.
	sources []Direction
}

// table returns the table source s is rendered with. Sources beyond the
// last emitter use its responses.
func (d *hrtfData) table(s int) *hrir.Table {
	return d.tables[min(max(s, 0), len(d.tables)-1)]
}

// initRequest is the settings snapshot an initialisation works from.
type initRequest struct {
	params        frameParams
	sampleRate    int
	nSources      int
	hrirPath      string
	useDefault    bool
	enableEQ      bool
	eqMode        DiffEQMode
	userSources   bool
	reinit        ReinitMode
	channelsDirty bool
}

// takeInitRequest snapshots the settings and clears the flags it consumes,
// so setters racing with the rebuild raise them again.
func (r *Renderer) takeInitRequest() initRequest {
	r.settingsMu.Lock()
	defer r.settingsMu.Unlock()

	s := &r.settings
	req := initRequest{
		params:        s.params,
		sampleRate:    s.sampleRate,
		nSources:      s.nSources,
		hrirPath:      s.hrirPath,
		useDefault:    s.useDefault,
		enableEQ:      s.enableEQ,
		eqMode:        s.eqMode,
		userSources:   s.userSources,
		reinit:        s.reinit,
		channelsDirty: s.channelsDirty,
	}
	s.reinit = ReinitNone
	s.channelsDirty = false
	return req
}

// restoreFlags re-raises the flags of a request that could not be completed.
func (r *Renderer) restoreFlags(req *initRequest) {
	r.withSettings(func(s *settings) {
		s.requestReinit(req.reinit)
		s.channelsDirty = s.channelsDirty || req.channelsDirty
	})
}

// InitCodec builds the HRTF and interpolation tables if they are stale.
// It is a no-op unless the codec status is CodecNotInitialized.
//
// Problems with the requested HRIR set are logged and handled by falling
// back to the built-in set. An error is returned only if no tables could be
// built at all, in which case Process keeps producing silence.
func (r *Renderer) InitCodec() error {
	r.stateMu.Lock()
	if CodecStatus(r.codecStatus.Load()) != CodecNotInitialized {
		r.stateMu.Unlock()
		return nil
	}
	r.codecStatus.Store(int32(CodecInitializing))
	r.stateMu.Unlock()

	r.setProgress(progressStart, "Initialising", "")

	req := r.takeInitRequest()
	prev := r.state.Load()

	next, err := r.build(prev, &req)
	if err != nil {
		r.restoreFlags(&req)
		r.logger.Printf("initialisation failed: %v", err)
		r.setProgress(progressStart, "Initialisation failed", err.Error())
		r.finishInit(CodecNotInitialized)
		return err
	}

	if next.hrtf.sources != nil {
		r.withSettings(func(s *settings) {
			s.nSources = len(next.hrtf.sources)
			copy(s.params.dirs[:], next.hrtf.sources)
		})
	}

	// Wait for any frame in flight, then swap.
	r.procMu.Lock()
	if err := next.fb.SetChannels(next.nSources); err != nil {
		r.procMu.Unlock()
		r.restoreFlags(&req)
		r.finishInit(CodecNotInitialized)
		return err
	}
	r.state.Store(next)
	r.procMu.Unlock()

	r.setProgress(progressDone, "Done!", "")
	r.finishInit(CodecInitialized)
	return nil
}

func (r *Renderer) finishInit(status CodecStatus) {
	r.stateMu.Lock()
	r.codecStatus.Store(int32(status))
	r.stateCond.Broadcast()
	r.stateMu.Unlock()
}

// build creates the state the next frames are rendered with. prev may be nil.
// Only data that is never written by Process is read from prev, apart from
// the filterbank pointer, which is resized under the process lock.
func (r *Renderer) build(prev *renderState, req *initRequest) (*renderState, error) {
	var (
		data *hrtfData
		err  error
	)
	if prev != nil && req.reinit == ReinitNone {
		// A layout taken from the set was adopted when it was loaded.
		reused := *prev.hrtf
		reused.sources = nil
		data = &reused
	} else {
		data, err = r.loadHRTFs(prev, req)
		if err != nil {
			return nil, err
		}
	}

	nSources := req.nSources
	params := req.params
	if data.sources != nil {
		nSources = len(data.sources)
		copy(params.dirs[:], data.sources)
	}

	var fb *filterbank.STFT
	if prev != nil {
		fb = prev.fb
	} else {
		fb, err = filterbank.New(nSources, NumEars, filterbank.DefaultHop)
		if err != nil {
			return nil, err
		}
	}

	return newRenderState(data, fb, nSources, &params), nil
}

// loadHRTFs runs the HRIR pipeline, retrying once with the built-in set
// when the requested set cannot be turned into tables.
func (r *Renderer) loadHRTFs(prev *renderState, req *initRequest) (*hrtfData, error) {
	useDefault := req.useDefault
	var lastErr error
	for attempt := 0; attempt <= maxInitRetries; attempt++ {
		data, err := r.prepareHRTFs(prev, req, useDefault)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if useDefault {
			break
		}
		r.logger.Printf("warning: %v; retrying with the default HRIR set", err)
		useDefault = true
	}
	return nil, lastErr
}

func (r *Renderer) prepareHRTFs(prev *renderState, req *initRequest, useDefault bool) (*hrtfData, error) {
	data := &hrtfData{}

	r.setProgress(progressLoad, "Loading HRIRs", "")
	fellBack := useDefault && !req.useDefault
	if req.reinit == ReinitResample && prev != nil && !fellBack {
		data.loaded = prev.hrtf.loaded
		data.usingDefault = prev.hrtf.usingDefault
	} else {
		set, providerFailed, warning := hrir.Load(req.hrirPath, useDefault, r.provider)
		if warning != nil {
			r.warnLoad(warning)
		}
		data.loaded = set
		fellBack = fellBack || providerFailed
		data.usingDefault = useDefault || req.hrirPath == "" || fellBack

		switch {
		case !data.usingDefault && len(set.Emitters) > 0:
			n := min(len(set.Emitters), MaxNumSources)
			data.sources = append([]Direction(nil), set.Emitters[:n]...)
		case fellBack && !req.userSources:
			data.sources = []Direction{
				{Azimuth: fallbackSourceAzimuth},
				{Azimuth: -fallbackSourceAzimuth},
			}
		}
	}

	r.setProgress(progressResample, "Resampling HRIRs", fmt.Sprintf("%d Hz to %d Hz", data.loaded.SampleRate, req.sampleRate))
	runtime, err := hrir.Resample(data.loaded, req.sampleRate, r.quality)
	if err != nil {
		return nil, err
	}
	data.runtime = runtime

	r.setProgress(progressITD, "Estimating ITDs", "")
	responses := make([]*hrir.Set, runtime.NumResponseSets())
	itds := make([][]float64, len(responses))
	for e := range responses {
		responses[e] = runtime.ForEmitter(e)
		if itds[e], err = hrir.EstimateITDs(responses[e]); err != nil {
			return nil, err
		}
	}

	r.setProgress(progressTable, "Generating interpolation table", "")
	gains, err := vbap.Build(runtime.Directions, r.azRes, r.elRes)
	if err != nil {
		return nil, err
	}
	if gains.FallbackCells > 0 {
		r.logger.Printf("warning: %d of %d interpolation cells lie outside every triangle", gains.FallbackCells, gains.NumCells())
	}
	data.gains = gains

	r.setProgress(progressTransform, "Applying HRIR filterbank transform", "")
	data.tables = make([]*hrir.Table, len(responses))
	for e, resp := range responses {
		data.tables[e] = hrir.NewTable(resp, itds[e], filterbank.DefaultHop)
	}

	if req.enableEQ {
		r.setProgress(progressEQ, fmt.Sprintf("Applying %s diffuse-field EQ", req.eqMode), "")
		if tables, err := equalizeAll(data.tables, runtime.Directions, req.eqMode.mode()); err != nil {
			r.logger.Printf("warning: %v; diffuse-field EQ skipped", err)
		} else {
			data.tables = tables
			data.eqApplied = true
		}
	}

	return data, nil
}

// equalizeAll equalises every table, or none of them.
func equalizeAll(tables []*hrir.Table, dirs []Direction, mode diffeq.Mode) ([]*hrir.Table, error) {
	out := make([]*hrir.Table, len(tables))
	for e, t := range tables {
		eq, err := diffeq.Equalize(t, dirs, mode)
		if err != nil {
			return nil, err
		}
		out[e] = eq
	}
	return out, nil
}

func (r *Renderer) warnLoad(err error) {
	if errors.Is(err, hrir.ErrReceiverCount) {
		r.logger.Printf("warning: %v; HRIR sets must have exactly %d receivers, using the default set", err, NumEars)
		return
	}
	r.logger.Printf("warning: %v; using the default set", err)
}

// current returns the installed state, or nil before the first InitCodec.
func (r *Renderer) current() *hrtfData {
	if st := r.state.Load(); st != nil {
		return st.hrtf
	}
	return nil
}

// UsingDefaultHRIRs reports whether the tables in use come from the built-in set.
func (r *Renderer) UsingDefaultHRIRs() bool {
	d := r.current()
	return d == nil || d.usingDefault
}

// DiffuseEQApplied reports whether the tables in use were equalised.
func (r *Renderer) DiffuseEQApplied() bool {
	d := r.current()
	return d != nil && d.eqApplied
}

// NumHRIRDirections returns the number of measurement directions in use.
func (r *Renderer) NumHRIRDirections() int {
	if d := r.current(); d != nil {
		return d.runtime.NumDirs()
	}
	return 0
}

// HRIRDirection returns measurement direction i in degrees.
func (r *Renderer) HRIRDirection(i int) (Direction, bool) {
	d := r.current()
	if d == nil || i < 0 || i >= d.runtime.NumDirs() {
		return Direction{}, false
	}
	return d.runtime.Directions[i], true
}

// HRIRLength returns the length of the impulse responses in use, after resampling.
func (r *Renderer) HRIRLength() int {
	if d := r.current(); d != nil {
		return d.runtime.Length
	}
	return 0
}

// HRIRSampleRate returns the sample rate the loaded HRIRs were measured at.
func (r *Renderer) HRIRSampleRate() int {
	if d := r.current(); d != nil {
		return d.loaded.SampleRate
	}
	return 0
}

// NumTriangles returns the number of triangles used by the interpolation table.
func (r *Renderer) NumTriangles() int {
	if d := r.current(); d != nil {
		return d.gains.NumTriangles
	}
	return 0
}

// TwoDimensional reports whether the interpolation table is a single ring.
func (r *Renderer) TwoDimensional() bool {
	d := r.current()
	return d != nil && d.gains.TwoDimensional
}

// Interpolate returns the HRTF the renderer would use for dir, laid out
// [band][ear], along with the centre frequency of every band. With
// per-emitter room responses, those of the first emitter are used.
func (r *Renderer) Interpolate(dir Direction, mode InterpMode) ([]complex128, []float64, error) {
	d := r.current()
	if d == nil {
		return nil, nil, ErrNotInitialized
	}
	dir.Azimuth = mathutil.WrapAzimuth(dir.Azimuth)
	dir.Elevation = mathutil.Clamp(dir.Elevation, -mathutil.QuarterTurn, mathutil.QuarterTurn)

	t := d.table(0)
	out := make([]complex128, t.Bands*NumEars)
	interpolateDirection(out, d, 0, dir, mode)
	return out, append([]float64(nil), t.Freqs...), nil
}

// HRIRDirections returns a copy of the measurement directions in use.
func (r *Renderer) HRIRDirections() []Direction {
	d := r.current()
	if d == nil {
		return nil
	}
	return append([]Direction(nil), d.runtime.Directions...)
}

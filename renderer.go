package binaural

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/tphakala/go-binaural/internal/diffeq"
	"github.com/tphakala/go-binaural/internal/hrir"
	"github.com/tphakala/go-binaural/internal/interp"
	"github.com/tphakala/go-binaural/internal/rotation"
	"github.com/tphakala/go-binaural/internal/sphere"
	"github.com/tphakala/go-binaural/internal/vbap"
)

// Direction is a source or measurement direction in degrees. Azimuth is
// measured anticlockwise from the front, elevation upwards from the horizon.
type Direction = sphere.Direction

// Provider loads HRIR sets from files. See hrir.WAVProvider for the
// built-in implementation.
type Provider = hrir.Provider

// Common errors returned by the renderer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid renderer configuration")

	// ErrSourceIndex indicates a source index outside [0, MaxNumSources).
	ErrSourceIndex = errors.New("source index out of range")

	// ErrNotInitialized indicates the renderer has no usable HRTF tables.
	ErrNotInitialized = errors.New("renderer not initialized")
)

// InterpMode selects how HRTFs between measurement directions are computed.
type InterpMode int

const (
	// InterpDirect takes the weighted complex sum of the three neighbours.
	InterpDirect InterpMode = iota

	// InterpMagnitudeITD interpolates magnitudes and ITDs separately and
	// rebuilds the interaural phase below 1.5 kHz.
	InterpMagnitudeITD
)

func (m InterpMode) String() string {
	switch m {
	case InterpDirect:
		return "direct"
	case InterpMagnitudeITD:
		return "magnitude-itd"
	default:
		return fmt.Sprintf("InterpMode(%d)", int(m))
	}
}

func (m InterpMode) method() interp.Method {
	if m == InterpMagnitudeITD {
		return interp.MagnitudeITD{}
	}
	return interp.Direct{}
}

// DiffEQMode selects the diffuse-field equalisation applied to loaded sets.
type DiffEQMode int

const (
	// DiffEQReferenceHead applies a fixed correction derived from a reference head.
	DiffEQReferenceHead DiffEQMode = iota

	// DiffEQMeasuredField derives the correction from the loaded set itself.
	DiffEQMeasuredField
)

func (m DiffEQMode) String() string {
	switch m {
	case DiffEQReferenceHead:
		return "reference-head"
	case DiffEQMeasuredField:
		return "measured-field"
	default:
		return fmt.Sprintf("DiffEQMode(%d)", int(m))
	}
}

func (m DiffEQMode) mode() diffeq.Mode {
	if m == DiffEQMeasuredField {
		return diffeq.MeasuredField{}
	}
	return diffeq.ReferenceHead{}
}

// RotationOrder is the order in which yaw, pitch and roll are applied.
type RotationOrder = rotation.Order

// Rotation orders.
const (
	YawPitchRoll = rotation.YawPitchRoll
	RollPitchYaw = rotation.RollPitchYaw
)

// ReinitMode describes how much of the HRTF pipeline must be rebuilt.
type ReinitMode int

const (
	// ReinitNone keeps the loaded tables.
	ReinitNone ReinitMode = iota

	// ReinitResample keeps the loaded impulse responses and redoes
	// everything that depends on the sample rate.
	ReinitResample

	// ReinitFull reloads the impulse responses.
	ReinitFull
)

// CodecStatus is the state of the HRTF pipeline.
type CodecStatus int32

const (
	CodecNotInitialized CodecStatus = iota
	CodecInitializing
	CodecInitialized
)

func (s CodecStatus) String() string {
	switch s {
	case CodecNotInitialized:
		return "not initialized"
	case CodecInitializing:
		return "initializing"
	case CodecInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("CodecStatus(%d)", int32(s))
	}
}

// ProcStatus is the state of the audio path.
type ProcStatus int32

const (
	ProcIdle ProcStatus = iota
	ProcProcessing
)

func (s ProcStatus) String() string {
	if s == ProcProcessing {
		return "processing"
	}
	return "idle"
}

// TableResolution is the grid spacing of the interpolation table in degrees.
type TableResolution struct {
	Azimuth   float64
	Elevation float64
}

// Config holds renderer configuration.
type Config struct {
	// SampleRate of the host audio in Hz.
	SampleRate int

	// NumSources is the initial number of sources. Zero selects one source
	// and lets a loaded room response set define the layout.
	NumSources int

	// HRIRPath is the file to load with Provider. Empty selects the built-in set.
	HRIRPath string

	// Provider reads HRIR files. It may be nil when only the built-in set is used.
	Provider Provider

	// Logger receives warnings about recoverable problems.
	// nil logs to stderr with a "binaural: " prefix.
	Logger *log.Logger

	// InterpMode selects the HRTF interpolation method.
	InterpMode InterpMode

	// EnableDiffuseEQ applies diffuse-field equalisation to loaded sets.
	EnableDiffuseEQ bool

	// DiffEQMode selects the equalisation method.
	DiffEQMode DiffEQMode

	// TableResolution of the interpolation grid. Zero values select the defaults.
	TableResolution TableResolution

	// Resampling quality used when the HRIR and host sample rates differ.
	Resampling resampler.QualityPreset
}

// DefaultConfig returns the configuration used when New is given nil.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:      defaultSampleRate,
		InterpMode:      InterpMagnitudeITD,
		EnableDiffuseEQ: true,
		DiffEQMode:      DiffEQReferenceHead,
		TableResolution: TableResolution{
			Azimuth:   vbap.DefaultAzimuthResolution,
			Elevation: vbap.DefaultElevationResolution,
		},
		Resampling: resampler.QualityHigh,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be %d-%d Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	if c.NumSources < 0 || c.NumSources > MaxNumSources {
		return fmt.Errorf("%w: source count must be 0-%d", ErrInvalidConfig, MaxNumSources)
	}

	if c.InterpMode != InterpDirect && c.InterpMode != InterpMagnitudeITD {
		return fmt.Errorf("%w: unknown interpolation mode %v", ErrInvalidConfig, c.InterpMode)
	}

	if c.DiffEQMode != DiffEQReferenceHead && c.DiffEQMode != DiffEQMeasuredField {
		return fmt.Errorf("%w: unknown diffuse-field EQ mode %v", ErrInvalidConfig, c.DiffEQMode)
	}

	if c.TableResolution.Azimuth < 0 || c.TableResolution.Elevation < 0 {
		return fmt.Errorf("%w: table resolution must not be negative", ErrInvalidConfig)
	}

	if c.Resampling < resampler.QualityQuick || c.Resampling > resampler.QualityVeryHigh {
		return fmt.Errorf("%w: unknown resampling quality %d", ErrInvalidConfig, c.Resampling)
	}

	return nil
}

// Renderer turns up to MaxNumSources mono signals into a binaural pair.
//
// Process is meant to be called from an audio thread and never blocks on
// configuration: while tables are being rebuilt it outputs silence.
// Setters and InitCodec may be called concurrently from another goroutine.
type Renderer struct {
	logger   *log.Logger
	provider Provider
	quality  resampler.QualityPreset
	azRes    float64
	elRes    float64

	// settingsMu guards settings. Process only ever tries to take it.
	settingsMu sync.Mutex
	settings   settings

	// stateMu and stateCond order codec status transitions.
	stateMu     sync.Mutex
	stateCond   *sync.Cond
	codecStatus atomic.Int32
	procStatus  atomic.Int32

	// procMu is held for the duration of a frame and while tables are swapped.
	procMu sync.Mutex
	state  atomic.Pointer[renderState]

	progressMu sync.Mutex
	progress   progress
}

type progress struct {
	fraction float64
	text     string
	tooltip  string
}

// New creates a renderer. Tables are built by the first call to InitCodec.
func New(cfg *Config) (*Renderer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		logger:   cfg.Logger,
		provider: cfg.Provider,
		quality:  cfg.Resampling,
		azRes:    cfg.TableResolution.Azimuth,
		elRes:    cfg.TableResolution.Elevation,
	}
	if r.logger == nil {
		r.logger = log.New(os.Stderr, "binaural: ", log.LstdFlags)
	}
	if r.azRes == 0 {
		r.azRes = vbap.DefaultAzimuthResolution
	}
	if r.elRes == 0 {
		r.elRes = vbap.DefaultElevationResolution
	}
	r.stateCond = sync.NewCond(&r.stateMu)

	r.settings = newSettings(cfg)
	r.progress = progress{fraction: progressStart, text: "Not initialised"}

	return r, nil
}

// FrameSize returns the number of samples Process expects per call.
func (r *Renderer) FrameSize() int { return FrameSize }

// ProcessingDelay returns the renderer latency in samples.
func (r *Renderer) ProcessingDelay() int { return ProcessingDelay }

// NumEars returns the number of binaural output channels.
func (r *Renderer) NumEars() int { return NumEars }

// MaxNumSources returns the maximum supported number of sources.
func (r *Renderer) MaxNumSources() int { return MaxNumSources }

// CodecStatus returns the state of the HRTF pipeline.
func (r *Renderer) CodecStatus() CodecStatus {
	return CodecStatus(r.codecStatus.Load())
}

// ProcStatus returns the state of the audio path.
func (r *Renderer) ProcStatus() ProcStatus {
	return ProcStatus(r.procStatus.Load())
}

// Progress returns the initialisation progress in [0, 1] with a short
// status text and a longer description.
func (r *Renderer) Progress() (fraction float64, text, tooltip string) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	return r.progress.fraction, r.progress.text, r.progress.tooltip
}

func (r *Renderer) setProgress(fraction float64, text, tooltip string) {
	r.progressMu.Lock()
	r.progress = progress{fraction: fraction, text: text, tooltip: tooltip}
	r.progressMu.Unlock()
}

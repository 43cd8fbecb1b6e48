package binaural

import (
	"github.com/tphakala/go-binaural/internal/filterbank"
	"github.com/tphakala/go-binaural/internal/hrir"
)

// Renderer limits and fixed processing parameters.
const (
	// FrameSize is the number of samples per channel Process consumes per call.
	FrameSize = filterbank.DefaultHop

	// MaxNumSources is the maximum number of sources that can be rendered.
	MaxNumSources = 64

	// NumEars is the number of output channels carrying signal.
	NumEars = hrir.NumEars

	// ProcessingDelay is the worst-case latency of the renderer in samples:
	// the filterbank delay plus one frame of host buffering.
	ProcessingDelay = FrameSize + filterbank.DefaultHop
)

// Sample rate limits.
const (
	minSampleRate = 8000
	maxSampleRate = 384000

	defaultSampleRate = 48000
)

// Default layout used when a file could not be loaded and no sources were configured.
const fallbackSourceAzimuth = 33.0

// Progress bar positions of the initialisation steps.
const (
	progressStart     = 0.0
	progressLoad      = 0.1
	progressResample  = 0.25
	progressITD       = 0.4
	progressTable     = 0.55
	progressTransform = 0.7
	progressEQ        = 0.85
	progressDone      = 1.0
)

// maxInitRetries bounds how often initialisation is retried with the default set.
const maxInitRetries = 1

// noFile is reported by SOFAFilePath when no file is configured.
const noFile = "no_file"

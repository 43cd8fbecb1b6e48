package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	resampler "github.com/tphakala/go-audio-resampler"
	binaural "github.com/tphakala/go-binaural"
	"github.com/tphakala/go-binaural/internal/hrir"
)

type renderOptions struct {
	azimuths   string
	elevations string
	yaw        float64
	pitch      float64
	roll       float64
	verbose    bool
}

type renderStats struct {
	sources        int
	sampleRate     int
	bitDepth       int
	samples        int64
	directions     []binaural.Direction
	hrirSource     string
	hrirDirections int
	triangles      int
}

func parseInterpMode(s string) (binaural.InterpMode, error) {
	switch strings.ToLower(s) {
	case "direct":
		return binaural.InterpDirect, nil
	case "magitd", "magnitude-itd":
		return binaural.InterpMagnitudeITD, nil
	default:
		return 0, fmt.Errorf("unknown interpolation mode %q", s)
	}
}

func parseEQMode(s string) (binaural.DiffEQMode, error) {
	switch strings.ToLower(s) {
	case "reference", "reference-head":
		return binaural.DiffEQReferenceHead, nil
	case "measured", "measured-field":
		return binaural.DiffEQMeasuredField, nil
	default:
		return 0, fmt.Errorf("unknown diffuse-field EQ mode %q", s)
	}
}

func parseQuality(q string) (resampler.QualityPreset, error) {
	switch strings.ToLower(q) {
	case "quick":
		return resampler.QualityQuick, nil
	case "low":
		return resampler.QualityLow, nil
	case "medium":
		return resampler.QualityMedium, nil
	case "high":
		return resampler.QualityHigh, nil
	case "veryhigh":
		return resampler.QualityVeryHigh, nil
	default:
		return 0, fmt.Errorf("unknown quality %q", q)
	}
}

// parseAngles parses a comma-separated list of degrees. An empty string yields nil.
func parseAngles(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid angle %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}

// sourceDirections builds one direction per channel. Missing azimuths are
// spread evenly across the front; missing elevations are zero.
func sourceDirections(channels int, azimuths, elevations []float64) ([]binaural.Direction, error) {
	if len(azimuths) > channels || len(elevations) > channels {
		return nil, fmt.Errorf("%d channels but %d azimuths and %d elevations", channels, len(azimuths), len(elevations))
	}

	dirs := make([]binaural.Direction, channels)
	for i := range dirs {
		switch {
		case i < len(azimuths):
			dirs[i].Azimuth = azimuths[i]
		case channels > 1:
			dirs[i].Azimuth = spreadDegrees - 2*spreadDegrees*float64(i)/float64(channels-1)
		}
		if i < len(elevations) {
			dirs[i].Elevation = elevations[i]
		}
	}
	return dirs, nil
}

// parseDirections reads one "azimuth elevation" pair per line. Blank lines
// and lines starting with '#' are skipped.
func parseDirections(r io.Reader) ([]binaural.Direction, error) {
	var dirs []binaural.Direction
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 'azimuth elevation', got %q", line, text)
		}
		az, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		el, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dirs = append(dirs, binaural.Direction{Azimuth: az, Elevation: el})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dirs, nil
}

// loadProvider returns a WAV provider for the directions listed in path.
func loadProvider(path string) (*hrir.WAVProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("-hrir requires -hrir-dirs")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open direction list: %w", err)
	}
	defer func() { _ = f.Close() }()

	dirs, err := parseDirections(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &hrir.WAVProvider{Directions: dirs}, nil
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveInto converts interleaved int samples into per-channel buffers.
func deinterleaveInto(data []int, channelBufs [][]float32, numChannels, frames int, invMaxVal float64) {
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			channelBufs[ch][i] = float32(float64(data[base+ch]) * invMaxVal)
		}
	}
}

// interleaveInto converts a left/right pair into clamped interleaved ints.
// Returns the number of elements written.
func interleaveInto(left, right []float32, dst []int, maxVal float64) int {
	n := min(len(left), len(right), len(dst)/stereoChannels)
	for i := range n {
		dst[i*stereoChannels] = int(clampUnit(float64(left[i])) * maxVal)
		dst[i*stereoChannels+1] = int(clampUnit(float64(right[i])) * maxVal)
	}
	return n * stereoChannels
}

func clampUnit(v float64) float64 {
	return min(max(v, -1), 1)
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < 1 || format.NumChannels > binaural.MaxNumSources {
		_ = inputFile.Close()
		return nil, fmt.Errorf("%s: %d channels, want 1-%d", path, format.NumChannels, binaural.MaxNumSources)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     format.NumChannels,
		bitDepth:     bitDepth,
		totalSamples: int64(duration.Seconds() * float64(format.SampleRate)),
		format:       format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createWAVOutput creates a stereo output file.
func createWAVOutput(path string, sampleRate, bitDepth int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, stereoChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: stereoChannels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples writes interleaved stereo samples.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	if len(samples) == 0 {
		return nil
	}
	w.buf.Data = samples
	return w.encoder.Write(w.buf)
}

// Close finalises the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if !p.verbose || p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// newRenderer creates a renderer for the input and builds its tables.
func newRenderer(cfg *binaural.Config, input *wavInputInfo, dirs []binaural.Direction, opts *renderOptions) (*binaural.Renderer, error) {
	cfg.SampleRate = input.rate
	cfg.NumSources = input.channels

	r, err := binaural.New(cfg)
	if err != nil {
		return nil, err
	}
	for i, d := range dirs {
		if err := r.SetSourceDirection(i, d); err != nil {
			return nil, err
		}
	}
	if opts.yaw != 0 || opts.pitch != 0 || opts.roll != 0 {
		r.SetRotation(true)
		r.SetYaw(opts.yaw)
		r.SetPitch(opts.pitch)
		r.SetRoll(opts.roll)
	}

	if err := r.InitCodec(); err != nil {
		return nil, err
	}
	if opts.verbose {
		_, text, _ := r.Progress()
		log.Printf("Renderer: %s, %d HRIR directions, delay %d samples", text, r.NumHRIRDirections(), r.ProcessingDelay())
	}
	return r, nil
}

func binauraliseWAV(inputPath, outputPath string, cfg *binaural.Config, opts *renderOptions) (stats *renderStats, err error) {
	input, err := openWAVInput(inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	azimuths, err := parseAngles(opts.azimuths)
	if err != nil {
		return nil, err
	}
	elevations, err := parseAngles(opts.elevations)
	if err != nil {
		return nil, err
	}
	dirs, err := sourceDirections(input.channels, azimuths, elevations)
	if err != nil {
		return nil, err
	}

	r, err := newRenderer(cfg, input, dirs, opts)
	if err != nil {
		return nil, err
	}
	stream, err := r.NewStream(input.channels)
	if err != nil {
		return nil, err
	}

	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	hrirSource := r.SOFAFilePath()
	if r.UsingDefaultHRIRs() {
		hrirSource = "built-in"
	}
	stats = &renderStats{
		sources:        input.channels,
		sampleRate:     input.rate,
		bitDepth:       input.bitDepth,
		directions:     dirs,
		hrirSource:     hrirSource,
		hrirDirections: r.NumHRIRDirections(),
		triangles:      r.NumTriangles(),
	}

	intBuffer := &audio.IntBuffer{Data: make([]int, bufferSize*input.channels), Format: input.format}
	channelBufs := make([][]float32, input.channels)
	for ch := range channelBufs {
		channelBufs[ch] = make([]float32, bufferSize)
	}
	left := make([]float32, bufferSize)
	right := make([]float32, bufferSize)
	outInts := make([]int, bufferSize*stereoChannels)
	maxVal := getMaxValue(input.bitDepth)
	invMaxVal := 1 / maxVal

	progress := newProgressTracker(input.totalSamples, opts.verbose)
	var written int64

	// drain writes rendered samples, never more than were read.
	drain := func() error {
		for stream.Available() > 0 && written < stats.samples {
			want := int(min(int64(bufferSize), stats.samples-written))
			n := stream.Read(left[:want], right[:want])
			m := interleaveInto(left[:n], right[:n], outInts, maxVal)
			if err := output.WriteSamples(outInts[:m]); err != nil {
				return fmt.Errorf("failed to write audio data: %w", err)
			}
			written += int64(n)
		}
		return nil
	}

	for {
		n, err := input.decoder.PCMBuffer(intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / input.channels
		if frames == 0 {
			break
		}

		deinterleaveInto(intBuffer.Data, channelBufs, input.channels, frames, invMaxVal)
		for ch := range channelBufs {
			channelBufs[ch] = channelBufs[ch][:frames]
		}
		stream.Write(channelBufs)
		for ch := range channelBufs {
			channelBufs[ch] = channelBufs[ch][:bufferSize]
		}
		stats.samples += int64(frames)

		if err := drain(); err != nil {
			return nil, err
		}
		progress.reportIfNeeded(stats.samples)
	}

	stream.Flush()
	if err := drain(); err != nil {
		return nil, err
	}

	return stats, nil
}

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-audio-resampler"
	binaural "github.com/tphakala/go-binaural"
)

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.wav")
	err := os.WriteFile(invalidFile, []byte("not a wav file"), 0o644)
	require.NoError(t, err)

	_, err = openWAVInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestCreateWAVOutput_InvalidDirectory(t *testing.T) {
	_, err := createWAVOutput("/nonexistent/dir/output.wav", 48000, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestParseAngles(t *testing.T) {
	got, err := parseAngles(" 30, -30 ,90")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, -30, 90}, got)

	got, err = parseAngles("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseAngles("30,abc")
	require.Error(t, err)
}

func TestSourceDirections(t *testing.T) {
	t.Run("spread", func(t *testing.T) {
		dirs, err := sourceDirections(3, nil, nil)
		require.NoError(t, err)
		assert.InDelta(t, 90.0, dirs[0].Azimuth, 1e-12)
		assert.InDelta(t, 0.0, dirs[1].Azimuth, 1e-12)
		assert.InDelta(t, -90.0, dirs[2].Azimuth, 1e-12)
	})

	t.Run("mono", func(t *testing.T) {
		dirs, err := sourceDirections(1, nil, []float64{20})
		require.NoError(t, err)
		assert.Equal(t, binaural.Direction{Azimuth: 0, Elevation: 20}, dirs[0])
	})

	t.Run("explicit", func(t *testing.T) {
		dirs, err := sourceDirections(2, []float64{30, -30}, nil)
		require.NoError(t, err)
		assert.Equal(t, 30.0, dirs[0].Azimuth)
		assert.Equal(t, -30.0, dirs[1].Azimuth)
	})

	t.Run("too many angles", func(t *testing.T) {
		_, err := sourceDirections(1, []float64{30, -30}, nil)
		require.Error(t, err)
	})
}

func TestParseDirections(t *testing.T) {
	src := "# az el\n0 0\n\n90, 10\n-90 -10\n"
	dirs, err := parseDirections(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []binaural.Direction{
		{Azimuth: 0, Elevation: 0},
		{Azimuth: 90, Elevation: 10},
		{Azimuth: -90, Elevation: -10},
	}, dirs)

	_, err = parseDirections(strings.NewReader("0\n"))
	require.Error(t, err)
}

func TestParseModes(t *testing.T) {
	m, err := parseInterpMode("direct")
	require.NoError(t, err)
	assert.Equal(t, binaural.InterpDirect, m)

	eq, err := parseEQMode("measured")
	require.NoError(t, err)
	assert.Equal(t, binaural.DiffEQMeasuredField, eq)

	q, err := parseQuality("veryhigh")
	require.NoError(t, err)
	assert.Equal(t, resampler.QualityVeryHigh, q)

	_, err = parseInterpMode("nearest")
	require.Error(t, err)
}

func TestInterleaveInto_Clamps(t *testing.T) {
	dst := make([]int, 4)
	n := interleaveInto([]float32{0.5, 2}, []float32{-0.5, -2}, dst, maxInt16)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int{16383, -16383, 32767, -32767}, dst)
}

func TestDeinterleaveInto(t *testing.T) {
	bufs := [][]float32{make([]float32, 2), make([]float32, 2)}
	deinterleaveInto([]int{32767, 0, -32767, 16384}, bufs, 2, 2, 1/maxInt16)
	assert.InDelta(t, 1.0, bufs[0][0], 1e-6)
	assert.InDelta(t, -1.0, bufs[0][1], 1e-6)
	assert.InDelta(t, 0.0, bufs[1][0], 1e-6)
	assert.InDelta(t, 0.5, bufs[1][1], 1e-4)
}

func TestProgressTracker_NonVerboseMode(t *testing.T) {
	tracker := newProgressTracker(1000, false)
	tracker.reportIfNeeded(500)
	assert.Equal(t, 0, tracker.lastProgress)
}

func writeTestWAV(t *testing.T, path string, rate int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, bitsPerSample16, 1, wavFormatPCM)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitsPerSample16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestBinauraliseWAV_Impulse(t *testing.T) {
	const (
		rate   = 48000
		length = 3000
	)
	tmpDir := t.TempDir()
	in := filepath.Join(tmpDir, "in.wav")
	out := filepath.Join(tmpDir, "out.wav")

	data := make([]int, length)
	data[100] = 30000
	writeTestWAV(t, in, rate, data)

	cfg := binaural.DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	stats, err := binauraliseWAV(in, out, cfg, &renderOptions{azimuths: "90"})
	require.NoError(t, err)
	assert.Equal(t, int64(length), stats.samples)
	assert.Equal(t, "built-in", stats.hrirSource)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, stereoChannels, buf.Format.NumChannels)
	require.Len(t, buf.Data, length*stereoChannels)

	var peakL, peakR int
	for i := 0; i < len(buf.Data); i += stereoChannels {
		peakL = max(peakL, abs(buf.Data[i]))
		peakR = max(peakR, abs(buf.Data[i+1]))
	}
	assert.Positive(t, peakL)
	assert.Positive(t, peakR)
	// Source on the left: the left ear is louder.
	assert.Greater(t, peakL, peakR)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package hrir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-binaural/internal/sphere"
)

func testDirs() []sphere.Direction {
	return []sphere.Direction{{Azimuth: 0}, {Azimuth: 270, Elevation: 10}}
}

func TestSet_Validate(t *testing.T) {
	valid := NewSet(testDirs(), 48000, 8)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(s *Set)
		want   error
	}{
		{"receivers", func(s *Set) { s.Receivers = 1 }, ErrReceiverCount},
		{"no_directions", func(s *Set) { s.Directions = nil }, ErrInvalidSet},
		{"sample_rate", func(s *Set) { s.SampleRate = 0 }, ErrInvalidSet},
		{"length", func(s *Set) { s.Length = 0 }, ErrInvalidSet},
		{"data", func(s *Set) { s.Data = s.Data[:3] }, ErrInvalidSet},
		{"emitter_count", func(s *Set) {
			s.Emitters = []sphere.Direction{{}, {Azimuth: 30}}
			s.EmitterData = [][]float64{s.Data}
		}, ErrInvalidSet},
		{"emitter_data", func(s *Set) {
			s.Emitters = []sphere.Direction{{}}
			s.EmitterData = [][]float64{s.Data[:3]}
		}, ErrInvalidSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid.Clone()
			tt.mutate(s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestSet_IRLayout(t *testing.T) {
	s := NewSet(testDirs(), 48000, 4)
	s.IR(1, 0)[2] = 7
	assert.InDelta(t, 7.0, s.Data[(1*NumEars+0)*4+2], 0)

	irs := s.IRs()
	require.Len(t, irs, 4)
	assert.InDelta(t, 7.0, irs[2][2], 0)
}

func TestSet_ForEmitter(t *testing.T) {
	s := NewSet(testDirs(), 48000, 4)
	assert.Same(t, s, s.ForEmitter(1), "shared responses")
	assert.Equal(t, 1, s.NumResponseSets())

	s.Emitters = []sphere.Direction{{Azimuth: 30}, {Azimuth: -30}}
	s.EmitterData = [][]float64{make([]float64, len(s.Data)), make([]float64, len(s.Data))}
	s.EmitterData[1][(1*NumEars+1)*4] = 3
	require.NoError(t, s.Validate())
	assert.Equal(t, 2, s.NumResponseSets())

	second := s.ForEmitter(1)
	assert.InDelta(t, 3.0, second.IR(1, 1)[0], 0)
	assert.Empty(t, second.EmitterData)
	assert.InDelta(t, 0.0, s.ForEmitter(0).IR(1, 1)[0], 0)
	assert.InDelta(t, 3.0, s.ForEmitter(5).IR(1, 1)[0], 0, "clamped to the last emitter")

	c := s.Clone()
	c.EmitterData[1][0] = 1
	assert.InDelta(t, 0.0, s.EmitterData[1][0], 0)
}

func TestSet_NormalizeDirections(t *testing.T) {
	s := NewSet([]sphere.Direction{{Azimuth: 0}, {Azimuth: 180}, {Azimuth: 270}, {Azimuth: 359}}, 48000, 1)
	s.NormalizeDirections()

	assert.InDelta(t, 0.0, s.Directions[0].Azimuth, 0)
	assert.InDelta(t, 180.0, s.Directions[1].Azimuth, 0)
	assert.InDelta(t, -90.0, s.Directions[2].Azimuth, 0)
	assert.InDelta(t, -1.0, s.Directions[3].Azimuth, 0)
}

func TestLoad(t *testing.T) {
	good := NewSet(testDirs(), 44100, 16)
	goodProvider := ProviderFunc(func(string) (*Set, error) { return good, nil })
	monoProvider := ProviderFunc(func(string) (*Set, error) {
		s := good.Clone()
		s.Receivers = 1
		return s, nil
	})
	failing := ProviderFunc(func(string) (*Set, error) { return nil, errors.New("boom") })

	t.Run("default_flag", func(t *testing.T) {
		set, fellBack, warn := Load("x.sofa", true, goodProvider)
		assert.Same(t, Default(), set)
		assert.False(t, fellBack)
		assert.NoError(t, warn)
	})

	t.Run("provider", func(t *testing.T) {
		set, fellBack, warn := Load("x.sofa", false, goodProvider)
		require.NoError(t, warn)
		assert.False(t, fellBack)
		assert.Equal(t, "x.sofa", set.Name)
		assert.InDelta(t, -90.0, set.Directions[1].Azimuth, 0)
		// The provider's copy is left alone.
		assert.InDelta(t, 270.0, good.Directions[1].Azimuth, 0)
	})

	t.Run("no_provider", func(t *testing.T) {
		set, fellBack, warn := Load("x.sofa", false, nil)
		assert.Same(t, Default(), set)
		assert.True(t, fellBack)
		assert.ErrorIs(t, warn, ErrNoProvider)
	})

	t.Run("receiver_count", func(t *testing.T) {
		set, fellBack, warn := Load("x.sofa", false, monoProvider)
		assert.Same(t, Default(), set)
		assert.True(t, fellBack)
		assert.ErrorIs(t, warn, ErrReceiverCount)
	})

	t.Run("provider_error", func(t *testing.T) {
		_, fellBack, warn := Load("x.sofa", false, failing)
		assert.True(t, fellBack)
		assert.Error(t, warn)
	})
}

func writeTestWAV(t *testing.T, path string, channels int, frames [][]int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var data []int
	for _, frame := range frames {
		data = append(data, frame...)
	}

	enc := wav.NewEncoder(f, 48000, 16, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: 48000},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestWAVProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrirs.wav")
	writeTestWAV(t, path, 4, [][]int{
		{16384, 0, 0, -16384},
		{0, 8192, 0, 0},
		{0, 0, 4096, 0},
	})

	p := &WAVProvider{Directions: testDirs()}
	set, err := p.Load(path)
	require.NoError(t, err)
	require.NoError(t, set.Validate())

	assert.Equal(t, 48000, set.SampleRate)
	assert.Equal(t, 3, set.Length)
	assert.InDelta(t, 0.5, set.IR(0, 0)[0], 1e-9)
	assert.InDelta(t, 0.25, set.IR(0, 1)[1], 1e-9)
	assert.InDelta(t, 0.125, set.IR(1, 0)[2], 1e-9)
	assert.InDelta(t, -0.5, set.IR(1, 1)[0], 1e-9)
}

func TestWAVProvider_PerEmitter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.wav")
	writeTestWAV(t, path, 8, [][]int{
		{16384, 0, 0, 0, 0, 0, 0, 8192},
		{0, 0, 0, 0, 0, 0, 0, 0},
	})

	p := &WAVProvider{Directions: testDirs(), Emitters: []sphere.Direction{{Azimuth: 30}, {Azimuth: -30}}}
	set, err := p.Load(path)
	require.NoError(t, err)
	require.NoError(t, set.Validate())

	require.Equal(t, 2, set.NumResponseSets())
	assert.InDelta(t, 0.5, set.ForEmitter(0).IR(0, 0)[0], 1e-9)
	assert.InDelta(t, 0.0, set.ForEmitter(0).IR(1, 1)[0], 1e-9)
	assert.InDelta(t, 0.0, set.ForEmitter(1).IR(0, 0)[0], 1e-9)
	assert.InDelta(t, 0.25, set.ForEmitter(1).IR(1, 1)[0], 1e-9)

	// The same file without emitters has too many channels.
	_, err = (&WAVProvider{Directions: testDirs()}).Load(path)
	require.ErrorIs(t, err, ErrInvalidSet)
}

func TestWAVProvider_ChannelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")
	writeTestWAV(t, path, 3, [][]int{{1, 2, 3}})

	_, err := (&WAVProvider{Directions: testDirs()}).Load(path)
	require.ErrorIs(t, err, ErrReceiverCount)

	path = filepath.Join(t.TempDir(), "pairs.wav")
	writeTestWAV(t, path, 2, [][]int{{1, 2}})
	_, err = (&WAVProvider{Directions: testDirs()}).Load(path)
	require.ErrorIs(t, err, ErrInvalidSet)

	_, err = (&WAVProvider{}).Load(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}

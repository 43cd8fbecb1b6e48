package hrir

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/tphakala/go-binaural/internal/sphere"
)

// Provider loads an HRIR set from a file path.
type Provider interface {
	Load(path string) (*Set, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(path string) (*Set, error)

// Load calls f(path).
func (f ProviderFunc) Load(path string) (*Set, error) { return f(path) }

// Load returns the set selected by path. With useDefault set, or an empty path,
// the built-in set is returned. Otherwise the provider is asked for the file.
//
// When the requested set cannot be used, the built-in set is returned together
// with a non-nil warning describing why; fellBack reports that case.
func Load(path string, useDefault bool, p Provider) (set *Set, fellBack bool, warning error) {
	if useDefault || path == "" {
		return Default(), false, nil
	}
	if p == nil {
		return Default(), true, fmt.Errorf("%w: cannot load %q", ErrNoProvider, path)
	}

	loaded, err := p.Load(path)
	if err == nil && loaded == nil {
		err = fmt.Errorf("%w: provider returned no data", ErrInvalidSet)
	}
	if err == nil {
		err = loaded.Validate()
	}
	if err != nil {
		return Default(), true, fmt.Errorf("loading %q: %w", path, err)
	}

	loaded = loaded.Clone()
	loaded.NormalizeDirections()
	if loaded.Name == "" {
		loaded.Name = path
	}
	return loaded, false, nil
}

// WAVProvider reads sets stored as multichannel WAV files.
// Channel 2*i holds the left ear response for Directions[i], channel 2*i+1 the right.
// A file holding one such block of channels per emitter, in emitter order, is
// read as per-emitter room responses.
type WAVProvider struct {
	Directions []sphere.Direction
	Emitters   []sphere.Direction
}

// Load reads the WAV file at path.
func (p *WAVProvider) Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hrir: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	set, err := readWAV(f, p.Directions, max(len(p.Emitters), 1))
	if err != nil {
		return nil, err
	}
	set.Emitters = append([]sphere.Direction(nil), p.Emitters...)
	set.Name = path
	return set, nil
}

// ReadWAV decodes a WAV stream holding one channel pair per direction.
func ReadWAV(r io.ReadSeeker, dirs []sphere.Direction) (*Set, error) {
	return readWAV(r, dirs, 1)
}

// readWAV also accepts nEmitters consecutive blocks of channel pairs, which
// are stored as EmitterData with the first block doubling as Data.
func readWAV(r io.ReadSeeker, dirs []sphere.Direction, nEmitters int) (*Set, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", ErrInvalidSet)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("hrir: decode: %w", err)
	}
	format := dec.Format()
	channels := format.NumChannels

	if channels%NumEars != 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrReceiverCount, channels)
	}
	pairs := channels / NumEars
	blocks := 1
	switch {
	case pairs == len(dirs):
	case nEmitters > 1 && pairs == len(dirs)*nEmitters:
		blocks = nEmitters
	default:
		return nil, fmt.Errorf("%w: %d channel pairs for %d directions", ErrInvalidSet, pairs, len(dirs))
	}

	length := len(buf.Data) / channels
	set := NewSet(dirs, format.SampleRate, length)
	perBlock := len(set.Data)
	data := make([]float64, perBlock*blocks)

	scale := 1 / float64(int64(1)<<(max(int(dec.BitDepth), 1)-1))
	for n := range length {
		base := n * channels
		for ch := range channels {
			data[ch*length+n] = float64(buf.Data[base+ch]) * scale
		}
	}

	set.Data = data[:perBlock:perBlock]
	if blocks > 1 {
		for b := range blocks {
			set.EmitterData = append(set.EmitterData, data[b*perBlock:(b+1)*perBlock:(b+1)*perBlock])
		}
	}

	return set, nil
}

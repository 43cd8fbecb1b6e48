// Command binauralise-wav renders every channel of a WAV file as a source at
// a given direction and writes the binaural result as a stereo WAV file.
//
// Usage:
//
//	binauralise-wav -az 30,-30 input.wav output.wav
//	binauralise-wav -az 90 -el 20 -interp direct mono.wav out.wav
//	binauralise-wav -hrir set.wav -hrir-dirs set.txt -yaw 45 input.wav out.wav
//
// Without -az, channels are spread evenly between -90 and 90 degrees.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	binaural "github.com/tphakala/go-binaural"
)

const (
	// Buffer size for processing (frames per chunk)
	bufferSize = 16384

	// Channel and sample format constants
	stereoChannels  = 2
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16         = 32767.0
	maxInt24         = 8388607.0
	maxInt32         = 2147483647.0
	progressInterval = 10 // Print progress every N%
	percentScale     = 100

	// WAV audio format tag for integer PCM
	wavFormatPCM = 1

	// CLI defaults
	minRequiredArgs = 2
	spreadDegrees   = 90.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	az := flag.String("az", "", "Comma-separated source azimuths in degrees, one per input channel")
	el := flag.String("el", "", "Comma-separated source elevations in degrees (default 0)")
	hrirPath := flag.String("hrir", "", "HRIR set stored as a WAV file with one channel pair per direction")
	hrirDirs := flag.String("hrir-dirs", "", "Text file with one 'azimuth elevation' line per HRIR direction")
	interpMode := flag.String("interp", "magitd", "Interpolation: direct, magitd")
	eq := flag.Bool("eq", true, "Apply diffuse-field equalisation")
	eqMode := flag.String("eq-mode", "reference", "Diffuse-field EQ: reference, measured")
	quality := flag.String("quality", "high", "HRIR resampling quality: quick, low, medium, high, veryhigh")
	yaw := flag.Float64("yaw", 0, "Listener yaw in degrees")
	pitch := flag.Float64("pitch", 0, "Listener pitch in degrees")
	roll := flag.Float64("roll", 0, "Listener roll in degrees")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -az 30,-30 stereo.wav binaural.wav   # Virtual loudspeakers\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -az 90 -el 20 mono.wav left_up.wav    # Single source\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}
	inputPath, outputPath := args[0], args[1]

	cfg := binaural.DefaultConfig()
	var err error
	if cfg.InterpMode, err = parseInterpMode(*interpMode); err != nil {
		return err
	}
	if cfg.DiffEQMode, err = parseEQMode(*eqMode); err != nil {
		return err
	}
	if cfg.Resampling, err = parseQuality(*quality); err != nil {
		return err
	}
	cfg.EnableDiffuseEQ = *eq

	if *hrirPath != "" {
		provider, err := loadProvider(*hrirDirs)
		if err != nil {
			return err
		}
		cfg.HRIRPath = *hrirPath
		cfg.Provider = provider
	}
	if !*verbose {
		cfg.Logger = log.New(os.Stderr, "binauralise-wav: ", 0)
	}

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Interpolation: %s", cfg.InterpMode)
		if cfg.EnableDiffuseEQ {
			log.Printf("Diffuse-field EQ: %s", cfg.DiffEQMode)
		}
	}

	start := time.Now()
	stats, err := binauraliseWAV(inputPath, outputPath, cfg, &renderOptions{
		azimuths:   *az,
		elevations: *el,
		yaw:        *yaw,
		pitch:      *pitch,
		roll:       *roll,
		verbose:    *verbose,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Binauralised %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d sources at %d Hz, %d-bit\n", stats.sources, stats.sampleRate, stats.bitDepth)
	for i, d := range stats.directions {
		fmt.Printf("  source %d: azimuth %.1f, elevation %.1f\n", i, d.Azimuth, d.Elevation)
	}
	fmt.Printf("  HRIRs: %s (%d directions, %d triangles)\n", stats.hrirSource, stats.hrirDirections, stats.triangles)
	fmt.Printf("  %d samples, Duration: %.2fs, Speed: %.1fx realtime\n",
		stats.samples, elapsed.Seconds(),
		float64(stats.samples)/float64(stats.sampleRate)/elapsed.Seconds())

	return nil
}

// Command inspect-hrtf prints diagnostics of the HRIR set and interpolation
// table used by the renderer, and the interpolated response for a direction.
//
// Usage:
//
//	inspect-hrtf -az 45 -el 10
//	inspect-hrtf -interp direct -eq=false -az 120
//	inspect-hrtf -delay 3.25   # fractional-delay filter used by the built-in set
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/cmplx"

	binaural "github.com/tphakala/go-binaural"
	"github.com/tphakala/go-binaural/internal/filter"
)

const (
	// Display limits
	maxDirectionsToShow = 5
	bandsToShow         = 12
	responsePoints      = 8

	// Fractional-delay analysis parameters (matching the built-in set)
	delayTaps        = 64
	delayHalfWidth   = 16
	delayAttenuation = 80.0

	fullTurnRadians = 2 * math.Pi
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	az := flag.Float64("az", 30, "Azimuth in degrees")
	el := flag.Float64("el", 0, "Elevation in degrees")
	rate := flag.Int("rate", 48000, "Host sample rate in Hz")
	interpMode := flag.String("interp", "magitd", "Interpolation: direct, magitd")
	eq := flag.Bool("eq", true, "Apply diffuse-field equalisation")
	delay := flag.Float64("delay", -1, "Analyse the fractional-delay filter for this delay instead")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *delay >= 0 {
		return analyzeDelay(*delay)
	}

	cfg := binaural.DefaultConfig()
	cfg.SampleRate = *rate
	cfg.EnableDiffuseEQ = *eq
	if !*verbose {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	mode := binaural.InterpMagnitudeITD
	if *interpMode == "direct" {
		mode = binaural.InterpDirect
	}

	r, err := binaural.New(cfg)
	if err != nil {
		return err
	}
	if err := r.InitCodec(); err != nil {
		return err
	}

	fmt.Println("=== HRIR set ===")
	fmt.Printf("  Source: %s (default: %v)\n", r.SOFAFilePath(), r.UsingDefaultHRIRs())
	fmt.Printf("  Directions: %d\n", r.NumHRIRDirections())
	fmt.Printf("  Length: %d samples at %d Hz (measured at %d Hz)\n", r.HRIRLength(), r.HostSampleRate(), r.HRIRSampleRate())
	for i := range min(maxDirectionsToShow, r.NumHRIRDirections()) {
		d, _ := r.HRIRDirection(i)
		fmt.Printf("    %3d: azimuth %7.2f, elevation %6.2f\n", i, d.Azimuth, d.Elevation)
	}
	if n := r.NumHRIRDirections(); n > maxDirectionsToShow {
		fmt.Printf("    ... (%d more directions)\n", n-maxDirectionsToShow)
	}

	fmt.Println("\n=== Interpolation table ===")
	dims := "3-D"
	if r.TwoDimensional() {
		dims = "2-D"
	}
	fmt.Printf("  Mode: %s, %d triangles\n", dims, r.NumTriangles())
	fmt.Printf("  Diffuse-field EQ applied: %v\n", r.DiffuseEQApplied())
	fmt.Printf("  Processing delay: %d samples\n", r.ProcessingDelay())

	dir := binaural.Direction{Azimuth: *az, Elevation: *el}
	h, freqs, err := r.Interpolate(dir, mode)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s response at azimuth %.1f, elevation %.1f ===\n", mode, *az, *el)
	fmt.Println("  Band    Freq (Hz)   Left (dB)  Right (dB)  IPD (rad)")
	step := max(len(freqs)/bandsToShow, 1)
	for b := 0; b < len(freqs); b += step {
		left, right := h[b*binaural.NumEars], h[b*binaural.NumEars+1]
		ipd := cmplx.Phase(left * cmplx.Conj(right))
		fmt.Printf("  %4d %12.1f %11.2f %11.2f %10.3f\n", b, freqs[b],
			filter.MagnitudeDB(cmplx.Abs(left)), filter.MagnitudeDB(cmplx.Abs(right)), ipd)
	}

	// Estimate the ITD from the phase slope of the lowest non-DC band.
	if len(freqs) > 1 {
		left, right := h[binaural.NumEars], h[binaural.NumEars+1]
		itd := cmplx.Phase(left*cmplx.Conj(right)) / (fullTurnRadians * freqs[1])
		fmt.Printf("\n  Low-frequency ITD estimate: %.1f us\n", itd*1e6)
	}

	return nil
}

func analyzeDelay(delay float64) error {
	fmt.Println("=== Fractional-delay filter ===")

	params := filter.FractionalDelayParams{
		NumTaps:     delayTaps,
		Delay:       delay,
		HalfWidth:   delayHalfWidth,
		Attenuation: delayAttenuation,
	}
	h, err := filter.DesignFractionalDelay(params)
	if err != nil {
		return err
	}

	var dc float64
	for _, c := range h {
		dc += c
	}
	fmt.Printf("  Taps: %d, delay %.3f samples, Kaiser beta %.3f\n", len(h), delay, filter.KaiserBeta(delayAttenuation))
	fmt.Printf("  DC gain: %.10f\n", dc)

	resp := filter.ComputeFrequencyResponse(h, responsePoints)
	fmt.Println("  Freq (norm)  Magnitude (dB)  Phase delay (samples)")
	for k, f := range resp.Frequencies {
		gd := delay
		if f > 0 {
			gd = -resp.Phase[k] / (fullTurnRadians * f)
		}
		fmt.Printf("  %10.4f %15.4f %22.3f\n", f, filter.MagnitudeDB(resp.Magnitude[k]), gd)
	}
	return nil
}

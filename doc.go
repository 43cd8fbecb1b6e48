// Package binaural renders mono sources placed around a listener into a
// two-channel signal for headphone playback.
//
// Each source is filtered with a head-related transfer function (HRTF)
// interpolated for its direction from a measured HRIR set. Rendering happens
// in the subband domain of a short-time Fourier filterbank, so one frame of
// FrameSize samples costs one complex multiply-add per source, band and ear.
//
// # Features
//
//   - Built-in HRIR set from a rigid spherical head model; other sets through a [Provider]
//   - Interpolation over a triangulated measurement grid with non-negative weights
//     that sum to one
//   - Direct complex interpolation or separate magnitude/ITD interpolation
//   - Diffuse-field equalisation from a reference head or from the set itself
//   - Head rotation by yaw, pitch and roll
//   - HRIR resampling to the host rate via github.com/tphakala/go-audio-resampler
//
// # Quick Start
//
// For one-shot rendering:
//
//	left, right, err := binaural.Binauralise(sources, dirs, 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For real-time use, create a renderer, build its tables, then call Process
// once per frame from the audio callback:
//
//	r, err := binaural.New(binaural.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.SetNumSources(2)
//	r.SetSourceAzimuth(0, 30)
//	r.SetSourceAzimuth(1, -30)
//	if err := r.InitCodec(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// audio callback
//	r.Process(inputs, outputs, binaural.FrameSize)
//
// # Initialisation
//
// Setters only record the new value. Changes to the source count, the HRIR
// file, the sample rate or the equalisation move the renderer to
// [CodecNotInitialized]; [Renderer.InitCodec] then rebuilds the tables and
// swaps them in. Direction, gain, rotation and interpolation mode changes are
// picked up by the next frame without a rebuild.
//
// If the requested HRIR set cannot be loaded or triangulated, InitCodec logs a
// warning and uses the built-in set instead. [Renderer.UsingDefaultHRIRs] and
// [Renderer.Progress] report what happened.
//
// # Thread Safety
//
// Process may run on an audio thread concurrently with setters and InitCodec
// on another goroutine. Process never blocks: while tables are stale or being
// swapped it writes silence. InitCodec waits for an in-flight frame before
// swapping, so a frame never sees a partially built table. Calls to Process
// itself must be serialized.
package binaural

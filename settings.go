package binaural

import (
	"fmt"

	"github.com/tphakala/go-binaural/internal/mathutil"
	"github.com/tphakala/go-binaural/internal/rotation"
)

// rotationSettings holds the listener orientation. Angles are the effective
// rotation in radians, with the flip flags already applied.
type rotationSettings struct {
	enabled          bool
	yaw, pitch, roll float64
	flipYaw          bool
	flipPitch        bool
	flipRoll         bool
	order            rotation.Order
}

// frameParams is the part of the settings read by every frame.
type frameParams struct {
	dirs       [MaxNumSources]Direction
	gains      [MaxNumSources]float64
	rotation   rotationSettings
	interpMode InterpMode
}

type settings struct {
	params frameParams

	sampleRate  int
	nSources    int
	hrirPath    string
	useDefault  bool
	enableEQ    bool
	eqMode      DiffEQMode
	userSources bool

	// consumed by InitCodec
	reinit        ReinitMode
	channelsDirty bool
}

func newSettings(cfg *Config) settings {
	s := settings{
		sampleRate:  cfg.SampleRate,
		nSources:    max(cfg.NumSources, 1),
		hrirPath:    cfg.HRIRPath,
		useDefault:  cfg.HRIRPath == "",
		enableEQ:    cfg.EnableDiffuseEQ,
		eqMode:      cfg.DiffEQMode,
		userSources: cfg.NumSources > 0,
		reinit:      ReinitFull,
	}
	s.params.interpMode = cfg.InterpMode
	for i := range s.params.gains {
		s.params.gains[i] = 1
	}
	return s
}

func (s *settings) requestReinit(mode ReinitMode) {
	s.reinit = max(s.reinit, mode)
}

// withSettings calls fn with the settings locked.
func (r *Renderer) withSettings(fn func(s *settings)) {
	r.settingsMu.Lock()
	fn(&r.settings)
	r.settingsMu.Unlock()
}

// invalidate marks the tables stale, waiting for a running initialisation
// to finish first.
func (r *Renderer) invalidate() {
	r.stateMu.Lock()
	for CodecStatus(r.codecStatus.Load()) == CodecInitializing {
		r.stateCond.Wait()
	}
	r.codecStatus.Store(int32(CodecNotInitialized))
	r.stateMu.Unlock()
}

func checkSource(i int) error {
	if i < 0 || i >= MaxNumSources {
		return fmt.Errorf("%w: %d", ErrSourceIndex, i)
	}
	return nil
}

// Init sets the host sample rate. Tables are rebuilt by the next InitCodec.
func (r *Renderer) Init(sampleRate int) error {
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be %d-%d Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	changed := false
	r.withSettings(func(s *settings) {
		if s.sampleRate != sampleRate {
			s.sampleRate = sampleRate
			s.requestReinit(ReinitResample)
			changed = true
		}
	})
	if changed {
		r.invalidate()
	}
	return nil
}

// RefreshSettings forces a full rebuild on the next InitCodec.
func (r *Renderer) RefreshSettings() {
	r.withSettings(func(s *settings) { s.requestReinit(ReinitFull) })
	r.invalidate()
}

// HostSampleRate returns the sample rate set by Init.
func (r *Renderer) HostSampleRate() (rate int) {
	r.withSettings(func(s *settings) { rate = s.sampleRate })
	return rate
}

// SetNumSources sets the number of rendered sources, clamped to [1, MaxNumSources].
func (r *Renderer) SetNumSources(n int) {
	n = min(max(n, 1), MaxNumSources)
	changed := false
	r.withSettings(func(s *settings) {
		s.userSources = true
		if s.nSources != n {
			s.nSources = n
			s.channelsDirty = true
			changed = true
		}
	})
	if changed {
		r.invalidate()
	}
}

// NumSources returns the configured number of sources.
func (r *Renderer) NumSources() (n int) {
	r.withSettings(func(s *settings) { n = s.nSources })
	return n
}

// SetSourceAzimuth sets the azimuth of source i in degrees. Values above
// 180 are folded by one turn and the result is clamped to [-180, 180].
func (r *Renderer) SetSourceAzimuth(i int, deg float64) error {
	if err := checkSource(i); err != nil {
		return err
	}
	if deg > mathutil.HalfTurn {
		deg -= mathutil.FullTurn
	}
	deg = mathutil.Clamp(deg, -mathutil.HalfTurn, mathutil.HalfTurn)
	r.withSettings(func(s *settings) {
		s.userSources = true
		s.params.dirs[i].Azimuth = deg
	})
	return nil
}

// SetSourceElevation sets the elevation of source i in degrees, clamped to [-90, 90].
func (r *Renderer) SetSourceElevation(i int, deg float64) error {
	if err := checkSource(i); err != nil {
		return err
	}
	deg = mathutil.Clamp(deg, -mathutil.QuarterTurn, mathutil.QuarterTurn)
	r.withSettings(func(s *settings) {
		s.userSources = true
		s.params.dirs[i].Elevation = deg
	})
	return nil
}

// SetSourceDirection sets both angles of source i.
func (r *Renderer) SetSourceDirection(i int, d Direction) error {
	if err := r.SetSourceAzimuth(i, d.Azimuth); err != nil {
		return err
	}
	return r.SetSourceElevation(i, d.Elevation)
}

// SourceAzimuth returns the azimuth of source i, or 0 for an invalid index.
func (r *Renderer) SourceAzimuth(i int) (deg float64) {
	if checkSource(i) != nil {
		return 0
	}
	r.withSettings(func(s *settings) { deg = s.params.dirs[i].Azimuth })
	return deg
}

// SourceElevation returns the elevation of source i, or 0 for an invalid index.
func (r *Renderer) SourceElevation(i int) (deg float64) {
	if checkSource(i) != nil {
		return 0
	}
	r.withSettings(func(s *settings) { deg = s.params.dirs[i].Elevation })
	return deg
}

// SetSourceGain sets the linear gain of source i.
func (r *Renderer) SetSourceGain(i int, gain float64) error {
	if err := checkSource(i); err != nil {
		return err
	}
	r.withSettings(func(s *settings) { s.params.gains[i] = gain })
	return nil
}

// SourceGain returns the linear gain of source i, or 0 for an invalid index.
func (r *Renderer) SourceGain(i int) (gain float64) {
	if checkSource(i) != nil {
		return 0
	}
	r.withSettings(func(s *settings) { gain = s.params.gains[i] })
	return gain
}

// MuteSource sets the gain of source i to 0 when muted and to 1 otherwise.
func (r *Renderer) MuteSource(i int, muted bool) error {
	gain := 1.0
	if muted {
		gain = 0
	}
	return r.SetSourceGain(i, gain)
}

// SoloSource sets the gain of source i to 1 and of every other source to 0.
func (r *Renderer) SoloSource(i int) error {
	if err := checkSource(i); err != nil {
		return err
	}
	r.withSettings(func(s *settings) {
		for j := range s.params.gains {
			s.params.gains[j] = 0
		}
		s.params.gains[i] = 1
	})
	return nil
}

// UnsoloSources restores unit gain on every source.
func (r *Renderer) UnsoloSources() {
	r.withSettings(func(s *settings) {
		for j := range s.params.gains {
			s.params.gains[j] = 1
		}
	})
}

// SetSOFAFilePath selects the HRIR file handed to the provider.
func (r *Renderer) SetSOFAFilePath(path string) {
	r.withSettings(func(s *settings) {
		s.hrirPath = path
		s.useDefault = path == ""
		s.requestReinit(ReinitFull)
	})
	r.invalidate()
}

// SOFAFilePath returns the configured HRIR file, or "no_file".
func (r *Renderer) SOFAFilePath() (path string) {
	r.withSettings(func(s *settings) { path = s.hrirPath })
	if path == "" {
		return noFile
	}
	return path
}

// SetUseDefaultHRIRs selects the built-in set regardless of the file path.
func (r *Renderer) SetUseDefaultHRIRs(on bool) {
	changed := false
	r.withSettings(func(s *settings) {
		if s.useDefault != on {
			s.useDefault = on
			s.requestReinit(ReinitFull)
			changed = true
		}
	})
	if changed {
		r.invalidate()
	}
}

// UseDefaultHRIRs reports whether the built-in set was requested.
func (r *Renderer) UseDefaultHRIRs() (on bool) {
	r.withSettings(func(s *settings) { on = s.useDefault })
	return on
}

// SetDiffuseEQ enables or disables diffuse-field equalisation.
func (r *Renderer) SetDiffuseEQ(on bool) {
	changed := false
	r.withSettings(func(s *settings) {
		if s.enableEQ != on {
			s.enableEQ = on
			s.requestReinit(ReinitFull)
			changed = true
		}
	})
	if changed {
		r.invalidate()
	}
}

// DiffuseEQ reports whether diffuse-field equalisation is enabled.
func (r *Renderer) DiffuseEQ() (on bool) {
	r.withSettings(func(s *settings) { on = s.enableEQ })
	return on
}

// SetDiffEQMode selects the equalisation method.
func (r *Renderer) SetDiffEQMode(m DiffEQMode) {
	changed := false
	r.withSettings(func(s *settings) {
		if s.eqMode != m {
			s.eqMode = m
			if s.enableEQ {
				s.requestReinit(ReinitFull)
				changed = true
			}
		}
	})
	if changed {
		r.invalidate()
	}
}

// DiffEQMode returns the equalisation method.
func (r *Renderer) DiffEQMode() (m DiffEQMode) {
	r.withSettings(func(s *settings) { m = s.eqMode })
	return m
}

// SetInterpMode selects the HRTF interpolation method. It takes effect
// on the next frame.
func (r *Renderer) SetInterpMode(m InterpMode) {
	r.withSettings(func(s *settings) { s.params.interpMode = m })
}

// InterpMode returns the HRTF interpolation method.
func (r *Renderer) InterpMode() (m InterpMode) {
	r.withSettings(func(s *settings) { m = s.params.interpMode })
	return m
}

// SetRotation enables or disables head rotation.
func (r *Renderer) SetRotation(on bool) {
	r.withSettings(func(s *settings) { s.params.rotation.enabled = on })
}

// RotationEnabled reports whether head rotation is enabled.
func (r *Renderer) RotationEnabled() (on bool) {
	r.withSettings(func(s *settings) { on = s.params.rotation.enabled })
	return on
}

// SetRotationOrder selects the order in which the angles are applied.
func (r *Renderer) SetRotationOrder(o RotationOrder) {
	r.withSettings(func(s *settings) { s.params.rotation.order = o })
}

// RotationOrder returns the angle application order.
func (r *Renderer) RotationOrder() (o RotationOrder) {
	r.withSettings(func(s *settings) { o = s.params.rotation.order })
	return o
}

// signed returns v negated when flip is set.
func signed(v float64, flip bool) float64 {
	if flip {
		return -v
	}
	return v
}

// SetYaw sets the yaw angle in degrees.
func (r *Renderer) SetYaw(deg float64) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		rot.yaw = signed(mathutil.DegToRad(deg), rot.flipYaw)
	})
}

// Yaw returns the yaw angle in degrees as last set.
func (r *Renderer) Yaw() (deg float64) {
	r.withSettings(func(s *settings) {
		rot := s.params.rotation
		deg = signed(mathutil.RadToDeg(rot.yaw), rot.flipYaw)
	})
	return deg
}

// SetPitch sets the pitch angle in degrees.
func (r *Renderer) SetPitch(deg float64) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		rot.pitch = signed(mathutil.DegToRad(deg), rot.flipPitch)
	})
}

// Pitch returns the pitch angle in degrees as last set.
func (r *Renderer) Pitch() (deg float64) {
	r.withSettings(func(s *settings) {
		rot := s.params.rotation
		deg = signed(mathutil.RadToDeg(rot.pitch), rot.flipPitch)
	})
	return deg
}

// SetRoll sets the roll angle in degrees.
func (r *Renderer) SetRoll(deg float64) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		rot.roll = signed(mathutil.DegToRad(deg), rot.flipRoll)
	})
}

// Roll returns the roll angle in degrees as last set.
func (r *Renderer) Roll() (deg float64) {
	r.withSettings(func(s *settings) {
		rot := s.params.rotation
		deg = signed(mathutil.RadToDeg(rot.roll), rot.flipRoll)
	})
	return deg
}

// SetFlipYaw inverts the sign convention of the yaw angle. The reported
// angle is unchanged; the applied rotation is mirrored.
func (r *Renderer) SetFlipYaw(on bool) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		if rot.flipYaw != on {
			rot.flipYaw = on
			rot.yaw = -rot.yaw
		}
	})
}

// FlipYaw reports whether the yaw sign is inverted.
func (r *Renderer) FlipYaw() (on bool) {
	r.withSettings(func(s *settings) { on = s.params.rotation.flipYaw })
	return on
}

// SetFlipPitch inverts the sign convention of the pitch angle.
func (r *Renderer) SetFlipPitch(on bool) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		if rot.flipPitch != on {
			rot.flipPitch = on
			rot.pitch = -rot.pitch
		}
	})
}

// FlipPitch reports whether the pitch sign is inverted.
func (r *Renderer) FlipPitch() (on bool) {
	r.withSettings(func(s *settings) { on = s.params.rotation.flipPitch })
	return on
}

// SetFlipRoll inverts the sign convention of the roll angle.
func (r *Renderer) SetFlipRoll(on bool) {
	r.withSettings(func(s *settings) {
		rot := &s.params.rotation
		if rot.flipRoll != on {
			rot.flipRoll = on
			rot.roll = -rot.roll
		}
	})
}

// FlipRoll reports whether the roll sign is inverted.
func (r *Renderer) FlipRoll() (on bool) {
	r.withSettings(func(s *settings) { on = s.params.rotation.flipRoll })
	return on
}

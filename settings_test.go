package binaural

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSourceAzimuth_Folding(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{-180, -180},
		{190, -170},
		{270, -90},
		{360, 0},
		{540, 180},
		{-190, -180},
		{-720, -180},
	}

	r := newTestRenderer(t, nil)
	for _, tt := range tests {
		require.NoError(t, r.SetSourceAzimuth(0, tt.in))
		assert.InDelta(t, tt.want, r.SourceAzimuth(0), 1e-12, "azimuth %v", tt.in)
	}
}

func TestSetSourceElevation_Clamps(t *testing.T) {
	r := newTestRenderer(t, nil)

	require.NoError(t, r.SetSourceElevation(3, 100))
	assert.Equal(t, 90.0, r.SourceElevation(3))

	require.NoError(t, r.SetSourceElevation(3, -95))
	assert.Equal(t, -90.0, r.SourceElevation(3))

	require.NoError(t, r.SetSourceElevation(3, 12.5))
	assert.Equal(t, 12.5, r.SourceElevation(3))
}

func TestSourceIndexOutOfRange(t *testing.T) {
	r := newTestRenderer(t, nil)

	for _, i := range []int{-1, MaxNumSources} {
		require.ErrorIs(t, r.SetSourceAzimuth(i, 10), ErrSourceIndex)
		require.ErrorIs(t, r.SetSourceElevation(i, 10), ErrSourceIndex)
		require.ErrorIs(t, r.SetSourceGain(i, 0.5), ErrSourceIndex)
		require.ErrorIs(t, r.MuteSource(i, true), ErrSourceIndex)
		require.ErrorIs(t, r.SoloSource(i), ErrSourceIndex)
		assert.Zero(t, r.SourceAzimuth(i))
		assert.Zero(t, r.SourceGain(i))
	}
}

func TestSetNumSources_Clamps(t *testing.T) {
	r := newTestRenderer(t, nil)

	r.SetNumSources(0)
	assert.Equal(t, 1, r.NumSources())

	r.SetNumSources(MaxNumSources + 10)
	assert.Equal(t, MaxNumSources, r.NumSources())

	r.SetNumSources(5)
	assert.Equal(t, 5, r.NumSources())
}

func TestSetNumSources_Invalidates(t *testing.T) {
	r := newInitialisedRenderer(t, nil)

	r.SetNumSources(1)
	assert.Equal(t, CodecInitialized, r.CodecStatus(), "unchanged count keeps the tables")

	r.SetNumSources(4)
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())

	require.NoError(t, r.InitCodec())
	assert.Equal(t, 4, r.state.Load().nSources)
}

func TestGains_MuteSolo(t *testing.T) {
	r := newTestRenderer(t, func(c *Config) { c.NumSources = 3 })

	for i := range MaxNumSources {
		assert.Equal(t, 1.0, r.SourceGain(i))
	}

	require.NoError(t, r.MuteSource(1, true))
	assert.Zero(t, r.SourceGain(1))
	require.NoError(t, r.MuteSource(1, false))
	assert.Equal(t, 1.0, r.SourceGain(1))

	require.NoError(t, r.SetSourceGain(0, 0.25))
	assert.Equal(t, 0.25, r.SourceGain(0))

	require.NoError(t, r.SoloSource(2))
	for i := range MaxNumSources {
		want := 0.0
		if i == 2 {
			want = 1
		}
		assert.Equal(t, want, r.SourceGain(i), "source %d", i)
	}

	r.UnsoloSources()
	for i := range MaxNumSources {
		assert.Equal(t, 1.0, r.SourceGain(i), "source %d", i)
	}
}

func TestSOFAFilePath(t *testing.T) {
	r := newInitialisedRenderer(t, nil)
	assert.Equal(t, "no_file", r.SOFAFilePath())
	assert.True(t, r.UseDefaultHRIRs())

	r.SetSOFAFilePath("subject_003.sofa")
	assert.Equal(t, "subject_003.sofa", r.SOFAFilePath())
	assert.False(t, r.UseDefaultHRIRs())
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())

	r.SetSOFAFilePath("")
	assert.Equal(t, "no_file", r.SOFAFilePath())
	assert.True(t, r.UseDefaultHRIRs())
}

func TestInit_SampleRate(t *testing.T) {
	r := newInitialisedRenderer(t, nil)

	require.ErrorIs(t, r.Init(1000), ErrInvalidConfig)
	assert.Equal(t, CodecInitialized, r.CodecStatus())

	require.NoError(t, r.Init(48000))
	assert.Equal(t, CodecInitialized, r.CodecStatus(), "same rate keeps the tables")

	require.NoError(t, r.Init(44100))
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())
	assert.Equal(t, 44100, r.HostSampleRate())

	require.NoError(t, r.InitCodec())
	assert.Equal(t, CodecInitialized, r.CodecStatus())
	assert.Equal(t, 48000, r.HRIRSampleRate())
	assert.Positive(t, r.HRIRLength())
}

func TestReinitFlags(t *testing.T) {
	r := newInitialisedRenderer(t, nil)

	r.SetDiffuseEQ(true)
	assert.Equal(t, CodecInitialized, r.CodecStatus())

	r.SetDiffEQMode(DiffEQMeasuredField)
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())
	assert.Equal(t, DiffEQMeasuredField, r.DiffEQMode())
	require.NoError(t, r.InitCodec())

	r.SetDiffuseEQ(false)
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())
	require.NoError(t, r.InitCodec())
	assert.False(t, r.DiffuseEQApplied())

	// Mode changes with EQ off do not need a rebuild.
	r.SetDiffEQMode(DiffEQReferenceHead)
	assert.Equal(t, CodecInitialized, r.CodecStatus())

	r.SetUseDefaultHRIRs(true)
	assert.Equal(t, CodecInitialized, r.CodecStatus())

	r.RefreshSettings()
	assert.Equal(t, CodecNotInitialized, r.CodecStatus())
}

func TestInterpMode_NoRebuild(t *testing.T) {
	r := newInitialisedRenderer(t, nil)

	r.SetInterpMode(InterpDirect)
	assert.Equal(t, InterpDirect, r.InterpMode())
	assert.Equal(t, CodecInitialized, r.CodecStatus())
}

func TestRotationSettings(t *testing.T) {
	r := newTestRenderer(t, nil)
	assert.False(t, r.RotationEnabled())
	assert.Equal(t, YawPitchRoll, r.RotationOrder())

	r.SetRotation(true)
	r.SetRotationOrder(RollPitchYaw)
	assert.True(t, r.RotationEnabled())
	assert.Equal(t, RollPitchYaw, r.RotationOrder())

	r.SetYaw(30)
	r.SetPitch(-10)
	r.SetRoll(5)
	assert.InDelta(t, 30.0, r.Yaw(), 1e-9)
	assert.InDelta(t, -10.0, r.Pitch(), 1e-9)
	assert.InDelta(t, 5.0, r.Roll(), 1e-9)
}

func TestFlip_KeepsReportedAngle(t *testing.T) {
	r := newTestRenderer(t, nil)

	r.SetYaw(30)
	r.SetFlipYaw(true)
	assert.True(t, r.FlipYaw())
	assert.InDelta(t, 30.0, r.Yaw(), 1e-9)
	assert.Negative(t, r.settings.params.rotation.yaw, "applied yaw is mirrored")

	r.SetYaw(10)
	assert.InDelta(t, 10.0, r.Yaw(), 1e-9)
	assert.Negative(t, r.settings.params.rotation.yaw)

	// Setting the same flag again changes nothing.
	r.SetFlipYaw(true)
	assert.InDelta(t, 10.0, r.Yaw(), 1e-9)

	r.SetFlipYaw(false)
	assert.Positive(t, r.settings.params.rotation.yaw)

	r.SetPitch(20)
	r.SetFlipPitch(true)
	assert.True(t, r.FlipPitch())
	assert.InDelta(t, 20.0, r.Pitch(), 1e-9)
	assert.Negative(t, r.settings.params.rotation.pitch)

	r.SetRoll(-15)
	r.SetFlipRoll(true)
	assert.True(t, r.FlipRoll())
	assert.InDelta(t, -15.0, r.Roll(), 1e-9)
	assert.Positive(t, r.settings.params.rotation.roll)
}

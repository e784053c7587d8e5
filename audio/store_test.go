// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/internal/audiotest"
)

func TestNewStore_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		samples  []float32
		rate     int
		channels int
		wantErr  error
	}{
		{"zero rate", []float32{0, 0}, 0, 2, audio.ErrBadFormat},
		{"zero channels", []float32{0, 0}, 44100, 0, audio.ErrBadFormat},
		{"partial frame", []float32{0, 0, 0}, 44100, 2, audio.ErrInvalidDstSize},
		{"empty", nil, 44100, 2, audio.ErrEmptySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := audio.NewStore(tt.samples, tt.rate, tt.channels, 16)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewStore_DefaultsBitDepth(t *testing.T) {
	t.Parallel()

	s, err := audio.NewStore([]float32{0.1, 0.2}, 8000, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultBitDepth, s.BitDepth())
	assert.Equal(t, 2, s.Frames())
	assert.Equal(t, 2, s.Len())
}

func TestLoad_PreservesFrames(t *testing.T) {
	t.Parallel()

	const frames = 10000
	src := audiotest.Ramp(44100, 2, frames).WithBitDepth(24)

	s, err := audio.Load(src)
	require.NoError(t, err)

	assert.Equal(t, frames, s.Frames())
	assert.Equal(t, 2, s.Channels())
	assert.Equal(t, 44100, s.SampleRate())
	assert.Equal(t, 24, s.BitDepth())
	assert.False(t, src.Closed(), "Load must not close the source")

	wave := audiotest.RampWave(frames)
	frame := make([]float32, 2)
	for _, i := range []int{0, 1, 4999, frames - 1} {
		s.Frame(i, frame)
		assert.Equal(t, wave(i, 0), frame[0], "frame %d left", i)
		assert.Equal(t, wave(i, 1), frame[1], "frame %d right", i)
	}
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()

	_, err := audio.Load(audiotest.Silence(44100, 2, 0))
	assert.ErrorIs(t, err, audio.ErrEmptySource)
}

func TestLoad_BadFormat(t *testing.T) {
	t.Parallel()

	_, err := audio.Load(audiotest.Silence(0, 2, 10))
	assert.ErrorIs(t, err, audio.ErrBadFormat)
}

func TestLoad_SourceError(t *testing.T) {
	t.Parallel()

	_, err := audio.Load(audiotest.Sine(44100, 1, 10000, 440).FailAfter(100))
	assert.ErrorIs(t, err, audiotest.ErrInjected)
}

func TestLoad_MaxFrames(t *testing.T) {
	t.Parallel()

	_, err := audio.Load(audiotest.Silence(8000, 1, 10000), audio.WithMaxFrames(5000))
	assert.ErrorIs(t, err, audio.ErrTooLarge)

	s, err := audio.Load(audiotest.Silence(8000, 1, 5000), audio.WithMaxFrames(5000))
	require.NoError(t, err)
	assert.Equal(t, 5000, s.Frames())
}

func TestLoad_Mono(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(8000, 2, 100, func(_, ch int) float32 {
		if ch == 0 {
			return 0.2
		}
		return 0.6
	})

	s, err := audio.Load(src, audio.WithMono())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Channels())
	assert.Equal(t, 100, s.Frames())
	for _, v := range s.Samples() {
		assert.InDelta(t, 0.4, v, 1e-6)
	}
}

func TestLoad_SampleRate(t *testing.T) {
	t.Parallel()

	s, err := audio.Load(audiotest.Sine(48000, 2, 48000, 440), audio.WithSampleRate(24000))
	require.NoError(t, err)
	assert.Equal(t, 24000, s.SampleRate())
	assert.InDelta(t, 24000, s.Frames(), 10)
	assert.InDelta(t, time.Second.Seconds(), s.Duration().Seconds(), 0.001)
}

func TestStore_Duration(t *testing.T) {
	t.Parallel()

	s, err := audio.NewStore(make([]float32, 44100*2*3), 44100, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, s.Duration())
}

func TestStore_Release(t *testing.T) {
	t.Parallel()

	s, err := audio.NewStore([]float32{1, 2}, 8000, 2, 16)
	require.NoError(t, err)
	s.Release()
	assert.Nil(t, s.Samples())
}

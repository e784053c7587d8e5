// SPDX-License-Identifier: EPL-2.0

package delay_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackenziestarr/eccojam/delay"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		capacity, tap1, tap2 int
	}{
		{"zero capacity", 0, 0, 0},
		{"negative tap", 100, -1, 10},
		{"tap at capacity", 100, 100, 10},
		{"second tap too long", 100, 10, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := delay.New(tt.capacity, tt.tap1, tt.tap2)
			assert.ErrorIs(t, err, delay.ErrBadTaps)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	l, err := delay.New(delay.DefaultCapacity, delay.DefaultTap1, delay.DefaultTap2)
	require.NoError(t, err)
	assert.Equal(t, 51200, l.Capacity())

	d1, d2 := l.Taps()
	assert.Equal(t, 44100, d1)
	assert.Equal(t, 23050, d2)
}

func TestNew_AlignsTapsToFrames(t *testing.T) {
	t.Parallel()

	l, err := delay.New(1000, 101, 55, delay.WithChannels(2))
	require.NoError(t, err)
	d1, d2 := l.Taps()
	assert.Equal(t, 100, d1)
	assert.Equal(t, 54, d2)
}

func TestApply_DisabledIsIdentity(t *testing.T) {
	t.Parallel()

	l, err := delay.New(512, 300, 100)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 4))
	in := make([]float32, 256)
	out := make([]float32, 256)
	for range 20 {
		for i := range in {
			in[i] = rng.Float32()*2 - 1
		}
		l.Apply(in, out, 0.8, 0.8, false)
		require.Equal(t, in, out)
	}
}

func TestApply_ImpulseEchoes(t *testing.T) {
	t.Parallel()

	const tap1, tap2 = 300, 120
	l, err := delay.New(1024, tap1, tap2)
	require.NoError(t, err)

	const block = 64
	var out []float32
	buf := make([]float32, block)
	for cycle := range 8 {
		in := make([]float32, block)
		if cycle == 0 {
			in[5] = 1
		}
		l.Apply(in, buf, 0.5, 0.3, true)
		out = append(out, buf...)
	}

	for i, v := range out {
		switch i {
		case 5:
			assert.Equal(t, float32(1), v)
		case 5 + tap1:
			assert.Equal(t, float32(0.5), v)
		case 5 + tap2:
			assert.Equal(t, float32(0.3), v)
		default:
			assert.Zero(t, v, "sample %d", i)
		}
	}
}

func TestApply_WrapsAroundCapacity(t *testing.T) {
	t.Parallel()

	const capacity, tap = 50, 7
	l, err := delay.New(capacity, tap, 0)
	require.NoError(t, err)

	// Feed far more samples than the buffer holds; every output is the
	// input plus half of the input tap samples earlier plus an unscaled
	// copy of itself from the zero-distance tap times g2.
	var history []float32
	buf := make([]float32, 13)
	for n := 0; n < 20*capacity; n += len(buf) {
		in := make([]float32, len(buf))
		for i := range in {
			in[i] = float32((n+i)%17) / 17
		}
		l.Apply(in, buf, 0.5, 0.25, true)

		for i, s := range in {
			history = append(history, s)
			k := len(history) - 1
			want := s + s*0.25
			if k >= tap {
				want += history[k-tap] * 0.5
			}
			require.InDelta(t, want, buf[i], 1e-6, "sample %d", k)
		}
	}
}

func TestApply_InPlace(t *testing.T) {
	t.Parallel()

	l, err := delay.New(16, 2, 1)
	require.NoError(t, err)

	x := []float32{1, 0, 0, 0}
	l.Apply(x, x, 0.5, 0.25, true)
	assert.Equal(t, []float32{1, 0.25, 0.5, 0}, x)
}

func TestApply_ReenableKeepsTail(t *testing.T) {
	t.Parallel()

	l, err := delay.New(128, 10, 0)
	require.NoError(t, err)

	in := make([]float32, 8)
	in[0] = 1
	out := make([]float32, 8)
	l.Apply(in, out, 0.5, 0, false)

	clear(in)
	l.Apply(in, out, 0.5, 0, true)
	assert.Equal(t, float32(0.5), out[2], "echo of a sample written while disabled")
}

func TestReset(t *testing.T) {
	t.Parallel()

	l, err := delay.New(32, 4, 0)
	require.NoError(t, err)

	out := make([]float32, 4)
	l.Apply([]float32{1, 1, 1, 1}, out, 1, 0, true)
	l.Reset()
	l.Apply(make([]float32, 4), out, 1, 0, true)
	assert.Equal(t, make([]float32, 4), out)
}

func TestApply_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	l, err := delay.New(delay.DefaultCapacity, delay.DefaultTap1, delay.DefaultTap2)
	require.NoError(t, err)
	in := make([]float32, 2048)
	out := make([]float32, 2048)

	allocs := testing.AllocsPerRun(100, func() {
		l.Apply(in, out, 0.5, 0.3, true)
	})
	assert.Zero(t, allocs)
}

func BenchmarkApply(b *testing.B) {
	l, err := delay.New(delay.DefaultCapacity, delay.DefaultTap1, delay.DefaultTap2)
	require.NoError(b, err)
	in := make([]float32, 2048)
	out := make([]float32, 2048)

	b.ReportAllocs()
	for b.Loop() {
		l.Apply(in, out, 0.5, 0.3, true)
	}
}

// SPDX-License-Identifier: EPL-2.0

package device

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams(t *testing.T) {
	t.Parallel()

	p := Params{SampleRate: 44100, Channels: 2, FramesPerBuffer: 441}
	require.NoError(t, p.Validate())
	assert.Equal(t, 882, p.BlockSamples())
	assert.Equal(t, 10*time.Millisecond, p.Period())

	for _, bad := range []Params{
		{SampleRate: 0, Channels: 1, FramesPerBuffer: 1},
		{SampleRate: 1, Channels: 0, FramesPerBuffer: 1},
		{SampleRate: 1, Channels: 1, FramesPerBuffer: -1},
	} {
		assert.ErrorIs(t, bad.Validate(), ErrBadParams)
	}
}

var _ Device = (*Manual)(nil)
var _ Device = (*Clocked)(nil)

func TestManual_Lifecycle(t *testing.T) {
	t.Parallel()

	m := NewManual()
	assert.ErrorIs(t, m.Start(), ErrNotOpen)
	assert.ErrorIs(t, m.Stop(), ErrNotOpen)

	var n float32
	cb := func(out []float32) {
		n++
		for i := range out {
			out[i] = n
		}
	}
	p := Params{SampleRate: 8000, Channels: 2, FramesPerBuffer: 4}
	assert.ErrorIs(t, m.Open(Params{}, cb), ErrBadParams)
	require.NoError(t, m.Open(p, cb))
	assert.ErrorIs(t, m.Open(p, cb), ErrAlreadyOpen)

	_, err := m.Tick()
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, m.Start())
	block, err := m.Tick()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, block)

	var seen []float32
	require.NoError(t, m.Run(3, func(b []float32) { seen = append(seen, b[0]) }))
	assert.Equal(t, []float32{2, 3, 4}, seen)
	assert.Equal(t, 4, m.Cycles())

	require.NoError(t, m.Stop())
	assert.ErrorIs(t, m.Run(1, nil), ErrNotRunning)
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Start(), ErrNotOpen)
}

func TestClocked_TicksUntilStopped(t *testing.T) {
	t.Parallel()

	var observed atomic.Int64
	c := NewClocked(func(b []float32) {
		if len(b) == 2 {
			observed.Add(1)
		}
	})
	assert.ErrorIs(t, c.Start(), ErrNotOpen)

	var calls atomic.Int64
	p := Params{SampleRate: 1000, Channels: 2, FramesPerBuffer: 1}
	require.NoError(t, c.Open(p, func(out []float32) { calls.Add(1) }))
	assert.ErrorIs(t, c.Open(p, nil), ErrAlreadyOpen)

	require.NoError(t, c.Start())
	require.NoError(t, c.Start(), "second start is a no-op")

	assert.Eventually(t, func() bool { return c.Cycles() >= 5 }, 2*time.Second, time.Millisecond)
	require.NoError(t, c.Stop())

	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "no callbacks after Stop")
	assert.Equal(t, stopped, observed.Load())
	assert.Equal(t, uint64(stopped), c.Cycles())

	require.NoError(t, c.Stop())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

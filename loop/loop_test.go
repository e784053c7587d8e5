// SPDX-License-Identifier: EPL-2.0

package loop_test

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/loop"
)

// indexStore returns a mono store whose sample i holds the value i.
func indexStore(t testing.TB, frames int) *audio.Store {
	t.Helper()

	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(i)
	}
	s, err := audio.NewStore(samples, 44100, 1, 16)
	require.NoError(t, err)
	return s
}

// pull runs Next n times and returns the emitted frame indices.
func pull(c *loop.Controller, n int) []int {
	out := make([]int, n)
	frame := make([]float32, 1)
	for i := range out {
		c.Next(frame)
		out[i] = int(frame[0])
	}
	c.Publish()
	return out
}

func TestNext_NormalPlaybackWraps(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 5))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1}, pull(c, 12))
	assert.Equal(t, 2, c.Snapshot().Cursor)
}

func TestNext_MarkInMarkOutLoops(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 10))
	pull(c, 2)

	c.MarkIn()
	assert.Equal(t, []int{2, 3, 4}, pull(c, 3), "one mark does not loop")
	st := c.Snapshot()
	assert.Equal(t, 1, st.Events)
	assert.False(t, st.Looping)
	assert.Equal(t, 2, st.InPoint)

	c.MarkOut()
	assert.Equal(t, []int{2, 3, 4, 2, 3, 4, 2}, pull(c, 7))
	st = c.Snapshot()
	assert.True(t, st.Looping)
	assert.True(t, c.Looping())
	assert.Equal(t, 2, st.Events)
	assert.Equal(t, 5, st.OutPoint)
	assert.Equal(t, 5, st.Cursor, "cursor is frozen while looping")
}

func TestNext_ThirdMarkDisarms(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 20))
	pull(c, 2)
	c.MarkIn()
	pull(c, 3)
	c.MarkOut()
	pull(c, 4)

	// A mark while looping flips parity to odd: playback resumes at the
	// frozen cursor and the in point moves there.
	c.MarkIn()
	assert.Equal(t, []int{5, 6, 7}, pull(c, 3))
	st := c.Snapshot()
	assert.Equal(t, 3, st.Events)
	assert.False(t, st.Looping)
	assert.Equal(t, 5, st.InPoint)

	c.MarkOut()
	assert.Equal(t, []int{5, 6, 7, 5, 6}, pull(c, 5))
	assert.Equal(t, 4, c.Snapshot().Events)
}

func TestNext_StopResetsEvents(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 10))
	c.MarkIn()
	pull(c, 3)
	c.MarkOut()
	pull(c, 2)

	c.Stop()
	assert.Equal(t, []int{2, 3, 4}, pull(c, 3), "last looped frame, then playback from the frozen cursor")
	st := c.Snapshot()
	assert.Zero(t, st.Events)
	assert.False(t, st.Looping)

	// Parity counting starts over after a stop.
	c.MarkIn()
	pull(c, 1)
	assert.Equal(t, 1, c.Snapshot().Events)
}

func TestNext_StopWhileNotLoopingStaysPending(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 10))
	c.Stop()
	assert.Equal(t, []int{0, 1, 2}, pull(c, 3))

	c.MarkIn()
	pull(c, 2)
	c.MarkOut()
	assert.Equal(t, []int{3, 5, 6}, pull(c, 3), "pending stop ends the loop after one frame")
	assert.Zero(t, c.Snapshot().Events)
}

func TestNext_OutBeforeInWrapsThroughEnd(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 6))
	pull(c, 4)
	c.MarkIn()
	pull(c, 3) // in = 4, cursor wraps to 1
	c.MarkOut()

	assert.Equal(t, []int{4, 5, 0, 4, 5, 0, 4}, pull(c, 7))
	st := c.Snapshot()
	assert.Equal(t, 4, st.InPoint)
	assert.Equal(t, 1, st.OutPoint)
}

func TestNext_MarksOnSameFrame(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 4))
	pull(c, 2)

	// In is consumed before out, so both land on the cursor and the loop
	// spans the whole buffer starting there.
	c.MarkIn()
	c.MarkOut()
	assert.Equal(t, []int{2, 3, 0, 1, 2, 3}, pull(c, 6))
	st := c.Snapshot()
	assert.Equal(t, 2, st.Events)
	assert.True(t, st.Looping)
	assert.Equal(t, 2, st.Cursor)
}

func TestNext_MultiChannelFrames(t *testing.T) {
	t.Parallel()

	store, err := audio.NewStore([]float32{0, 0.5, 1, 1.5, 2, 2.5}, 8000, 2, 16)
	require.NoError(t, err)
	c := loop.New(store)
	assert.Equal(t, 2, c.Channels())

	frame := make([]float32, 2)
	var got []float32
	for range 4 {
		c.Next(frame)
		got = append(got, frame...)
	}
	assert.Equal(t, []float32{0, 0.5, 1, 1.5, 2, 2.5, 0, 0.5}, got)
}

func TestPeek_DoesNotAdvance(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 10))
	frame := make([]float32, 1)
	pull(c, 3)

	c.Peek(frame)
	assert.Equal(t, float32(3), frame[0])
	c.Peek(frame)
	assert.Equal(t, float32(3), frame[0])
	assert.Equal(t, []int{3}, pull(c, 1))

	c.MarkIn()
	pull(c, 2)
	c.MarkOut()
	pull(c, 1)
	c.Peek(frame)
	assert.Equal(t, float32(5), frame[0], "peek follows the loop head")
}

func TestNext_BoundsHoldUnderRandomSignals(t *testing.T) {
	t.Parallel()

	const frames = 97
	c := loop.New(indexStore(t, frames))
	rng := rand.New(rand.NewPCG(1, 2))
	frame := make([]float32, 1)

	for i := range 200000 {
		switch rng.IntN(500) {
		case 0:
			c.MarkIn()
		case 1:
			c.MarkOut()
		case 2:
			c.Stop()
		}
		c.Next(frame)
		require.GreaterOrEqual(t, frame[0], float32(0))
		require.Less(t, frame[0], float32(frames))

		if i%1000 == 0 {
			c.Publish()
			st := c.Snapshot()
			require.True(t, st.Cursor >= 0 && st.Cursor < frames, "cursor %d", st.Cursor)
			require.True(t, st.Head >= 0 && st.Head < frames, "head %d", st.Head)
			require.Equal(t, st.Events > 0 && st.Events%2 == 0, st.Looping)
		}
	}
}

func TestController_ConcurrentSignals(t *testing.T) {
	t.Parallel()

	c := loop.New(indexStore(t, 1000))
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			c.MarkIn()
			c.MarkOut()
			c.Stop()
			_ = c.Snapshot()
		}
	}()

	frame := make([]float32, 1)
	for range 100 {
		for range 256 {
			c.Next(frame)
		}
		c.Publish()
	}
	close(done)
	wg.Wait()
}

func TestNext_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	c := loop.New(indexStore(t, 4096))
	frame := make([]float32, 1)
	allocs := testing.AllocsPerRun(100, func() {
		c.MarkIn()
		for range 1024 {
			c.Next(frame)
		}
		c.Publish()
	})
	assert.Zero(t, allocs)
}

func BenchmarkNext(b *testing.B) {
	c := loop.New(indexStore(b, 44100))
	frame := make([]float32, 1)

	b.ReportAllocs()
	for b.Loop() {
		c.Next(frame)
	}
}

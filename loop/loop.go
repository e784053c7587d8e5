// SPDX-License-Identifier: EPL-2.0

// Package loop implements the playback cursor and its two-point loop.
//
// Marks are counted, and looping is active only while the count is positive
// and even: mark-in then mark-out arms the loop, a third mark disarms it and
// a fourth arms it again around the new points. Only Stop resets the count.
//
// The control goroutine raises signals with MarkIn, MarkOut and Stop. The
// audio goroutine is the only caller of Next, Peek and Publish and the only
// one that clears a signal, so a mark and the state change it causes land
// in the same cycle.
package loop

import (
	"sync/atomic"

	"github.com/mackenziestarr/eccojam/audio"
)

// State is a copy of the loop state as of the last Publish.
type State struct {
	Cursor   int // next frame of normal playback
	InPoint  int
	OutPoint int
	Head     int // next frame while looping
	Events   int
	Looping  bool
}

type Controller struct {
	samples  []float32
	frames   int
	channels int

	markIn  atomic.Bool
	markOut atomic.Bool
	stop    atomic.Bool

	// Owned by the audio goroutine.
	cursor   int
	inPoint  int
	outPoint int
	restart  int
	head     int
	events   int

	published struct {
		cursor, inPoint, outPoint, head, events atomic.Int64
	}
}

func New(store *audio.Store) *Controller {
	return &Controller{
		samples:  store.Samples(),
		frames:   store.Frames(),
		channels: store.Channels(),
	}
}

// Channels is the width of the frames emitted by Next.
func (c *Controller) Channels() int { return c.channels }

// MarkIn requests that the current cursor becomes the loop-in point.
func (c *Controller) MarkIn() { c.markIn.Store(true) }

// MarkOut requests that the current cursor becomes the loop-out point.
func (c *Controller) MarkOut() { c.markOut.Store(true) }

// Stop requests a return to normal playback. The request stays pending
// until a frame is produced while looping.
func (c *Controller) Stop() { c.stop.Store(true) }

// take consumes a pending signal.
func take(b *atomic.Bool) bool {
	return b.Load() && b.CompareAndSwap(true, false)
}

func looping(events int) bool {
	return events > 0 && events%2 == 0
}

// Next writes one frame into dst and advances playback.
func (c *Controller) Next(dst []float32) {
	if take(&c.markIn) {
		c.inPoint = c.cursor
		c.events++
	}
	if take(&c.markOut) {
		c.outPoint = c.cursor
		c.restart = c.inPoint
		c.head = c.inPoint
		c.events++
	}

	if looping(c.events) {
		c.emit(c.head, dst)
		c.head++
		if c.head == c.outPoint {
			c.head = c.restart
		}
		if c.head >= c.frames {
			c.head = 0
		}
		if take(&c.stop) {
			c.events = 0
		}
		return
	}

	c.emit(c.cursor, dst)
	c.cursor++
	if c.cursor >= c.frames {
		c.cursor = 0
	}
}

// Peek writes the frame Next would emit if no signal were pending, without
// changing any state.
func (c *Controller) Peek(dst []float32) {
	if looping(c.events) {
		c.emit(c.head, dst)
		return
	}
	c.emit(c.cursor, dst)
}

func (c *Controller) emit(frame int, dst []float32) {
	base := frame * c.channels
	copy(dst[:c.channels], c.samples[base:base+c.channels])
}

// Publish makes the current state visible to Snapshot.
func (c *Controller) Publish() {
	c.published.cursor.Store(int64(c.cursor))
	c.published.inPoint.Store(int64(c.inPoint))
	c.published.outPoint.Store(int64(c.outPoint))
	c.published.head.Store(int64(c.head))
	c.published.events.Store(int64(c.events))
}

// Snapshot returns the state as of the last Publish. Fields are loaded one
// by one and may straddle a cycle boundary.
func (c *Controller) Snapshot() State {
	events := int(c.published.events.Load())
	return State{
		Cursor:   int(c.published.cursor.Load()),
		InPoint:  int(c.published.inPoint.Load()),
		OutPoint: int(c.published.outPoint.Load()),
		Head:     int(c.published.head.Load()),
		Events:   events,
		Looping:  looping(events),
	}
}

// Looping reports whether the last published state was looping.
func (c *Controller) Looping() bool {
	return looping(int(c.published.events.Load()))
}

// SPDX-License-Identifier: EPL-2.0

// Package record tees the engine output into a file.
//
// The audio goroutine hands each block to MaybeRecord, which copies it into
// a preallocated buffer and queues it for a writer goroutine. It never
// blocks: when the queue is full the block is counted as dropped. Enable
// and Disable run on the control goroutine and own the sink's lifetime.
package record

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultQueue is the number of blocks that may wait for the writer.
const DefaultQueue = 64

type Tee struct {
	opener       Opener
	path         string
	format       Format
	queue        int
	blockSamples int

	mu      sync.Mutex // serializes Enable and Disable
	session atomic.Pointer[session]

	offered atomic.Uint64
	dropped atomic.Uint64
	written atomic.Uint64
}

// New prepares a tee for blocks of up to blockSamples interleaved samples.
// Nothing is opened until Enable.
func New(opener Opener, path string, format Format, queue, blockSamples int) *Tee {
	if queue <= 0 {
		queue = DefaultQueue
	}
	return &Tee{
		opener:       opener,
		path:         path,
		format:       format,
		queue:        queue,
		blockSamples: blockSamples,
	}
}

func (t *Tee) Path() string   { return t.path }
func (t *Tee) Format() Format { return t.format }

// Enable opens the sink and starts the writer. Enabling an active tee is a
// no-op. On error recording stays off.
func (t *Tee) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Load() != nil {
		return nil
	}
	if err := t.format.Validate(); err != nil {
		return err
	}

	sink, err := t.opener.Open(t.path, t.format)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, t.path, err)
	}

	s := newSession(sink, t.queue, t.blockSamples, &t.written)
	go s.run()
	t.session.Store(s)
	return nil
}

// Disable stops accepting blocks, waits for queued ones to be written and
// closes the sink. The first write or close error is returned.
func (t *Tee) Disable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session.Swap(nil)
	if s == nil {
		return nil
	}
	// Wait out MaybeRecord calls still holding s, or their blocks would
	// land after the writer drained.
	for s.refs.Load() != 0 {
		runtime.Gosched()
	}
	return s.stop()
}

// Toggle flips recording and reports whether it is now on.
func (t *Tee) Toggle() (bool, error) {
	if t.Enabled() {
		return false, t.Disable()
	}
	if err := t.Enable(); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Tee) Enabled() bool { return t.session.Load() != nil }

// MaybeRecord queues a copy of block when recording is on. Safe to call
// from the audio goroutine.
func (t *Tee) MaybeRecord(block []float32) {
	s := t.session.Load()
	if s == nil {
		return
	}
	s.refs.Add(1)
	defer s.refs.Add(-1)
	if t.session.Load() != s {
		return // disabled meanwhile
	}
	t.offered.Add(1)

	select {
	case buf := <-s.free:
		n := copy(buf[:cap(buf)], block)
		s.blocks <- buf[:n] // never blocks: at most cap(free) buffers exist
	default:
		t.dropped.Add(1)
	}
}

// Offered counts blocks received while recording was on. Once recording is
// off, Offered equals Written plus Dropped unless the sink failed.
func (t *Tee) Offered() uint64 { return t.offered.Load() }

// Dropped counts blocks lost because the writer fell behind.
func (t *Tee) Dropped() uint64 { return t.dropped.Load() }

// Written counts blocks handed to a sink.
func (t *Tee) Written() uint64 { return t.written.Load() }

func (t *Tee) Close() error { return t.Disable() }

type session struct {
	sink    Sink
	blocks  chan []float32
	free    chan []float32
	quit    chan struct{}
	done    chan struct{}
	written *atomic.Uint64
	refs    atomic.Int32 // MaybeRecord calls using this session
	err     error        // first sink error, read after done
}

func newSession(sink Sink, queue, blockSamples int, written *atomic.Uint64) *session {
	s := &session{
		sink:    sink,
		blocks:  make(chan []float32, queue),
		free:    make(chan []float32, queue),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		written: written,
	}
	for range queue {
		s.free <- make([]float32, blockSamples)
	}
	return s
}

func (s *session) run() {
	defer close(s.done)

	for {
		select {
		case b := <-s.blocks:
			s.write(b)
		case <-s.quit:
			for {
				select {
				case b := <-s.blocks:
					s.write(b)
				default:
					return
				}
			}
		}
	}
}

func (s *session) write(b []float32) {
	if s.err == nil {
		if err := s.sink.Write(b); err != nil {
			s.err = fmt.Errorf("writing recording: %w", err)
		} else {
			s.written.Add(1)
		}
	}
	s.free <- b
}

func (s *session) stop() error {
	close(s.quit)
	<-s.done
	return errors.Join(s.err, s.sink.Close())
}

// SPDX-License-Identifier: EPL-2.0

// Package oto plays the engine through ebitengine/oto.
//
// Oto pulls bytes from an io.Reader at its own pace. The reader renders one
// callback block at a time and serves it as little-endian float32 until it
// is used up, so the callback always sees full blocks.
package oto

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/mackenziestarr/eccojam/device"
)

type reader struct {
	cb    device.Callback
	block []float32
	raw   []byte
	off   int

	mu      sync.Mutex // held for a whole Read
	running bool
}

func newReader(p device.Params, cb device.Callback) *reader {
	n := p.BlockSamples()
	return &reader{
		cb:    cb,
		block: make([]float32, n),
		raw:   make([]byte, n*4),
		off:   n * 4,
	}
}

// Read never fails. While paused it yields silence without calling back.
func (r *reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		clear(p)
		return len(p), nil
	}

	n := 0
	for n < len(p) {
		if r.off == len(r.raw) {
			r.render()
		}
		c := copy(p[n:], r.raw[r.off:])
		r.off += c
		n += c
	}
	return n, nil
}

func (r *reader) render() {
	r.cb(r.block)
	for i, v := range r.block {
		binary.LittleEndian.PutUint32(r.raw[i*4:], math.Float32bits(v))
	}
	r.off = 0
}

// setRunning returns once no Read is in flight.
func (r *reader) setRunning(on bool) {
	r.mu.Lock()
	r.running = on
	r.mu.Unlock()
}

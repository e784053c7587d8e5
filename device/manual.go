// SPDX-License-Identifier: EPL-2.0

package device

import "sync"

// Manual runs one cycle per Tick on the caller's goroutine. It makes engine
// tests deterministic.
type Manual struct {
	mu      sync.Mutex
	params  Params
	cb      Callback
	buf     []float32
	running bool
	cycles  int
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) Open(p Params, cb Callback) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cb != nil {
		return ErrAlreadyOpen
	}
	m.params = p
	m.cb = cb
	m.buf = make([]float32, p.BlockSamples())
	return nil
}

func (m *Manual) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cb == nil {
		return ErrNotOpen
	}
	m.running = true
	return nil
}

// Tick runs one cycle and returns the filled buffer, which the next Tick
// reuses.
func (m *Manual) Tick() ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil, ErrNotRunning
	}
	m.cb(m.buf)
	m.cycles++
	return m.buf, nil
}

// Run ticks n times, handing every block to fn when it is not nil.
func (m *Manual) Run(n int, fn func(block []float32)) error {
	for range n {
		block, err := m.Tick()
		if err != nil {
			return err
		}
		if fn != nil {
			fn(block)
		}
	}
	return nil
}

func (m *Manual) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

func (m *Manual) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cb == nil {
		return ErrNotOpen
	}
	m.running = false
	return nil
}

func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.cb = nil
	m.buf = nil
	return nil
}

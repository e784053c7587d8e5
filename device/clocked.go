// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Clocked drives the callback from a ticker at the stream's real rate and
// hands each block to an optional observer instead of a sound card.
type Clocked struct {
	mu      sync.Mutex
	params  Params
	cb      Callback
	observe func([]float32)
	buf     []float32
	stop    chan struct{}
	done    chan struct{}

	cycles atomic.Uint64
}

// NewClocked returns a silent device. observe, when not nil, sees every
// block on the clock goroutine and must not retain it.
func NewClocked(observe func(block []float32)) *Clocked {
	return &Clocked{observe: observe}
}

func (c *Clocked) Open(p Params, cb Callback) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cb != nil {
		return ErrAlreadyOpen
	}
	c.params = p
	c.cb = cb
	c.buf = make([]float32, p.BlockSamples())
	return nil
}

func (c *Clocked) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cb == nil {
		return ErrNotOpen
	}
	if c.stop != nil {
		return nil
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.params.Period(), c.stop, c.done)
	return nil
}

func (c *Clocked) run(period time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.cb(c.buf)
			if c.observe != nil {
				c.observe(c.buf)
			}
			c.cycles.Add(1)
		}
	}
}

// Cycles counts callbacks since Open.
func (c *Clocked) Cycles() uint64 { return c.cycles.Load() }

// Stop waits for the in-flight cycle, if any.
func (c *Clocked) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cb == nil {
		return ErrNotOpen
	}
	if c.stop == nil {
		return nil
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
	return nil
}

func (c *Clocked) Close() error {
	if err := c.Stop(); err != nil && !errors.Is(err, ErrNotOpen) {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb = nil
	c.buf = nil
	return nil
}
